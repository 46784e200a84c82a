// Copyright 2025 The acorn Authors
// This file is part of the acorn library.
//
// The acorn library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The acorn library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the acorn library. If not, see <http://www.gnu.org/licenses/>.

package governance

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type voterKey struct {
	proposal uint64
	voter    common.Address
}

// MemoryStore implements ProposalStore with in-memory maps. Records are
// copied on the way in and out, so callers can never alias stored state.
type MemoryStore struct {
	mu        sync.RWMutex
	config    *VotingConfig
	nextID    uint64
	proposals map[uint64]*Proposal
	index     []uint64
	voted     map[voterKey]struct{}
}

// NewMemoryStore creates an empty in-memory proposal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:    1,
		proposals: make(map[uint64]*Proposal),
		voted:     make(map[voterKey]struct{}),
	}
}

// HasConfig reports whether the voting config has been initialized.
func (s *MemoryStore) HasConfig() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config != nil
}

// Config returns the voting config, or ErrConfigMissing.
func (s *MemoryStore) Config() (*VotingConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return nil, ErrConfigMissing
	}
	return s.config.Copy(), nil
}

// InitConfig stores the config and resets the proposal counter to 1.
func (s *MemoryStore) InitConfig(cfg *VotingConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config != nil {
		return ErrConfigInitialized
	}
	s.config = cfg.Copy()
	s.nextID = 1
	return nil
}

// NextID returns the id the next proposal will be assigned.
func (s *MemoryStore) NextID() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

// InsertProposal stores a new proposal, appends its id to the index and
// advances the counter.
func (s *MemoryStore) InsertProposal(p *Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.proposals[p.ID]; exists {
		return ErrDuplicateEntry
	}
	s.proposals[p.ID] = p.Copy()
	s.index = append(s.index, p.ID)
	s.nextID = p.ID + 1
	return nil
}

// UpdateProposal overwrites an existing proposal record.
func (s *MemoryStore) UpdateProposal(p *Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.proposals[p.ID]; !exists {
		return ErrProposalNotFound
	}
	s.proposals[p.ID] = p.Copy()
	return nil
}

// Proposal returns a copy of the proposal, or ErrProposalNotFound.
func (s *MemoryStore) Proposal(id uint64) (*Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, exists := s.proposals[id]
	if !exists {
		return nil, ErrProposalNotFound
	}
	return p.Copy(), nil
}

// ProposalIDs returns all known proposal ids in creation order.
func (s *MemoryStore) ProposalIDs() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]uint64(nil), s.index...)
}

// HasVoted reports whether the voter already voted on the proposal.
func (s *MemoryStore) HasVoted(id uint64, voter common.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.voted[voterKey{id, voter}]
	return ok
}

// RecordVote overwrites the proposal record and marks the voter, atomically.
func (s *MemoryStore) RecordVote(p *Proposal, voter common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.proposals[p.ID]; !exists {
		return ErrProposalNotFound
	}
	s.proposals[p.ID] = p.Copy()
	s.voted[voterKey{p.ID, voter}] = struct{}{}
	return nil
}
