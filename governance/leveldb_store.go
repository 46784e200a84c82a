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
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	// Storage key prefixes
	configKey      = []byte("gov-config")
	nextIDKey      = []byte("gov-next-id")
	indexKey       = []byte("gov-index")
	proposalPrefix = []byte("gov-proposal-")
	voterPrefix    = []byte("gov-voter-")
)

// storedConfig is the RLP shape of the voting config.
type storedConfig struct {
	QuorumBps        uint32
	VotingPeriod     uint64
	TimelockDuration uint64
}

// storedAction is the RLP shape of a proposal action. Rates are split into
// sign and magnitude because RLP has no negative integers and a proposal may
// carry a negative rate until execution rejects it.
type storedAction struct {
	Kind         uint8
	HasRate      bool
	RateNeg      bool
	RateAbs      *big.Int
	LockDuration uint64
}

// storedProposal is the RLP shape of a proposal record.
type storedProposal struct {
	ID           uint64
	Creator      common.Address
	Description  string
	StartTime    uint64
	EndTime      uint64
	Executed     bool
	ForVotes     *uint256.Int
	AgainstVotes *uint256.Int
	AbstainVotes *uint256.Int
	QueuedTime   uint64
	HasAction    bool
	Action       storedAction
}

func toStoredAction(a *ProposalAction) storedAction {
	if a == nil {
		return storedAction{}
	}
	sa := storedAction{Kind: uint8(a.Kind), LockDuration: a.LockDuration}
	if a.Rate != nil {
		sa.HasRate = true
		sa.RateNeg = a.Rate.Sign() < 0
		sa.RateAbs = new(big.Int).Abs(a.Rate)
	}
	return sa
}

func fromStoredAction(sa storedAction) *ProposalAction {
	a := &ProposalAction{Kind: ActionKind(sa.Kind), LockDuration: sa.LockDuration}
	if sa.HasRate {
		a.Rate = new(big.Int).Set(sa.RateAbs)
		if sa.RateNeg {
			a.Rate.Neg(a.Rate)
		}
	}
	return a
}

func toStoredProposal(p *Proposal) *storedProposal {
	sp := &storedProposal{
		ID:           p.ID,
		Creator:      p.Creator,
		Description:  p.Description,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		Executed:     p.Executed,
		ForVotes:     p.ForVotes,
		AgainstVotes: p.AgainstVotes,
		AbstainVotes: p.AbstainVotes,
		QueuedTime:   p.QueuedTime,
	}
	if p.Action != nil {
		sp.HasAction = true
		sp.Action = toStoredAction(p.Action)
	}
	return sp
}

func fromStoredProposal(sp *storedProposal) *Proposal {
	p := &Proposal{
		ID:           sp.ID,
		Creator:      sp.Creator,
		Description:  sp.Description,
		StartTime:    sp.StartTime,
		EndTime:      sp.EndTime,
		Executed:     sp.Executed,
		ForVotes:     sp.ForVotes,
		AgainstVotes: sp.AgainstVotes,
		AbstainVotes: sp.AbstainVotes,
		QueuedTime:   sp.QueuedTime,
	}
	if sp.HasAction {
		p.Action = fromStoredAction(sp.Action)
	}
	return p
}

func proposalDBKey(id uint64) []byte {
	key := make([]byte, len(proposalPrefix)+8)
	copy(key, proposalPrefix)
	binary.BigEndian.PutUint64(key[len(proposalPrefix):], id)
	return key
}

func voterDBKey(id uint64, voter common.Address) []byte {
	key := make([]byte, len(voterPrefix)+8+common.AddressLength)
	copy(key, voterPrefix)
	binary.BigEndian.PutUint64(key[len(voterPrefix):], id)
	copy(key[len(voterPrefix)+8:], voter.Bytes())
	return key
}

// LevelDBStore implements ProposalStore on a LevelDB database. Multi-key
// transitions are written through batches, so a crash between the writes of
// one call cannot leave a partial record.
type LevelDBStore struct {
	mu sync.RWMutex
	db *leveldb.DB
}

// NewLevelDBStore wraps an open LevelDB database.
func NewLevelDBStore(db *leveldb.DB) *LevelDBStore {
	return &LevelDBStore{db: db}
}

// OpenLevelDBStore opens (or creates) a LevelDB database at path.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

// Close closes the underlying database.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

// HasConfig reports whether the voting config has been initialized.
func (s *LevelDBStore) HasConfig() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	has, err := s.db.Has(configKey, nil)
	return err == nil && has
}

// Config returns the voting config, or ErrConfigMissing.
func (s *LevelDBStore) Config() (*VotingConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := s.db.Get(configKey, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrConfigMissing
	}
	if err != nil {
		return nil, err
	}
	var sc storedConfig
	if err := rlp.DecodeBytes(data, &sc); err != nil {
		return nil, err
	}
	return &VotingConfig{
		QuorumBps:        sc.QuorumBps,
		VotingPeriod:     sc.VotingPeriod,
		TimelockDuration: sc.TimelockDuration,
	}, nil
}

// InitConfig stores the config and resets the proposal counter to 1.
func (s *LevelDBStore) InitConfig(cfg *VotingConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	has, err := s.db.Has(configKey, nil)
	if err != nil {
		return err
	}
	if has {
		return ErrConfigInitialized
	}
	encoded, err := rlp.EncodeToBytes(&storedConfig{
		QuorumBps:        cfg.QuorumBps,
		VotingPeriod:     cfg.VotingPeriod,
		TimelockDuration: cfg.TimelockDuration,
	})
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put(configKey, encoded)
	batch.Put(nextIDKey, encodeID(1))
	return s.db.Write(batch, nil)
}

// NextID returns the id the next proposal will be assigned.
func (s *LevelDBStore) NextID() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextIDLocked()
}

func (s *LevelDBStore) nextIDLocked() uint64 {
	data, err := s.db.Get(nextIDKey, nil)
	if err != nil || len(data) != 8 {
		return 1
	}
	return binary.BigEndian.Uint64(data)
}

func encodeID(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

// InsertProposal stores a new proposal, appends its id to the index and
// advances the counter, in one batch.
func (s *LevelDBStore) InsertProposal(p *Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	has, err := s.db.Has(proposalDBKey(p.ID), nil)
	if err != nil {
		return err
	}
	if has {
		return ErrDuplicateEntry
	}
	encoded, err := rlp.EncodeToBytes(toStoredProposal(p))
	if err != nil {
		return err
	}
	index, err := s.indexLocked()
	if err != nil {
		return err
	}
	index = append(index, p.ID)
	encodedIndex, err := rlp.EncodeToBytes(index)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put(proposalDBKey(p.ID), encoded)
	batch.Put(indexKey, encodedIndex)
	batch.Put(nextIDKey, encodeID(p.ID+1))
	return s.db.Write(batch, nil)
}

// UpdateProposal overwrites an existing proposal record.
func (s *LevelDBStore) UpdateProposal(p *Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	has, err := s.db.Has(proposalDBKey(p.ID), nil)
	if err != nil {
		return err
	}
	if !has {
		return ErrProposalNotFound
	}
	encoded, err := rlp.EncodeToBytes(toStoredProposal(p))
	if err != nil {
		return err
	}
	return s.db.Put(proposalDBKey(p.ID), encoded, nil)
}

// Proposal returns the proposal with the given id, or ErrProposalNotFound.
func (s *LevelDBStore) Proposal(id uint64) (*Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := s.db.Get(proposalDBKey(id), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}
	var sp storedProposal
	if err := rlp.DecodeBytes(data, &sp); err != nil {
		return nil, err
	}
	return fromStoredProposal(&sp), nil
}

// ProposalIDs returns all known proposal ids in creation order.
func (s *LevelDBStore) ProposalIDs() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	index, err := s.indexLocked()
	if err != nil {
		return nil
	}
	return index
}

func (s *LevelDBStore) indexLocked() ([]uint64, error) {
	data, err := s.db.Get(indexKey, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var index []uint64
	if err := rlp.DecodeBytes(data, &index); err != nil {
		return nil, err
	}
	return index, nil
}

// HasVoted reports whether the voter already voted on the proposal.
func (s *LevelDBStore) HasVoted(id uint64, voter common.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	has, err := s.db.Has(voterDBKey(id, voter), nil)
	return err == nil && has
}

// RecordVote overwrites the proposal record and marks the voter, in one
// batch.
func (s *LevelDBStore) RecordVote(p *Proposal, voter common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	has, err := s.db.Has(proposalDBKey(p.ID), nil)
	if err != nil {
		return err
	}
	if !has {
		return ErrProposalNotFound
	}
	encoded, err := rlp.EncodeToBytes(toStoredProposal(p))
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put(proposalDBKey(p.ID), encoded)
	batch.Put(voterDBKey(p.ID, voter), []byte{1})
	return s.db.Write(batch, nil)
}
