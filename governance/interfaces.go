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
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PowerSource supplies the voting weight of an identity, derived from its
// lifetime deposit total. The engine queries it fresh at the moment of each
// vote; weights are NOT snapshotted at proposal creation, so a voter's weight
// can differ between votes on different proposals. If the underlying figure
// is mutable between votes this is a manipulation surface the host accepts.
type PowerSource interface {
	// VotingPower returns the non-negative weight of the voter. A nil or
	// zero result means the voter may not vote.
	VotingPower(voter common.Address) *uint256.Int
}

// ProposalStore is the durable mapping from proposal id to record, plus the
// config singleton, the id index, the monotonic counter and the per-voter
// sentinels. Methods that perform several writes (InsertProposal, RecordVote,
// InitConfig) must apply them atomically: either all writes land or none do.
type ProposalStore interface {
	// HasConfig reports whether the voting config has been initialized.
	HasConfig() bool

	// Config returns the voting config, or ErrConfigMissing.
	Config() (*VotingConfig, error)

	// InitConfig stores the config and resets the proposal counter to 1.
	// Fails with ErrConfigInitialized if a config already exists.
	InitConfig(cfg *VotingConfig) error

	// NextID returns the id the next proposal will be assigned.
	NextID() uint64

	// InsertProposal stores a new proposal, appends its id to the index and
	// advances the counter past it.
	InsertProposal(p *Proposal) error

	// UpdateProposal overwrites an existing proposal record.
	UpdateProposal(p *Proposal) error

	// Proposal returns a copy of the proposal, or ErrProposalNotFound.
	Proposal(id uint64) (*Proposal, error)

	// ProposalIDs returns all known proposal ids in creation order.
	ProposalIDs() []uint64

	// HasVoted reports whether the voter already voted on the proposal.
	HasVoted(id uint64, voter common.Address) bool

	// RecordVote overwrites the proposal record and marks the voter as
	// having voted, atomically.
	RecordVote(p *Proposal, voter common.Address) error
}

// EventSink receives append-only notifications of lifecycle transitions for
// off-ledger observers. Publish is called only after the transition's state
// writes have committed.
type EventSink interface {
	Publish(ev Event)
}

// Authorizer answers whether the current call carries proof of control over
// an identity. The surrounding execution environment decides what counts as
// proof; see SessionAuthorizer for a signature-based implementation.
type Authorizer interface {
	RequireAuth(caller common.Address) error
}

// ParamWriter is the mutation surface proposal execution dispatches to. It is
// unguarded: execution is already gated by proposal passage and the timelock.
// Rates are validated non-negative by the engine before dispatch.
type ParamWriter interface {
	SetFlexiRate(rate *big.Int) error
	SetGoalRate(rate *big.Int) error
	SetGroupRate(rate *big.Int) error
	SetLockRate(duration uint64, rate *big.Int) error
	Pause() error
	Unpause() error
}

// ProtocolState exposes the protocol-wide singletons the engine consults:
// the stored administrator and the governance-active flag.
type ProtocolState interface {
	// Admin returns the stored protocol administrator.
	Admin() common.Address

	// GovernanceActive reports whether governance has been activated.
	GovernanceActive() bool

	// SetGovernanceActive irreversibly activates governance.
	SetGovernanceActive()
}

// Clock supplies the current time in seconds. The engine never reads wall
// time directly; time only advances between calls.
type Clock interface {
	Now() uint64
}

type systemClock struct{}

func (systemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// QuorumPolicy evaluates the quorum condition when a proposal is queued.
// total is the checked sum of all three tallies. A non-nil error keeps the
// proposal out of the queue.
type QuorumPolicy func(cfg *VotingConfig, p *Proposal, total *uint256.Int) error

// LegacyQuorum reads the configured basis-points quorum but only enforces
// total > 0, matching the deployed contract. The basis-points field is
// evidently meant to be compared against total possible voting power; hosts
// that want that behavior supply ThresholdQuorum instead.
func LegacyQuorum(cfg *VotingConfig, p *Proposal, total *uint256.Int) error {
	if total.IsZero() {
		return ErrQuorumNotMet
	}
	return nil
}

// ThresholdQuorum returns a policy that requires
// total * 10000 >= quorum_bps * totalPower, where totalPower is the total
// possible voting power supplied by the host.
func ThresholdQuorum(totalPower *uint256.Int) QuorumPolicy {
	return func(cfg *VotingConfig, p *Proposal, total *uint256.Int) error {
		if total.IsZero() {
			return ErrQuorumNotMet
		}
		lhs, carry := new(uint256.Int).MulOverflow(total, uint256.NewInt(10000))
		if carry {
			return ErrOverflow
		}
		rhs, carry := new(uint256.Int).MulOverflow(totalPower, uint256.NewInt(uint64(cfg.QuorumBps)))
		if carry {
			return ErrOverflow
		}
		if lhs.Lt(rhs) {
			return ErrQuorumNotMet
		}
		return nil
	}
}
