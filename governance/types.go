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

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// VoteType identifies how a vote is counted.
type VoteType uint32

const (
	VoteFor     VoteType = 1
	VoteAgainst VoteType = 2
	VoteAbstain VoteType = 3
)

// Valid reports whether the vote type is one of the three accepted values.
func (v VoteType) Valid() bool {
	return v >= VoteFor && v <= VoteAbstain
}

// ActionKind identifies the parameter mutation an action proposal carries.
type ActionKind uint8

const (
	ActionSetFlexiRate ActionKind = 0x01 // flexible-savings rate
	ActionSetGoalRate  ActionKind = 0x02 // goal-savings rate
	ActionSetGroupRate ActionKind = 0x03 // group-savings rate
	ActionSetLockRate  ActionKind = 0x04 // locked-savings rate, per duration bucket
	ActionPause        ActionKind = 0x05 // pause the protocol
	ActionUnpause      ActionKind = 0x06 // unpause the protocol
)

// ProposalAction is the encoded parameter mutation attached to an action
// proposal. Rate is set for the four rate kinds and LockDuration only for
// ActionSetLockRate; the pause kinds carry no payload.
type ProposalAction struct {
	Kind         ActionKind
	Rate         *big.Int
	LockDuration uint64
}

// SetFlexiRate builds an action that overwrites the flexible-savings rate.
func SetFlexiRate(rate *big.Int) *ProposalAction {
	return &ProposalAction{Kind: ActionSetFlexiRate, Rate: new(big.Int).Set(rate)}
}

// SetGoalRate builds an action that overwrites the goal-savings rate.
func SetGoalRate(rate *big.Int) *ProposalAction {
	return &ProposalAction{Kind: ActionSetGoalRate, Rate: new(big.Int).Set(rate)}
}

// SetGroupRate builds an action that overwrites the group-savings rate.
func SetGroupRate(rate *big.Int) *ProposalAction {
	return &ProposalAction{Kind: ActionSetGroupRate, Rate: new(big.Int).Set(rate)}
}

// SetLockRate builds an action that overwrites the locked-savings rate for
// one lock duration bucket.
func SetLockRate(duration uint64, rate *big.Int) *ProposalAction {
	return &ProposalAction{Kind: ActionSetLockRate, Rate: new(big.Int).Set(rate), LockDuration: duration}
}

// PauseContract builds an action that pauses the protocol.
func PauseContract() *ProposalAction {
	return &ProposalAction{Kind: ActionPause}
}

// UnpauseContract builds an action that unpauses the protocol.
func UnpauseContract() *ProposalAction {
	return &ProposalAction{Kind: ActionUnpause}
}

// Copy returns a deep copy of the action.
func (a *ProposalAction) Copy() *ProposalAction {
	if a == nil {
		return nil
	}
	cpy := &ProposalAction{Kind: a.Kind, LockDuration: a.LockDuration}
	if a.Rate != nil {
		cpy.Rate = new(big.Int).Set(a.Rate)
	}
	return cpy
}

// VotingConfig holds the governance parameters. It is created exactly once by
// the protocol administrator and is immutable afterwards. Quorum is expressed
// in basis points (10000 = 100%), periods in seconds.
type VotingConfig struct {
	QuorumBps        uint32
	VotingPeriod     uint64
	TimelockDuration uint64
}

// Copy returns a copy of the config.
func (c *VotingConfig) Copy() *VotingConfig {
	cpy := *c
	return &cpy
}

// Proposal is the canonical proposal record. Plain text proposals and action
// proposals share one id space, one index and one monotonic counter; a
// proposal carries an action exactly when Action is non-nil, so a given id
// resolves to at most one kind.
type Proposal struct {
	ID           uint64
	Creator      common.Address
	Description  string
	StartTime    uint64
	EndTime      uint64 // StartTime + VotingPeriod, fixed at creation
	Executed     bool
	ForVotes     *uint256.Int
	AgainstVotes *uint256.Int
	AbstainVotes *uint256.Int
	QueuedTime   uint64 // 0 = not queued
	Action       *ProposalAction
}

// IsAction reports whether the proposal carries an encoded action.
func (p *Proposal) IsAction() bool {
	return p.Action != nil
}

// Queued reports whether the proposal has been queued behind the timelock.
func (p *Proposal) Queued() bool {
	return p.QueuedTime > 0
}

// Copy returns a deep copy of the proposal.
func (p *Proposal) Copy() *Proposal {
	cpy := *p
	cpy.ForVotes = p.ForVotes.Clone()
	cpy.AgainstVotes = p.AgainstVotes.Clone()
	cpy.AbstainVotes = p.AbstainVotes.Clone()
	cpy.Action = p.Action.Copy()
	return &cpy
}

// TotalVotes returns for + against + abstain with overflow checking.
func (p *Proposal) TotalVotes() (*uint256.Int, error) {
	total := new(uint256.Int)
	if _, carry := total.AddOverflow(p.ForVotes, p.AgainstVotes); carry {
		return nil, ErrOverflow
	}
	if _, carry := total.AddOverflow(total, p.AbstainVotes); carry {
		return nil, ErrOverflow
	}
	return total, nil
}
