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
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func TestVoteTallyOverflow(t *testing.T) {
	env := newTestEnv(t)
	env.initConfig(t)

	maxWeight := new(uint256.Int).SetAllOne()
	first := common.HexToAddress("0x10")
	second := common.HexToAddress("0x11")
	env.power.setPower(first, maxWeight)
	env.power.setPower(second, maxWeight)

	id, _ := env.engine.CreateProposal(common.HexToAddress("0x1"), "overflow")

	if err := env.engine.Vote(id, VoteFor, first); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if err := env.engine.Vote(id, VoteFor, second); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}

	// A failed vote leaves no partial state: tally unchanged, voter
	// record unwritten, so the voter may retry on another tally.
	p, _ := env.engine.GetProposal(id)
	if !p.ForVotes.Eq(maxWeight) {
		t.Errorf("tally changed by failed vote: %s", p.ForVotes)
	}
	if env.engine.HasVoted(id, second) {
		t.Error("voter record written by failed vote")
	}
	if err := env.engine.Vote(id, VoteAgainst, second); err != nil {
		t.Errorf("retry on a different tally must succeed: %v", err)
	}
}

func TestTotalVotesOverflow(t *testing.T) {
	env := newTestEnv(t)
	env.initConfig(t)

	// Two max-weight tallies on one proposal make the cross-tally sum
	// overflow at queue time.
	maxWeight := new(uint256.Int).SetAllOne()
	id, _ := env.engine.CreateProposal(common.HexToAddress("0x1"), "sum overflow")
	a := common.HexToAddress("0x30")
	b := common.HexToAddress("0x31")
	env.power.setPower(a, maxWeight)
	env.power.setPower(b, maxWeight)
	if err := env.engine.Vote(id, VoteFor, a); err != nil {
		t.Fatalf("vote a: %v", err)
	}
	if err := env.engine.Vote(id, VoteAbstain, b); err != nil {
		t.Fatalf("vote b: %v", err)
	}

	env.clock.advance(604800 + 1)
	if err := env.engine.QueueProposal(id); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow at queue time, got %v", err)
	}
	p, _ := env.engine.GetProposal(id)
	if p.Queued() {
		t.Error("overflowing proposal was queued")
	}
}

func TestQueueBoundaries(t *testing.T) {
	env := newTestEnv(t)
	env.initConfig(t)

	voter := common.HexToAddress("0x2")
	env.power.setPower(voter, uint256.NewInt(100))
	id, _ := env.engine.CreateProposal(common.HexToAddress("0x1"), "p")
	if err := env.engine.Vote(id, VoteFor, voter); err != nil {
		t.Fatalf("vote: %v", err)
	}

	// end_time itself still belongs to the voting window
	env.clock.now = 1000 + 604800
	if err := env.engine.QueueProposal(id); !errors.Is(err, ErrTooEarly) {
		t.Errorf("queue at end_time must fail, got %v", err)
	}

	env.clock.now = 1000 + 604800 + 1
	if err := env.engine.QueueProposal(id); err != nil {
		t.Fatalf("queue just past end_time: %v", err)
	}
	p, _ := env.engine.GetProposal(id)
	if p.QueuedTime != env.clock.now {
		t.Errorf("expected queued_time %d, got %d", env.clock.now, p.QueuedTime)
	}
}

func TestQueueUnknownProposal(t *testing.T) {
	env := newTestEnv(t)
	env.initConfig(t)
	if err := env.engine.QueueProposal(42); !errors.Is(err, ErrProposalNotFound) {
		t.Errorf("expected ErrProposalNotFound, got %v", err)
	}
	if err := env.engine.ExecuteProposal(42); !errors.Is(err, ErrProposalNotFound) {
		t.Errorf("expected ErrProposalNotFound, got %v", err)
	}
}

func TestExecuteTimelockBoundary(t *testing.T) {
	env := newTestEnv(t)
	env.initConfig(t)

	voter := common.HexToAddress("0x2")
	env.power.setPower(voter, uint256.NewInt(100))
	id, _ := env.engine.CreateActionProposal(common.HexToAddress("0x1"), "p", SetFlexiRate(big.NewInt(500)))
	if err := env.engine.Vote(id, VoteFor, voter); err != nil {
		t.Fatalf("vote: %v", err)
	}

	env.clock.advance(604800 + 1)
	if err := env.engine.QueueProposal(id); err != nil {
		t.Fatalf("queue: %v", err)
	}
	queuedAt := env.clock.now

	// One second short of the timelock
	env.clock.now = queuedAt + 86400 - 1
	if err := env.engine.ExecuteProposal(id); !errors.Is(err, ErrTooEarly) {
		t.Errorf("expected timelock error, got %v", err)
	}

	// Exactly queued_time + timelock is executable
	env.clock.now = queuedAt + 86400
	if err := env.engine.ExecuteProposal(id); err != nil {
		t.Errorf("execute at timelock boundary: %v", err)
	}
	if env.params.flexiRate == nil || env.params.flexiRate.Int64() != 500 {
		t.Errorf("rate not applied: %v", env.params.flexiRate)
	}
}

func TestExecuteActionFailureKeepsProposalOpen(t *testing.T) {
	env := newTestEnv(t)
	env.initConfig(t)

	voter := common.HexToAddress("0x2")
	env.power.setPower(voter, uint256.NewInt(100))
	id, _ := env.engine.CreateActionProposal(common.HexToAddress("0x1"), "p", SetGroupRate(big.NewInt(300)))
	if err := env.engine.Vote(id, VoteFor, voter); err != nil {
		t.Fatalf("vote: %v", err)
	}
	env.clock.advance(604800 + 1)
	if err := env.engine.QueueProposal(id); err != nil {
		t.Fatalf("queue: %v", err)
	}
	env.clock.advance(86400 + 1)

	// The parameter mutation fails after all gates pass: the proposal
	// must not be marked executed and a later retry must succeed.
	sentinel := errors.New("registry unavailable")
	env.params.failWith = sentinel
	if err := env.engine.ExecuteProposal(id); !errors.Is(err, sentinel) {
		t.Fatalf("expected mutation error, got %v", err)
	}
	p, _ := env.engine.GetActionProposal(id)
	if p.Executed {
		t.Fatal("failed execution marked proposal executed")
	}

	env.params.failWith = nil
	if err := env.engine.ExecuteProposal(id); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if env.params.groupRate == nil || env.params.groupRate.Int64() != 300 {
		t.Errorf("rate not applied on retry: %v", env.params.groupRate)
	}
}

func TestExecutionTimeOverflow(t *testing.T) {
	env := newTestEnv(t)
	cfg := &VotingConfig{QuorumBps: 0, VotingPeriod: 10, TimelockDuration: math.MaxUint64}
	if err := env.engine.InitVotingConfig(env.admin, cfg); err != nil {
		t.Fatalf("init: %v", err)
	}

	voter := common.HexToAddress("0x2")
	env.power.setPower(voter, uint256.NewInt(100))
	id, _ := env.engine.CreateProposal(common.HexToAddress("0x1"), "p")
	if err := env.engine.Vote(id, VoteFor, voter); err != nil {
		t.Fatalf("vote: %v", err)
	}
	env.clock.advance(11)
	if err := env.engine.QueueProposal(id); err != nil {
		t.Fatalf("queue: %v", err)
	}

	// queued_time + timelock wraps uint64; the proposal must not become
	// spuriously executable.
	if err := env.engine.ExecuteProposal(id); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestLegacyQuorumPolicy(t *testing.T) {
	cfg := defaultConfig()
	p := &Proposal{}
	if err := LegacyQuorum(cfg, p, new(uint256.Int)); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected quorum failure on zero total, got %v", err)
	}
	if err := LegacyQuorum(cfg, p, uint256.NewInt(1)); err != nil {
		t.Errorf("any non-zero total satisfies the legacy policy: %v", err)
	}
}

func TestThresholdQuorumPolicy(t *testing.T) {
	cfg := defaultConfig() // 5000 bps = 50%
	p := &Proposal{}
	policy := ThresholdQuorum(uint256.NewInt(10000))

	// 4999 of 10000 at 50% quorum: short
	if err := policy(cfg, p, uint256.NewInt(4999)); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected quorum failure, got %v", err)
	}
	// 5000 of 10000 meets it exactly
	if err := policy(cfg, p, uint256.NewInt(5000)); err != nil {
		t.Errorf("exact quorum must pass: %v", err)
	}
	if err := policy(cfg, p, uint256.NewInt(10000)); err != nil {
		t.Errorf("full turnout must pass: %v", err)
	}
}

func TestVoteAfterExecution(t *testing.T) {
	env := newTestEnv(t)
	env.initConfig(t)

	voter := common.HexToAddress("0x2")
	env.power.setPower(voter, uint256.NewInt(100))
	id, _ := env.engine.CreateProposal(common.HexToAddress("0x1"), "p")
	if err := env.engine.Vote(id, VoteFor, voter); err != nil {
		t.Fatalf("vote: %v", err)
	}
	env.clock.advance(604800 + 1)
	if err := env.engine.QueueProposal(id); err != nil {
		t.Fatalf("queue: %v", err)
	}
	env.clock.advance(86400 + 1)
	if err := env.engine.ExecuteProposal(id); err != nil {
		t.Fatalf("execute: %v", err)
	}

	// The voting window closed long ago; late votes stay window errors
	// even on an executed proposal.
	straggler := common.HexToAddress("0x3")
	env.power.setPower(straggler, uint256.NewInt(100))
	if err := env.engine.Vote(id, VoteFor, straggler); !errors.Is(err, ErrTooLate) {
		t.Errorf("expected window error, got %v", err)
	}
}
