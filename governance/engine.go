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
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/holiman/uint256"
)

var (
	proposalCreatedCounter  = metrics.NewRegisteredCounter("governance/proposals/created", nil)
	voteCastCounter         = metrics.NewRegisteredCounter("governance/votes/cast", nil)
	proposalQueuedCounter   = metrics.NewRegisteredCounter("governance/proposals/queued", nil)
	proposalExecutedCounter = metrics.NewRegisteredCounter("governance/proposals/executed", nil)
)

// EngineConfig wires the engine's collaborators. Store, Protocol, Params and
// Power are required; the rest default to SystemClock, OpenAuthorizer,
// NopSink and LegacyQuorum.
type EngineConfig struct {
	Store    ProposalStore
	Protocol ProtocolState
	Params   ParamWriter
	Power    PowerSource
	Auth     Authorizer
	Clock    Clock
	Events   EventSink
	Quorum   QuorumPolicy
}

// Engine drives the proposal lifecycle: creation, weighted voting, quorum
// evaluation, timelock queueing and guarded execution. Every public operation
// runs to completion as one indivisible unit; a failing call commits no state
// writes and publishes no events.
type Engine struct {
	mu sync.Mutex // one call fully finishes before the next begins

	store    ProposalStore
	protocol ProtocolState
	params   ParamWriter
	power    PowerSource
	auth     Authorizer
	clock    Clock
	events   EventSink
	quorum   QuorumPolicy

	log log.Logger
}

// NewEngine creates a governance engine from its collaborators.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Store == nil || cfg.Protocol == nil || cfg.Params == nil || cfg.Power == nil {
		return nil, errors.New("governance: store, protocol, params and power source are required")
	}
	e := &Engine{
		store:    cfg.Store,
		protocol: cfg.Protocol,
		params:   cfg.Params,
		power:    cfg.Power,
		auth:     cfg.Auth,
		clock:    cfg.Clock,
		events:   cfg.Events,
		quorum:   cfg.Quorum,
		log:      log.New("module", "governance"),
	}
	if e.auth == nil {
		e.auth = OpenAuthorizer{}
	}
	if e.clock == nil {
		e.clock = SystemClock()
	}
	if e.events == nil {
		e.events = NopSink()
	}
	if e.quorum == nil {
		e.quorum = LegacyQuorum
	}
	return e, nil
}

// InitVotingConfig stores the voting configuration and resets the proposal
// counter to 1. Only the stored protocol administrator may call it, and only
// once; a second call fails rather than being silently accepted.
func (e *Engine) InitVotingConfig(admin common.Address, cfg *VotingConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.auth.RequireAuth(admin); err != nil {
		return err
	}
	if admin != e.protocol.Admin() {
		return ErrUnauthorized
	}
	if e.store.HasConfig() {
		return ErrConfigInitialized
	}
	if err := e.store.InitConfig(cfg.Copy()); err != nil {
		return err
	}
	e.log.Info("Voting config initialized", "quorumBps", cfg.QuorumBps,
		"votingPeriod", cfg.VotingPeriod, "timelock", cfg.TimelockDuration)
	return nil
}

// GetVotingConfig returns the voting configuration, or ErrConfigMissing.
func (e *Engine) GetVotingConfig() (*VotingConfig, error) {
	return e.store.Config()
}

// CreateProposal creates a plain text proposal and returns its id. The
// description is stored as given; no length or content validation is applied.
func (e *Engine) CreateProposal(creator common.Address, description string) (uint64, error) {
	return e.createProposal(creator, description, nil)
}

// CreateActionProposal creates a proposal whose passage executes the encoded
// action, and returns its id.
func (e *Engine) CreateActionProposal(creator common.Address, description string, action *ProposalAction) (uint64, error) {
	if action == nil {
		return 0, ErrInvalidAmount
	}
	return e.createProposal(creator, description, action.Copy())
}

func (e *Engine) createProposal(creator common.Address, description string, action *ProposalAction) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.auth.RequireAuth(creator); err != nil {
		return 0, err
	}
	cfg, err := e.store.Config()
	if err != nil {
		return 0, err
	}
	now := e.clock.Now()
	p := &Proposal{
		ID:           e.store.NextID(),
		Creator:      creator,
		Description:  description,
		StartTime:    now,
		EndTime:      now + cfg.VotingPeriod,
		ForVotes:     new(uint256.Int),
		AgainstVotes: new(uint256.Int),
		AbstainVotes: new(uint256.Int),
		Action:       action,
	}
	if err := e.store.InsertProposal(p); err != nil {
		return 0, err
	}

	proposalCreatedCounter.Inc(1)
	e.log.Info("Proposal created", "id", p.ID, "creator", creator, "action", p.IsAction(), "endTime", p.EndTime)
	e.events.Publish(Event{
		Kind:        EventProposalCreated,
		ProposalID:  p.ID,
		Account:     creator,
		Description: description,
	})
	return p.ID, nil
}

// GetVotingPower returns the voter's current weight from the power source,
// clamped to non-negative (a nil oracle result reads as zero).
func (e *Engine) GetVotingPower(voter common.Address) *uint256.Int {
	w := e.power.VotingPower(voter)
	if w == nil {
		return new(uint256.Int)
	}
	return w.Clone()
}

// Vote casts a weighted vote on an active proposal. Voting power is looked up
// at call time, a zero weight is rejected rather than tallied, and a given
// (proposal, voter) pair can vote at most once, ever.
func (e *Engine) Vote(proposalID uint64, voteType VoteType, voter common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.auth.RequireAuth(voter); err != nil {
		return err
	}
	if !voteType.Valid() {
		return ErrInvalidVoteType
	}
	weight := e.power.VotingPower(voter)
	if weight == nil || weight.IsZero() {
		return ErrNoVotingPower
	}
	if e.store.HasVoted(proposalID, voter) {
		return ErrAlreadyVoted
	}
	p, err := e.store.Proposal(proposalID)
	if err != nil {
		return err
	}
	now := e.clock.Now()
	if now < p.StartTime || now > p.EndTime {
		return ErrOutsideWindow
	}

	// Checked accumulation into a copy; an overflow aborts the call with no
	// partial tally update.
	var tally *uint256.Int
	switch voteType {
	case VoteFor:
		tally = p.ForVotes
	case VoteAgainst:
		tally = p.AgainstVotes
	case VoteAbstain:
		tally = p.AbstainVotes
	}
	if _, carry := tally.AddOverflow(tally, weight); carry {
		return ErrOverflow
	}
	if err := e.store.RecordVote(p, voter); err != nil {
		return err
	}

	voteCastCounter.Inc(1)
	e.log.Debug("Vote cast", "id", proposalID, "voter", voter, "type", voteType, "weight", weight)
	e.events.Publish(Event{
		Kind:       EventVoteCast,
		ProposalID: proposalID,
		Account:    voter,
		VoteType:   voteType,
		Weight:     weight.Clone(),
	})
	return nil
}

// QueueProposal moves a passed proposal behind the timelock. The voting
// window must have ended, the proposal must hold a strict for-over-against
// majority (a tie defeats it), satisfy the quorum policy, and not already be
// queued or executed.
func (e *Engine) QueueProposal(proposalID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.Proposal(proposalID)
	if err != nil {
		return err
	}
	now := e.clock.Now()
	if now <= p.EndTime {
		return ErrVotingOpen
	}
	if p.Queued() {
		return ErrAlreadyQueued
	}
	// Unreachable while execution requires a queued time, but checked anyway.
	if p.Executed {
		return ErrProposalCompleted
	}
	if !p.ForVotes.Gt(p.AgainstVotes) {
		return ErrProposalDefeated
	}
	cfg, err := e.store.Config()
	if err != nil {
		return err
	}
	total, err := p.TotalVotes()
	if err != nil {
		return err
	}
	if err := e.quorum(cfg, p, total); err != nil {
		return err
	}

	p.QueuedTime = now
	if err := e.store.UpdateProposal(p); err != nil {
		return err
	}

	proposalQueuedCounter.Inc(1)
	e.log.Info("Proposal queued", "id", proposalID, "queuedAt", now)
	e.events.Publish(Event{Kind: EventProposalQueued, ProposalID: proposalID, Time: now})
	return nil
}

// ExecuteProposal executes a queued proposal once its timelock has elapsed.
// Execution succeeds at exactly queued_time + timelock_duration. For an
// action proposal the action is dispatched before the executed flag is set,
// so a failing mutator aborts the call and leaves the proposal retryable.
func (e *Engine) ExecuteProposal(proposalID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg, err := e.store.Config()
	if err != nil {
		return err
	}
	p, err := e.store.Proposal(proposalID)
	if err != nil {
		return err
	}
	if !p.Queued() {
		return ErrNotQueued
	}
	if p.Executed {
		return ErrProposalCompleted
	}
	executionTime := p.QueuedTime + cfg.TimelockDuration
	if executionTime < p.QueuedTime { // uint64 wrap
		return ErrOverflow
	}
	now := e.clock.Now()
	if now < executionTime {
		return ErrTimelockActive
	}
	if p.IsAction() {
		if err := e.executeAction(p.Action); err != nil {
			return err
		}
	}

	p.Executed = true
	if err := e.store.UpdateProposal(p); err != nil {
		return err
	}

	proposalExecutedCounter.Inc(1)
	e.log.Info("Proposal executed", "id", proposalID, "executedAt", now)
	e.events.Publish(Event{Kind: EventProposalExecuted, ProposalID: proposalID, Time: now})
	return nil
}

// executeAction dispatches the encoded action to the parameter writer. Each
// variant maps to exactly one mutation; no other side effects occur.
func (e *Engine) executeAction(a *ProposalAction) error {
	switch a.Kind {
	case ActionSetFlexiRate:
		if a.Rate == nil || a.Rate.Sign() < 0 {
			return ErrInvalidRate
		}
		return e.params.SetFlexiRate(a.Rate)
	case ActionSetGoalRate:
		if a.Rate == nil || a.Rate.Sign() < 0 {
			return ErrInvalidRate
		}
		return e.params.SetGoalRate(a.Rate)
	case ActionSetGroupRate:
		if a.Rate == nil || a.Rate.Sign() < 0 {
			return ErrInvalidRate
		}
		return e.params.SetGroupRate(a.Rate)
	case ActionSetLockRate:
		if a.Rate == nil || a.Rate.Sign() < 0 {
			return ErrInvalidRate
		}
		return e.params.SetLockRate(a.LockDuration, a.Rate)
	case ActionPause:
		return e.params.Pause()
	case ActionUnpause:
		return e.params.Unpause()
	default:
		return ErrInvalidAmount
	}
}

// GetProposal returns the plain proposal with the given id. An id that
// resolves to an action proposal is not found here.
func (e *Engine) GetProposal(id uint64) (*Proposal, error) {
	p, err := e.store.Proposal(id)
	if err != nil {
		return nil, err
	}
	if p.IsAction() {
		return nil, ErrProposalNotFound
	}
	return p, nil
}

// GetActionProposal returns the action proposal with the given id. An id that
// resolves to a plain proposal is not found here.
func (e *Engine) GetActionProposal(id uint64) (*Proposal, error) {
	p, err := e.store.Proposal(id)
	if err != nil {
		return nil, err
	}
	if !p.IsAction() {
		return nil, ErrProposalNotFound
	}
	return p, nil
}

// ListProposals returns all proposal ids in creation order.
func (e *Engine) ListProposals() []uint64 {
	return e.store.ProposalIDs()
}

// HasVoted reports whether the voter already voted on the proposal.
func (e *Engine) HasVoted(id uint64, voter common.Address) bool {
	return e.store.HasVoted(id, voter)
}

// ActivateGovernance opens the direct parameter-setter fast path beyond the
// administrator. Only the stored administrator may call it; activation is
// idempotent and irreversible.
func (e *Engine) ActivateGovernance(admin common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.auth.RequireAuth(admin); err != nil {
		return err
	}
	if admin != e.protocol.Admin() {
		return ErrUnauthorized
	}
	e.protocol.SetGovernanceActive()
	e.log.Info("Governance activated", "admin", admin)
	return nil
}

// IsGovernanceActive reports whether governance has been activated.
func (e *Engine) IsGovernanceActive() bool {
	return e.protocol.GovernanceActive()
}
