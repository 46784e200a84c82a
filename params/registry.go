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

// Package params holds the protocol-wide parameter state governance acts on:
// the interest rates, the paused flag, the stored administrator and the
// governance-active guard.
package params

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/acornsave/acorn/governance"
)

// ErrPaused is returned by RequireNotPaused while the protocol is paused.
var ErrPaused = errors.New("contract is paused")

// Registry is the protocol parameter store. Rates are interest rates in
// basis points; lock rates are keyed by lock duration bucket in seconds.
//
// The direct setters are the non-governance fast path for the same mutations
// proposal execution performs: before governance is activated only the
// stored administrator may call them, afterwards the path opens up (in
// practice, changes still flow through proposal passage, since proposal
// execution invokes the same writes).
type Registry struct {
	mu sync.RWMutex

	admin            common.Address
	flexiRate        *big.Int
	goalRate         *big.Int
	groupRate        *big.Int
	lockRates        map[uint64]*big.Int
	paused           bool
	governanceActive bool

	log log.Logger
}

// NewRegistry creates a registry with the given protocol administrator and
// all rates unset.
func NewRegistry(admin common.Address) *Registry {
	return &Registry{
		admin:     admin,
		lockRates: make(map[uint64]*big.Int),
		log:       log.New("module", "params"),
	}
}

// Admin returns the stored protocol administrator.
func (r *Registry) Admin() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admin
}

// GovernanceActive reports whether governance has been activated.
func (r *Registry) GovernanceActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.governanceActive
}

// SetGovernanceActive irreversibly opens the direct-setter path beyond the
// administrator.
func (r *Registry) SetGovernanceActive() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.governanceActive = true
}

// Paused reports whether the protocol is paused.
func (r *Registry) Paused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused
}

// RequireNotPaused returns ErrPaused while the protocol is paused. Write
// paths elsewhere in the protocol call this before mutating state;
// governance itself keeps working while paused.
func (r *Registry) RequireNotPaused() error {
	if r.Paused() {
		return ErrPaused
	}
	return nil
}

// FlexiRate returns the flexible-savings rate, or nil if unset.
func (r *Registry) FlexiRate() *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRate(r.flexiRate)
}

// GoalRate returns the goal-savings rate, or nil if unset.
func (r *Registry) GoalRate() *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRate(r.goalRate)
}

// GroupRate returns the group-savings rate, or nil if unset.
func (r *Registry) GroupRate() *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRate(r.groupRate)
}

// LockRate returns the locked-savings rate for a duration bucket.
func (r *Registry) LockRate(duration uint64) (*big.Int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rate, ok := r.lockRates[duration]
	return cloneRate(rate), ok
}

func cloneRate(rate *big.Int) *big.Int {
	if rate == nil {
		return nil
	}
	return new(big.Int).Set(rate)
}

// validateAdminOrGovernance is the cross-cutting guard on the direct
// setters: any caller passes once governance is active, otherwise only the
// stored administrator does.
func (r *Registry) validateAdminOrGovernance(caller common.Address) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.governanceActive {
		return nil
	}
	if caller == r.admin {
		return nil
	}
	return governance.ErrUnauthorized
}

func validRate(rate *big.Int) error {
	if rate == nil || rate.Sign() < 0 {
		return governance.ErrInvalidRate
	}
	return nil
}

// SetFlexiRate sets the flexible-savings rate through the guarded path.
func (r *Registry) SetFlexiRate(caller common.Address, rate *big.Int) error {
	if err := r.validateAdminOrGovernance(caller); err != nil {
		return err
	}
	if err := validRate(rate); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flexiRate = new(big.Int).Set(rate)
	r.log.Info("Flexi rate updated", "rate", rate, "caller", caller)
	return nil
}

// SetGoalRate sets the goal-savings rate through the guarded path.
func (r *Registry) SetGoalRate(caller common.Address, rate *big.Int) error {
	if err := r.validateAdminOrGovernance(caller); err != nil {
		return err
	}
	if err := validRate(rate); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goalRate = new(big.Int).Set(rate)
	r.log.Info("Goal rate updated", "rate", rate, "caller", caller)
	return nil
}

// SetGroupRate sets the group-savings rate through the guarded path.
func (r *Registry) SetGroupRate(caller common.Address, rate *big.Int) error {
	if err := r.validateAdminOrGovernance(caller); err != nil {
		return err
	}
	if err := validRate(rate); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groupRate = new(big.Int).Set(rate)
	r.log.Info("Group rate updated", "rate", rate, "caller", caller)
	return nil
}

// SetLockRate sets the locked-savings rate for one duration bucket through
// the guarded path.
func (r *Registry) SetLockRate(caller common.Address, duration uint64, rate *big.Int) error {
	if err := r.validateAdminOrGovernance(caller); err != nil {
		return err
	}
	if err := validRate(rate); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lockRates[duration] = new(big.Int).Set(rate)
	r.log.Info("Lock rate updated", "duration", duration, "rate", rate, "caller", caller)
	return nil
}

// Pause pauses the protocol through the guarded path.
func (r *Registry) Pause(caller common.Address) error {
	if err := r.validateAdminOrGovernance(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
	r.log.Warn("Protocol paused", "caller", caller)
	return nil
}

// Unpause unpauses the protocol through the guarded path.
func (r *Registry) Unpause(caller common.Address) error {
	if err := r.validateAdminOrGovernance(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
	r.log.Warn("Protocol unpaused", "caller", caller)
	return nil
}

// Writer returns the unguarded mutation surface used by proposal execution,
// which is gated by proposal passage and the timelock instead.
func (r *Registry) Writer() governance.ParamWriter {
	return writer{r}
}

type writer struct {
	r *Registry
}

func (w writer) SetFlexiRate(rate *big.Int) error {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	w.r.flexiRate = new(big.Int).Set(rate)
	w.r.log.Info("Flexi rate updated by governance", "rate", rate)
	return nil
}

func (w writer) SetGoalRate(rate *big.Int) error {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	w.r.goalRate = new(big.Int).Set(rate)
	w.r.log.Info("Goal rate updated by governance", "rate", rate)
	return nil
}

func (w writer) SetGroupRate(rate *big.Int) error {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	w.r.groupRate = new(big.Int).Set(rate)
	w.r.log.Info("Group rate updated by governance", "rate", rate)
	return nil
}

func (w writer) SetLockRate(duration uint64, rate *big.Int) error {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	w.r.lockRates[duration] = new(big.Int).Set(rate)
	w.r.log.Info("Lock rate updated by governance", "duration", duration, "rate", rate)
	return nil
}

func (w writer) Pause() error {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	w.r.paused = true
	w.r.log.Warn("Protocol paused by governance")
	return nil
}

func (w writer) Unpause() error {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	w.r.paused = false
	w.r.log.Warn("Protocol unpaused by governance")
	return nil
}
