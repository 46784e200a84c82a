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

// Package rewards tracks per-user deposit history. Governance reads the
// lifetime-deposited figure as the single economic input to vote weight.
package rewards

import (
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// DefaultPointsPerToken is the reward points accrued per token deposited.
const DefaultPointsPerToken = 10

var (
	ErrUserExists   = errors.New("user already initialized")
	ErrRewardsLimit = errors.New("reward accumulation overflow")
)

// UserRewards is a user's reward ledger entry.
type UserRewards struct {
	TotalPoints         *uint256.Int
	LifetimeDeposited   *uint256.Int
	CurrentStreak       uint32
	LastActionTimestamp uint64
}

func newUserRewards(now uint64) *UserRewards {
	return &UserRewards{
		TotalPoints:         new(uint256.Int),
		LifetimeDeposited:   new(uint256.Int),
		LastActionTimestamp: now,
	}
}

func (u *UserRewards) copy() *UserRewards {
	return &UserRewards{
		TotalPoints:         u.TotalPoints.Clone(),
		LifetimeDeposited:   u.LifetimeDeposited.Clone(),
		CurrentStreak:       u.CurrentStreak,
		LastActionTimestamp: u.LastActionTimestamp,
	}
}

// Ledger is an in-memory rewards ledger. A user unknown to the ledger reads
// as an empty entry, so voting power for new users is zero.
type Ledger struct {
	mu             sync.RWMutex
	users          map[common.Address]*UserRewards
	pointsPerToken uint64
}

// NewLedger creates an empty ledger with the default points rate.
func NewLedger() *Ledger {
	return &Ledger{
		users:          make(map[common.Address]*UserRewards),
		pointsPerToken: DefaultPointsPerToken,
	}
}

// InitializeUser creates an empty ledger entry for the user.
func (l *Ledger) InitializeUser(user common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.users[user]; exists {
		return ErrUserExists
	}
	l.users[user] = newUserRewards(uint64(time.Now().Unix()))
	return nil
}

// RecordDeposit adds a deposit to the user's lifetime total and accrues
// points. Unknown users are created implicitly.
func (l *Ledger) RecordDeposit(user common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.users[user]
	if !exists {
		entry = newUserRewards(0)
	}

	lifetime := new(uint256.Int)
	if _, carry := lifetime.AddOverflow(entry.LifetimeDeposited, amount); carry {
		return ErrRewardsLimit
	}
	points, carry := new(uint256.Int).MulOverflow(amount, uint256.NewInt(l.pointsPerToken))
	if carry {
		return ErrRewardsLimit
	}
	total := new(uint256.Int)
	if _, carry := total.AddOverflow(entry.TotalPoints, points); carry {
		return ErrRewardsLimit
	}

	entry.LifetimeDeposited = lifetime
	entry.TotalPoints = total
	entry.LastActionTimestamp = uint64(time.Now().Unix())
	l.users[user] = entry
	return nil
}

// UserRewards returns a copy of the user's ledger entry. Unknown users read
// as an empty entry.
func (l *Ledger) UserRewards(user common.Address) *UserRewards {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if entry, exists := l.users[user]; exists {
		return entry.copy()
	}
	return newUserRewards(0)
}

// LifetimeDeposited returns the user's lifetime deposit total.
func (l *Ledger) LifetimeDeposited(user common.Address) *uint256.Int {
	return l.UserRewards(user).LifetimeDeposited
}

// VotingPower returns the user's governance weight: the lifetime-deposited
// figure, read fresh at call time. This makes the Ledger a power source for
// the governance engine.
func (l *Ledger) VotingPower(voter common.Address) *uint256.Int {
	return l.LifetimeDeposited(voter)
}
