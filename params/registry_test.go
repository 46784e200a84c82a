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

package params

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acornsave/acorn/governance"
)

var (
	admin    = common.HexToAddress("0xa0")
	stranger = common.HexToAddress("0x99")
)

func TestRegistryAdminGuard(t *testing.T) {
	r := NewRegistry(admin)

	// Before activation only the stored administrator may mutate
	err := r.SetFlexiRate(stranger, big.NewInt(500))
	assert.ErrorIs(t, err, governance.ErrUnauthorized)
	assert.Nil(t, r.FlexiRate())

	require.NoError(t, r.SetFlexiRate(admin, big.NewInt(500)))
	require.NotNil(t, r.FlexiRate())
	assert.Equal(t, int64(500), r.FlexiRate().Int64())

	// Activation opens the direct-setter path
	r.SetGovernanceActive()
	assert.True(t, r.GovernanceActive())
	require.NoError(t, r.SetFlexiRate(stranger, big.NewInt(600)))
	assert.Equal(t, int64(600), r.FlexiRate().Int64())
}

func TestRegistryRateValidation(t *testing.T) {
	r := NewRegistry(admin)

	assert.ErrorIs(t, r.SetGoalRate(admin, nil), governance.ErrInvalidRate)
	assert.ErrorIs(t, r.SetGoalRate(admin, big.NewInt(-1)), governance.ErrInvalidRate)
	assert.Nil(t, r.GoalRate())

	require.NoError(t, r.SetGoalRate(admin, big.NewInt(0)))
	assert.Equal(t, int64(0), r.GoalRate().Int64())
}

func TestRegistryLockRates(t *testing.T) {
	r := NewRegistry(admin)

	_, ok := r.LockRate(2592000)
	assert.False(t, ok)

	require.NoError(t, r.SetLockRate(admin, 2592000, big.NewInt(800)))
	require.NoError(t, r.SetLockRate(admin, 7776000, big.NewInt(1200)))

	rate, ok := r.LockRate(2592000)
	require.True(t, ok)
	assert.Equal(t, int64(800), rate.Int64())
	rate, ok = r.LockRate(7776000)
	require.True(t, ok)
	assert.Equal(t, int64(1200), rate.Int64())

	// Buckets are independent
	require.NoError(t, r.SetLockRate(admin, 2592000, big.NewInt(900)))
	rate, _ = r.LockRate(2592000)
	assert.Equal(t, int64(900), rate.Int64())
	rate, _ = r.LockRate(7776000)
	assert.Equal(t, int64(1200), rate.Int64())
}

func TestRegistryPause(t *testing.T) {
	r := NewRegistry(admin)

	assert.False(t, r.Paused())
	assert.NoError(t, r.RequireNotPaused())

	assert.ErrorIs(t, r.Pause(stranger), governance.ErrUnauthorized)

	require.NoError(t, r.Pause(admin))
	assert.True(t, r.Paused())
	assert.ErrorIs(t, r.RequireNotPaused(), ErrPaused)

	// Rates stay readable while paused; governance-side writes also keep
	// working, the guard is for the savings paths
	require.NoError(t, r.SetGroupRate(admin, big.NewInt(300)))

	require.NoError(t, r.Unpause(admin))
	assert.False(t, r.Paused())
	assert.NoError(t, r.RequireNotPaused())
}

func TestRegistryReadCopies(t *testing.T) {
	r := NewRegistry(admin)
	require.NoError(t, r.SetFlexiRate(admin, big.NewInt(500)))

	got := r.FlexiRate()
	got.SetInt64(-1)
	assert.Equal(t, int64(500), r.FlexiRate().Int64(), "reader mutated registry state")

	require.NoError(t, r.SetLockRate(admin, 2592000, big.NewInt(800)))
	rate, _ := r.LockRate(2592000)
	rate.SetInt64(-1)
	rate, _ = r.LockRate(2592000)
	assert.Equal(t, int64(800), rate.Int64(), "reader mutated lock rate state")
}

func TestRegistryWriterBypassesCallerGuard(t *testing.T) {
	r := NewRegistry(admin)
	w := r.Writer()

	// The writer is the proposal-execution path: passage already
	// authorized the change, so no caller check is applied
	require.NoError(t, w.SetFlexiRate(big.NewInt(500)))
	assert.Equal(t, int64(500), r.FlexiRate().Int64())

	require.NoError(t, w.SetLockRate(2592000, big.NewInt(800)))
	rate, ok := r.LockRate(2592000)
	require.True(t, ok)
	assert.Equal(t, int64(800), rate.Int64())

	require.NoError(t, w.Pause())
	assert.True(t, r.Paused())
	require.NoError(t, w.Unpause())
	assert.False(t, r.Paused())
}

func TestRegistryImplementsProtocolState(t *testing.T) {
	var _ governance.ProtocolState = NewRegistry(admin)

	r := NewRegistry(admin)
	assert.Equal(t, admin, r.Admin())
	assert.False(t, r.GovernanceActive())
	r.SetGovernanceActive()
	assert.True(t, r.GovernanceActive())
}
