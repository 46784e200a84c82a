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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "governance.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
admin = "0x00000000000000000000000000000000000000a0"
quorum_bps = 5000
voting_period_seconds = 604800
timelock_seconds = 86400
`)
	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0xa0"), f.AdminAddress())
	assert.Equal(t, uint32(5000), f.QuorumBps)

	cfg := f.VotingConfig()
	assert.Equal(t, uint32(5000), cfg.QuorumBps)
	assert.Equal(t, uint64(604800), cfg.VotingPeriod)
	assert.Equal(t, uint64(86400), cfg.TimelockDuration)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := GovernanceFile{
		Admin:            "0x00000000000000000000000000000000000000a0",
		QuorumBps:        5000,
		VotingPeriodSecs: 604800,
		TimelockSecs:     86400,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*GovernanceFile)
	}{
		{"bad admin", func(f *GovernanceFile) { f.Admin = "not-an-address" }},
		{"empty admin", func(f *GovernanceFile) { f.Admin = "" }},
		{"quorum over 100%", func(f *GovernanceFile) { f.QuorumBps = 10001 }},
		{"zero voting period", func(f *GovernanceFile) { f.VotingPeriodSecs = 0 }},
		{"zero timelock", func(f *GovernanceFile) { f.TimelockSecs = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			assert.Error(t, f.Validate())
		})
	}
}
