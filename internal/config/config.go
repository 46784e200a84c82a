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

// Package config loads and validates governance bootstrap files.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"

	"github.com/acornsave/acorn/governance"
)

// GovernanceFile is the TOML shape of a governance bootstrap file:
//
//	admin = "0x..."
//	quorum_bps = 5000
//	voting_period_seconds = 604800
//	timelock_seconds = 86400
type GovernanceFile struct {
	Admin            string `toml:"admin"`
	QuorumBps        uint32 `toml:"quorum_bps"`
	VotingPeriodSecs uint64 `toml:"voting_period_seconds"`
	TimelockSecs     uint64 `toml:"timelock_seconds"`
}

// Load reads and validates a governance bootstrap file.
func Load(path string) (*GovernanceFile, error) {
	var f GovernanceFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the file's fields for consistency.
func (f *GovernanceFile) Validate() error {
	if !common.IsHexAddress(f.Admin) {
		return fmt.Errorf("admin %q is not a valid address", f.Admin)
	}
	if f.QuorumBps > 10000 {
		return fmt.Errorf("quorum_bps %d exceeds 10000 (100%%)", f.QuorumBps)
	}
	if f.VotingPeriodSecs == 0 {
		return fmt.Errorf("voting_period_seconds must be positive")
	}
	if f.TimelockSecs == 0 {
		return fmt.Errorf("timelock_seconds must be positive")
	}
	return nil
}

// AdminAddress returns the configured administrator address.
func (f *GovernanceFile) AdminAddress() common.Address {
	return common.HexToAddress(f.Admin)
}

// VotingConfig converts the file into the engine's config record.
func (f *GovernanceFile) VotingConfig() *governance.VotingConfig {
	return &governance.VotingConfig{
		QuorumBps:        f.QuorumBps,
		VotingPeriod:     f.VotingPeriodSecs,
		TimelockDuration: f.TimelockSecs,
	}
}
