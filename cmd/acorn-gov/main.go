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

// acorn-gov is an operator tool for the governance engine: it validates
// bootstrap files and can walk a complete proposal lifecycle against an
// in-memory engine to sanity-check a configuration before deployment.
package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"

	"github.com/acornsave/acorn/governance"
	"github.com/acornsave/acorn/internal/config"
	"github.com/acornsave/acorn/params"
	"github.com/acornsave/acorn/rewards"
)

func main() {
	app := &cli.App{
		Name:  "acorn-gov",
		Usage: "governance bootstrap and dry-run tool",
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "validate a governance bootstrap file",
				ArgsUsage: "<config.toml>",
				Action:    checkConfig,
			},
			{
				Name:      "dry-run",
				Usage:     "walk a full proposal lifecycle against an in-memory engine",
				ArgsUsage: "<config.toml>",
				Action:    dryRun,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.GovernanceFile, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one config file argument")
	}
	return config.Load(c.Args().First())
}

func checkConfig(c *cli.Context) error {
	f, err := loadConfig(c)
	if err != nil {
		return err
	}
	fmt.Printf("Config OK\n")
	fmt.Printf("  admin:          %s\n", f.AdminAddress())
	fmt.Printf("  quorum:         %d bps\n", f.QuorumBps)
	fmt.Printf("  voting period:  %ds\n", f.VotingPeriodSecs)
	fmt.Printf("  timelock:       %ds\n", f.TimelockSecs)
	return nil
}

// manualClock lets the dry run fast-forward through the voting window and
// the timelock.
type manualClock struct {
	now uint64
}

func (c *manualClock) Now() uint64 {
	return c.now
}

func dryRun(c *cli.Context) error {
	f, err := loadConfig(c)
	if err != nil {
		return err
	}

	registry := params.NewRegistry(f.AdminAddress())
	ledger := rewards.NewLedger()
	clock := &manualClock{now: 1}
	sink := governance.NewFeedSink()

	engine, err := governance.NewEngine(governance.EngineConfig{
		Store:    governance.NewMemoryStore(),
		Protocol: registry,
		Params:   registry.Writer(),
		Power:    ledger,
		Clock:    clock,
		Events:   sink,
	})
	if err != nil {
		return err
	}

	events := make(chan governance.Event, 16)
	sub := sink.Subscribe(events)
	defer sub.Unsubscribe()

	if err := engine.InitVotingConfig(f.AdminAddress(), f.VotingConfig()); err != nil {
		return err
	}
	fmt.Println("Voting config initialized")

	// Synthetic depositors: one creator and two voters.
	creator := newAccount()
	voterA := newAccount()
	voterB := newAccount()
	for addr, amount := range map[common.Address]uint64{creator: 1000, voterA: 3000, voterB: 2000} {
		if err := ledger.RecordDeposit(addr, uint256.NewInt(amount)); err != nil {
			return err
		}
	}

	id, err := engine.CreateActionProposal(creator, "dry-run: set flexi rate to 500 bps", governance.SetFlexiRate(big.NewInt(500)))
	if err != nil {
		return err
	}
	fmt.Printf("Proposal %d created by %s\n", id, creator)

	for _, voter := range []common.Address{voterA, voterB} {
		if err := engine.Vote(id, governance.VoteFor, voter); err != nil {
			return err
		}
		fmt.Printf("Vote cast by %s (weight %s)\n", voter, engine.GetVotingPower(voter))
	}

	clock.now += f.VotingPeriodSecs + 1
	if err := engine.QueueProposal(id); err != nil {
		return err
	}
	fmt.Printf("Proposal %d queued at t=%d\n", id, clock.now)

	clock.now += f.TimelockSecs + 1
	if err := engine.ExecuteProposal(id); err != nil {
		return err
	}
	fmt.Printf("Proposal %d executed at t=%d, flexi rate is now %s bps\n", id, clock.now, registry.FlexiRate())

	drain(events)
	return nil
}

func newAccount() common.Address {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return crypto.PubkeyToAddress(key.PublicKey)
}

func drain(events chan governance.Event) {
	for {
		select {
		case ev := <-events:
			fmt.Printf("Event: kind=%d proposal=%d\n", ev.Kind, ev.ProposalID)
		default:
			return
		}
	}
}
