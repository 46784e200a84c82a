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
	"fmt"
)

// Base error kinds. Governance shares the protocol-wide error space, so
// several distinct failure reasons intentionally surface the same kind;
// callers match on these with errors.Is.
var (
	ErrUnauthorized        = errors.New("caller is not authorized")
	ErrConfigInitialized   = errors.New("voting config already initialized")
	ErrConfigMissing       = errors.New("voting config not initialized")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateEntry      = errors.New("duplicate entry")
	ErrProposalNotFound    = errors.New("proposal not found")
	ErrTooEarly            = errors.New("too early")
	ErrTooLate             = errors.New("too late")
	ErrProposalCompleted   = errors.New("proposal already executed")
	ErrOverflow            = errors.New("arithmetic overflow")
	ErrInvalidRate         = errors.New("invalid interest rate")
)

// Call-site variants. Each wraps its base kind so the externally observable
// identity is unchanged while the message says what actually went wrong.
var (
	ErrInvalidVoteType  = fmt.Errorf("vote type must be 1 (for), 2 (against) or 3 (abstain): %w", ErrInvalidAmount)
	ErrNoVotingPower    = fmt.Errorf("voter has no voting power: %w", ErrInsufficientBalance)
	ErrProposalDefeated = fmt.Errorf("proposal defeated: %w", ErrInsufficientBalance)
	ErrQuorumNotMet     = fmt.Errorf("quorum not met: %w", ErrInsufficientBalance)
	ErrAlreadyVoted     = fmt.Errorf("voter has already voted on this proposal: %w", ErrDuplicateEntry)
	ErrAlreadyQueued    = fmt.Errorf("proposal already queued: %w", ErrDuplicateEntry)
	ErrVotingOpen       = fmt.Errorf("voting period has not ended: %w", ErrTooEarly)
	ErrNotQueued        = fmt.Errorf("proposal has not been queued: %w", ErrTooEarly)
	ErrTimelockActive   = fmt.Errorf("timelock has not elapsed: %w", ErrTooEarly)
	ErrOutsideWindow    = fmt.Errorf("vote cast outside the voting window: %w", ErrTooLate)
	ErrInvalidSignature = fmt.Errorf("invalid signature: %w", ErrUnauthorized)
)
