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
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// OpenAuthorizer accepts every caller. It is meant for hosts where the
// surrounding execution environment has already authenticated the sender
// before the engine is invoked.
type OpenAuthorizer struct{}

// RequireAuth always succeeds.
func (OpenAuthorizer) RequireAuth(common.Address) error {
	return nil
}

// SessionAuthorizer requires each identity to prove key control once by
// signing a host-chosen challenge; subsequent calls for that identity pass
// until the session is cleared.
type SessionAuthorizer struct {
	mu        sync.RWMutex
	challenge []byte
	sessions  map[common.Address]struct{}
}

// NewSessionAuthorizer creates an authorizer with the given challenge.
func NewSessionAuthorizer(challenge []byte) *SessionAuthorizer {
	return &SessionAuthorizer{
		challenge: append([]byte(nil), challenge...),
		sessions:  make(map[common.Address]struct{}),
	}
}

// AuthDigest returns the digest an identity must sign to open a session.
func (a *SessionAuthorizer) AuthDigest(caller common.Address) common.Hash {
	return crypto.Keccak256Hash(append(caller.Bytes(), a.challenge...))
}

// Authenticate verifies the signature over the caller's digest and opens a
// session for the recovered identity.
func (a *SessionAuthorizer) Authenticate(caller common.Address, signature []byte) error {
	hash := a.AuthDigest(caller)
	pubkey, err := crypto.SigToPub(hash.Bytes(), signature)
	if err != nil || crypto.PubkeyToAddress(*pubkey) != caller {
		return ErrInvalidSignature
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[caller] = struct{}{}
	return nil
}

// RequireAuth succeeds only for identities with an open session.
func (a *SessionAuthorizer) RequireAuth(caller common.Address) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if _, ok := a.sessions[caller]; !ok {
		return ErrUnauthorized
	}
	return nil
}

// Clear closes the caller's session.
func (a *SessionAuthorizer) Clear(caller common.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, caller)
}
