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
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
)

// EventKind identifies a lifecycle transition.
type EventKind uint8

const (
	EventProposalCreated EventKind = iota
	EventVoteCast
	EventProposalQueued
	EventProposalExecuted
)

// Event is a lifecycle transition notification. Account is the creator for
// creation events and the voter for vote events; VoteType and Weight are set
// only for vote events; Time is set for queue and execute events.
type Event struct {
	Kind        EventKind
	ProposalID  uint64
	Account     common.Address
	Description string
	VoteType    VoteType
	Weight      *uint256.Int
	Time        uint64
}

// FeedSink is an EventSink backed by an event feed. Subscribers receive every
// event published after they subscribe.
type FeedSink struct {
	feed event.FeedOf[Event]
}

// NewFeedSink creates an empty feed sink.
func NewFeedSink() *FeedSink {
	return &FeedSink{}
}

// Publish sends the event to all current subscribers.
func (s *FeedSink) Publish(ev Event) {
	s.feed.Send(ev)
}

// Subscribe registers a channel to receive future events.
func (s *FeedSink) Subscribe(ch chan<- Event) event.Subscription {
	return s.feed.Subscribe(ch)
}

type nopSink struct{}

func (nopSink) Publish(Event) {}

// NopSink returns a sink that discards all events.
func NopSink() EventSink {
	return nopSink{}
}
