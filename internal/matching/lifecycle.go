// Package matching holds the match lifecycle rules as pure functions so the
// HTTP handlers can validate a transition before attempting the matching
// conditional update against the database.
package matching

import "errors"

var (
	ErrSelfMatch        = errors.New("requester and receiver must be different users")
	ErrNotParticipant   = errors.New("user is not a party of this match")
	ErrNotReceiver      = errors.New("only the receiver may respond to a match request")
	ErrInvalidState     = errors.New("match state does not allow this transition")
	ErrAlreadyRequested = errors.New("completion already requested by this user")
	ErrInvalidResponse  = errors.New("response must be accepted or rejected")
)

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// State is the lifecycle-relevant slice of a match record.
type State struct {
	Status             string
	RequesterID        uint
	ReceiverID         uint
	RequesterConfirmed bool
	ReceiverConfirmed  bool
}

// New validates the parties of a fresh match request and returns its initial
// state. Duplicate-pair detection is a persistence concern and stays with the
// caller.
func New(requesterID, receiverID uint) (State, error) {
	if requesterID == receiverID {
		return State{}, ErrSelfMatch
	}
	return State{
		Status:      StatusPending,
		RequesterID: requesterID,
		ReceiverID:  receiverID,
	}, nil
}

// Terminal reports whether no further transitions are permitted.
func (s State) Terminal() bool {
	return s.Status == StatusRejected || s.Status == StatusCompleted
}

func (s State) participant(userID uint) bool {
	return userID == s.RequesterID || userID == s.ReceiverID
}

// Respond applies the receiver's accept/reject decision to a pending match.
// Authorization errors take precedence over state errors so a requester
// probing a settled match still gets a 403.
func (s State) Respond(actorID uint, status string) (State, error) {
	if status != StatusAccepted && status != StatusRejected {
		return s, ErrInvalidResponse
	}
	if !s.participant(actorID) {
		return s, ErrNotParticipant
	}
	if actorID != s.ReceiverID {
		return s, ErrNotReceiver
	}
	if s.Status != StatusPending {
		return s, ErrInvalidState
	}
	s.Status = status
	return s, nil
}

// RequestCompletion records one party's request to mark the exchange
// complete. When both parties have requested, the match becomes completed.
func (s State) RequestCompletion(actorID uint) (State, error) {
	if !s.participant(actorID) {
		return s, ErrNotParticipant
	}
	if s.Status != StatusAccepted {
		return s, ErrInvalidState
	}
	switch actorID {
	case s.RequesterID:
		if s.RequesterConfirmed {
			return s, ErrAlreadyRequested
		}
		s.RequesterConfirmed = true
	case s.ReceiverID:
		if s.ReceiverConfirmed {
			return s, ErrAlreadyRequested
		}
		s.ReceiverConfirmed = true
	}
	if s.RequesterConfirmed && s.ReceiverConfirmed {
		s.Status = StatusCompleted
	}
	return s, nil
}

// CompletionRequests returns the ids of the parties who have confirmed, in
// requester-then-receiver order.
func (s State) CompletionRequests() []uint {
	ids := make([]uint, 0, 2)
	if s.RequesterConfirmed {
		ids = append(ids, s.RequesterID)
	}
	if s.ReceiverConfirmed {
		ids = append(ids, s.ReceiverID)
	}
	return ids
}

// ReviewEligible reports whether the parties may review each other, which is
// only the case once the exchange completed.
func (s State) ReviewEligible() bool {
	return s.Status == StatusCompleted
}
