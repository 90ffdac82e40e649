package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice uint = 1
	bob   uint = 2
	carol uint = 3
)

func TestNewMatch(t *testing.T) {
	s, err := New(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, s.Status)
	assert.Empty(t, s.CompletionRequests())
	assert.False(t, s.Terminal())
}

func TestNewMatchSelf(t *testing.T) {
	_, err := New(alice, alice)
	assert.ErrorIs(t, err, ErrSelfMatch)
}

func TestRespondAccept(t *testing.T) {
	s, _ := New(alice, bob)

	s, err := s.Respond(bob, StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, s.Status)
}

func TestRespondReject(t *testing.T) {
	s, _ := New(alice, bob)

	s, err := s.Respond(bob, StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, s.Status)
	assert.True(t, s.Terminal())
}

func TestRespondRequesterForbidden(t *testing.T) {
	s, _ := New(alice, bob)

	got, err := s.Respond(alice, StatusAccepted)
	assert.ErrorIs(t, err, ErrNotReceiver)
	assert.Equal(t, StatusPending, got.Status)
}

func TestRespondOutsiderForbidden(t *testing.T) {
	s, _ := New(alice, bob)

	_, err := s.Respond(carol, StatusAccepted)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestRespondInvalidStatus(t *testing.T) {
	s, _ := New(alice, bob)

	_, err := s.Respond(bob, StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = s.Respond(bob, "banana")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestRespondTwice(t *testing.T) {
	s, _ := New(alice, bob)
	s, _ = s.Respond(bob, StatusAccepted)

	got, err := s.Respond(bob, StatusRejected)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StatusAccepted, got.Status)
}

func TestCompletionRequiresAccepted(t *testing.T) {
	s, _ := New(alice, bob)

	// Pending can never jump straight to completed.
	_, err := s.RequestCompletion(alice)
	assert.ErrorIs(t, err, ErrInvalidState)

	rejected, _ := s.Respond(bob, StatusRejected)
	_, err = rejected.RequestCompletion(bob)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestMutualCompletion(t *testing.T) {
	s, _ := New(alice, bob)
	s, _ = s.Respond(bob, StatusAccepted)

	s, err := s.RequestCompletion(alice)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, s.Status, "one confirmation must not complete the match")
	assert.Equal(t, []uint{alice}, s.CompletionRequests())
	assert.False(t, s.ReviewEligible())

	s, err = s.RequestCompletion(bob)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, []uint{alice, bob}, s.CompletionRequests())
	assert.True(t, s.Terminal())
	assert.True(t, s.ReviewEligible())
}

func TestMutualCompletionReceiverFirst(t *testing.T) {
	s, _ := New(alice, bob)
	s, _ = s.Respond(bob, StatusAccepted)

	s, err := s.RequestCompletion(bob)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, s.Status)

	s, err = s.RequestCompletion(alice)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s.Status)
}

func TestDuplicateCompletionRequest(t *testing.T) {
	s, _ := New(alice, bob)
	s, _ = s.Respond(bob, StatusAccepted)
	s, _ = s.RequestCompletion(alice)

	// Same error on every retry, state untouched.
	for i := 0; i < 2; i++ {
		got, err := s.RequestCompletion(alice)
		assert.ErrorIs(t, err, ErrAlreadyRequested)
		assert.Equal(t, s, got)
	}
	assert.Equal(t, []uint{alice}, s.CompletionRequests())
}

func TestCompletionByOutsider(t *testing.T) {
	s, _ := New(alice, bob)
	s, _ = s.Respond(bob, StatusAccepted)

	_, err := s.RequestCompletion(carol)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestCompletedMatchImmutable(t *testing.T) {
	s, _ := New(alice, bob)
	s, _ = s.Respond(bob, StatusAccepted)
	s, _ = s.RequestCompletion(alice)
	s, _ = s.RequestCompletion(bob)

	_, err := s.Respond(bob, StatusRejected)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = s.RequestCompletion(alice)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = s.RequestCompletion(bob)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCompletionRequestsNeverExceedTwo(t *testing.T) {
	s, _ := New(alice, bob)
	s, _ = s.Respond(bob, StatusAccepted)
	s, _ = s.RequestCompletion(alice)
	s, _ = s.RequestCompletion(bob)

	reqs := s.CompletionRequests()
	assert.Len(t, reqs, 2)
	assert.NotEqual(t, reqs[0], reqs[1])
}
