package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []Event
	sub, err := b.Subscribe("pitch.started", func(e Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "pitch.started", sub.EventType())

	require.NoError(t, b.Publish(NewEvent("pitch.started", "session", 123)))
	require.NoError(t, b.Publish(NewEvent("pitch.reset", "session", nil)))
	require.Len(t, got, 1)
	assert.Equal(t, 123, got[0].Data)
}

func TestWildcardReceivesEverything(t *testing.T) {
	b := New()
	count := 0
	_, err := b.Subscribe(WildcardType, func(Event) error { count++; return nil })
	require.NoError(t, err)

	_ = b.Publish(NewEvent("a", "src", nil))
	_ = b.Publish(NewEvent("b", "src", nil))
	assert.Equal(t, 2, count)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	errA := errors.New("a")
	errB := errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "src", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, uint64(2), b.GetMetrics().Errors)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	count := 0
	sub, _ := b.Subscribe("x", func(Event) error { count++; return nil })
	assert.Equal(t, uint64(1), b.GetMetrics().SubscribersActive)

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Unsubscribe(nil))
	assert.False(t, sub.IsActive())
	assert.Equal(t, uint64(0), b.GetMetrics().SubscribersActive)

	_ = b.Publish(NewEvent("x", "src", nil))
	assert.Zero(t, count)
}

func TestSubscribeNilHandler(t *testing.T) {
	_, err := New().Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}
