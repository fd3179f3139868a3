package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesSubscribersForType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var created, deleted int
	d.Subscribe(EventResourceCreated, func(_ context.Context, _ Event) error {
		created++
		return nil
	})
	d.Subscribe(EventResourceDeleted, func(_ context.Context, _ Event) error {
		deleted++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventResourceCreated}))
	assert.Equal(t, 1, created)
	assert.Equal(t, 0, deleted)
}

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()

	var reached bool
	d.Subscribe(EventLoginSucceeded, func(_ context.Context, _ Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventLoginSucceeded, func(_ context.Context, _ Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLoginSucceeded}))
	assert.True(t, reached)
}
