package debate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterDeregister(t *testing.T) {
	r := NewRegistry()
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.Register("d1", cancel)
	assert.True(t, r.IsActive("d1"))
	assert.Equal(t, 1, r.Count())

	r.Deregister("d1")
	assert.False(t, r.IsActive("d1"))
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_DeregisterDoesNotCancel(t *testing.T) {
	r := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.Register("d1", cancel)
	r.Deregister("d1")

	assert.NoError(t, ctx.Err())
}

func TestRegistry_ClearCancelsAll(t *testing.T) {
	r := NewRegistry()

	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	r.Register("d1", cancel1)
	r.Register("d2", cancel2)

	cleared := r.Clear()

	assert.Equal(t, 2, cleared)
	assert.Equal(t, 0, r.Count())
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
}

func TestRegistry_ClearEmpty(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Clear())
}
