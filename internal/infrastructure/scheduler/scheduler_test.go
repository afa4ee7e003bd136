package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	s := New(logger.NewNop(), time.Second)

	require.NoError(t, s.Add(Job{Name: "clear", Spec: "0 4 * * *", Run: func(context.Context) error { return nil }}))
	assert.Equal(t, 1, s.Len())

	t.Run("empty spec disables the job", func(t *testing.T) {
		require.NoError(t, s.Add(Job{Name: "off", Run: func(context.Context) error { return nil }}))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("invalid spec", func(t *testing.T) {
		err := s.Add(Job{Name: "bad", Spec: "every tuesday", Run: func(context.Context) error { return nil }})
		assert.Error(t, err)
	})

	t.Run("duplicate name", func(t *testing.T) {
		err := s.Add(Job{Name: "clear", Spec: "@hourly", Run: func(context.Context) error { return nil }})
		assert.Error(t, err)
	})
}

func TestRunNow(t *testing.T) {
	s := New(logger.NewNop(), 50*time.Millisecond)

	calls := 0
	require.NoError(t, s.Add(Job{Name: "ok", Spec: "@daily", Run: func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}}))
	boom := errors.New("boom")
	require.NoError(t, s.Add(Job{Name: "fail", Spec: "@daily", Run: func(context.Context) error { return boom }}))

	assert.NoError(t, s.RunNow(context.Background(), "ok"))
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, s.RunNow(context.Background(), "fail"), boom)
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestStartStop(t *testing.T) {
	s := New(logger.NewNop(), time.Second)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
