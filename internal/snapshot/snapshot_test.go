package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blazex/seat-allocation/internal/seating"
)

func TestDisabledStoreDegrades(t *testing.T) {
	s := New(nil, time.Minute)
	assert.False(t, s.Enabled())

	ctx := context.Background()
	out := seating.New(seating.Config{Rows: 2, Cols: 2, NumBatches: 2, BatchByColumn: true}).Generate().Format()

	assert.NoError(t, s.Put(ctx, 1, out), "writes are no-ops without a backend")
	_, err := s.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, 1))
}

func TestKeyIsScopedPerSession(t *testing.T) {
	assert.Equal(t, "seating:snapshot:42", key(42))
	assert.NotEqual(t, key(1), key(2))
}
