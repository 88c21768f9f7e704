package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAutosaverDebouncesBurstToSingleSave(t *testing.T) {
	var saves int64
	a := newAutosaver(context.Background(), 30*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt64(&saves, 1)
	})

	for i := 0; i < 10; i++ {
		a.NotifyChanged()
		time.Sleep(5 * time.Millisecond)
	}

	// Still within the window of the last edit.
	assert.Equal(t, int64(0), atomic.LoadInt64(&saves))

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&saves))
}

func TestAutosaverEachQuietPeriodSavesOnce(t *testing.T) {
	var saves int64
	a := newAutosaver(context.Background(), 20*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt64(&saves, 1)
	})

	a.NotifyChanged()
	time.Sleep(50 * time.Millisecond)
	a.NotifyChanged()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int64(2), atomic.LoadInt64(&saves))
}

func TestAutosaverCancelStopsPendingSave(t *testing.T) {
	var saves int64
	a := newAutosaver(context.Background(), 20*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt64(&saves, 1)
	})

	a.NotifyChanged()
	a.Cancel()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(0), atomic.LoadInt64(&saves))
}

func TestAutosaverCanceledContextSuppressesLateFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var saves int64
	a := newAutosaver(ctx, 10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt64(&saves, 1)
	})

	a.NotifyChanged()
	cancel()

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int64(0), atomic.LoadInt64(&saves))
}
