package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"taskAssistant/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSessionPurger struct {
	mock.Mock
}

func (m *MockSessionPurger) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockBucketSweeper struct {
	mock.Mock
}

func (m *MockBucketSweeper) Sweep(idle time.Duration) int {
	return m.Called(idle).Int(0)
}

func TestSweeper_Check(t *testing.T) {
	idle := 10 * time.Minute

	tests := []struct {
		name      string
		purgeErr  error
		setupMock func(*MockSessionPurger, *MockBucketSweeper)
	}{
		{
			name: "purges and sweeps",
			setupMock: func(s *MockSessionPurger, b *MockBucketSweeper) {
				s.On("PurgeExpiredSessions", mock.Anything).Return(int64(3), nil)
				b.On("Sweep", idle).Return(2)
			},
		},
		{
			name: "purge failure still sweeps buckets",
			setupMock: func(s *MockSessionPurger, b *MockBucketSweeper) {
				s.On("PurgeExpiredSessions", mock.Anything).Return(int64(0), errors.New("db down"))
				b.On("Sweep", idle).Return(0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(MockSessionPurger)
			buckets := new(MockBucketSweeper)
			tt.setupMock(sessions, buckets)

			w := worker.NewSweeper(sessions, buckets, nil, &idle)
			w.Check(context.Background())

			sessions.AssertExpectations(t)
			buckets.AssertExpectations(t)
		})
	}
}

type countingPurger struct {
	calls atomic.Int32
}

func (c *countingPurger) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestSweeper_StartStopsOnCancel(t *testing.T) {
	sessions := &countingPurger{}

	interval := 5 * time.Millisecond
	w := worker.NewSweeper(sessions, nil, &interval, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return sessions.calls.Load() > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
