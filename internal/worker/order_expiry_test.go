package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type expirerMock struct {
	mock.Mock
}

func (m *expirerMock) ListExpired(ctx context.Context, timeout time.Duration, limit int) ([]int64, error) {
	args := m.Called(ctx, timeout, limit)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *expirerMock) ExpireUnpaid(ctx context.Context, orderID int64) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func TestScanOnce_CountsOutcomes(t *testing.T) {
	m := &expirerMock{}
	ctx := context.Background()
	cfg := OrderExpiryConfig{Timeout: 30 * time.Minute, Interval: time.Minute, Batch: 10}

	m.On("ListExpired", ctx, 30*time.Minute, 10).Return([]int64{1, 2, 3}, nil).Once()
	m.On("ExpireUnpaid", ctx, int64(1)).Return(true, nil).Once()
	m.On("ExpireUnpaid", ctx, int64(2)).Return(false, nil).Once()
	m.On("ExpireUnpaid", ctx, int64(3)).Return(false, errors.New("conflict")).Once()

	w := NewOrderExpiry(m, cfg)
	n := w.ScanOnce(ctx)

	assert.Equal(t, 1, n)
	assert.Equal(t, OrderExpiryStats{Scans: 1, Expired: 1, Failed: 1}, w.Stats())
	m.AssertExpectations(t)
}

func TestScanOnce_ListError(t *testing.T) {
	m := &expirerMock{}
	ctx := context.Background()
	m.On("ListExpired", ctx, time.Minute, 100).Return(nil, errors.New("db down")).Once()

	w := NewOrderExpiry(m, OrderExpiryConfig{Timeout: time.Minute, Interval: time.Second})
	assert.Equal(t, 0, w.ScanOnce(ctx))
	m.AssertNotCalled(t, "ExpireUnpaid", mock.Anything, mock.Anything)
}

func TestRun_DisabledReturnsImmediately(t *testing.T) {
	w := NewOrderExpiry(&expirerMock{}, OrderExpiryConfig{})

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return when expiry is disabled")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	m := &expirerMock{}
	m.On("ListExpired", mock.Anything, time.Minute, 5).Return([]int64{}, nil)

	w := NewOrderExpiry(m, OrderExpiryConfig{Timeout: time.Minute, Interval: 5 * time.Millisecond, Batch: 5})
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(ctx)
	}()

	require.Eventually(t, func() bool { return w.Stats().Scans >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	wg.Wait()
	assert.False(t, w.running.Load())
}
