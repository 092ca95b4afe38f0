package recommendation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quixellMarket/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingUsers struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (c *countingUsers) FindAll(context.Context) ([]domain.User, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	return []domain.User{{UserID: "1"}}, c.err
}

type staticProducts []domain.Product

func (s staticProducts) FindAll(context.Context) ([]domain.Product, error) {
	return s, nil
}

type staticEvents []domain.Event

func (s staticEvents) FindAll(context.Context) ([]domain.Event, error) {
	return s, nil
}

func newTestStore(users *countingUsers, maxAge time.Duration) *SnapshotStore {
	return NewSnapshotStore(
		users,
		staticProducts{{ID: 1, Department: "Women"}},
		staticEvents{{UserID: "1", EventType: "purchase", URI: "/product/1"}},
		maxAge,
	)
}

func TestSnapshotStore_ZeroMaxAgeRebuildsEveryCall(t *testing.T) {
	users := &countingUsers{}
	s := newTestStore(users, 0)

	for i := 0; i < 3; i++ {
		snap, err := s.Current(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, snap.Users.Len())
	}
	assert.Equal(t, int32(3), users.calls.Load())
}

func TestSnapshotStore_ReusesFreshSnapshot(t *testing.T) {
	users := &countingUsers{}
	s := newTestStore(users, time.Minute)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	first, err := s.Current(context.Background())
	require.NoError(t, err)
	second, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), users.calls.Load())

	now = now.Add(2 * time.Minute)
	third, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, int32(2), users.calls.Load())
}

func TestSnapshotStore_ConcurrentRefreshesShareOneLoad(t *testing.T) {
	users := &countingUsers{delay: 50 * time.Millisecond}
	s := newTestStore(users, 0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Refresh(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, users.calls.Load(), int32(10))
}

func TestSnapshotStore_LoadErrorKeepsPrevious(t *testing.T) {
	users := &countingUsers{}
	s := newTestStore(users, time.Hour)

	first, err := s.Refresh(context.Background())
	require.NoError(t, err)

	users.err = errors.New("connection reset")
	_, err = s.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load users")

	assert.Same(t, first, s.current.Load())
}

func TestSnapshotStore_StartRefresherRejectsBadSpec(t *testing.T) {
	s := newTestStore(&countingUsers{}, 0)

	_, err := s.StartRefresher("not a schedule", time.Second)
	assert.Error(t, err)

	c, err := s.StartRefresher("@every 1h", time.Second)
	require.NoError(t, err)
	c.Stop()
}

type gatedUsers struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedUsers) FindAll(ctx context.Context) ([]domain.User, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.release:
		return []domain.User{{UserID: "1"}}, nil
	}
}

func TestSnapshotStore_CancelledCallerDoesNotFailSharedBuild(t *testing.T) {
	users := &gatedUsers{started: make(chan struct{}), release: make(chan struct{})}
	s := NewSnapshotStore(
		users,
		staticProducts{{ID: 1, Department: "Women"}},
		staticEvents{{UserID: "1", EventType: "purchase", URI: "/product/1"}},
		0,
	)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Refresh(ctx)
		firstErr <- err
	}()
	<-users.started

	type result struct {
		snap *Snapshot
		err  error
	}
	second := make(chan result, 1)
	go func() {
		snap, err := s.Refresh(context.Background())
		second <- result{snap, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(users.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.snap.Users.Len())
}
