package recommendation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"quixellMarket/domain"
	"quixellMarket/pkg/logger"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultBuildTimeout = 30 * time.Second

type UserRepository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
}

type ProductRepository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
}

type EventRepository interface {
	FindAll(ctx context.Context) ([]domain.Event, error)
}

// SnapshotStore publishes immutable snapshots through an atomic pointer.
// With a zero max age every Current call rebuilds from the database;
// concurrent rebuilds share one load.
type SnapshotStore struct {
	users    UserRepository
	products ProductRepository
	events   EventRepository
	maxAge   time.Duration
	now      func() time.Time

	// buildTimeout bounds one shared rebuild, independent of any caller.
	buildTimeout time.Duration

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
}

func NewSnapshotStore(users UserRepository, products ProductRepository, events EventRepository, maxAge time.Duration) *SnapshotStore {
	return &SnapshotStore{
		users:    users,
		products: products,
		events:   events,
		maxAge:   maxAge,
		now:      time.Now,

		buildTimeout: defaultBuildTimeout,
	}
}

func (s *SnapshotStore) Current(ctx context.Context) (*Snapshot, error) {
	if s.maxAge > 0 {
		if snap := s.current.Load(); snap != nil && s.now().Sub(snap.BuiltAt) < s.maxAge {
			return snap, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh rebuilds the snapshot and publishes it. The rebuild is shared by
// every concurrent caller and does not stop when one of them gives up.
func (s *SnapshotStore) Refresh(ctx context.Context) (*Snapshot, error) {
	ch := s.group.DoChan("snapshot", func() (interface{}, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.buildTimeout)
		defer cancel()
		return s.build(bctx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for snapshot: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (s *SnapshotStore) build(ctx context.Context) (*Snapshot, error) {
	var (
		users    []domain.User
		products []domain.Product
		events   []domain.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.users.FindAll(gctx)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = s.products.FindAll(gctx)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		events, err = s.events.FindAll(gctx)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := BuildSnapshot(users, products, events, s.now())
	s.current.Store(snap)

	SnapshotSize.WithLabelValues("users").Set(float64(snap.Users.Len()))
	SnapshotSize.WithLabelValues("items").Set(float64(snap.Items.Len()))
	SnapshotSize.WithLabelValues("interactions").Set(float64(len(snap.Interactions)))

	return snap, nil
}

// StartRefresher rebuilds the snapshot on a cron schedule, e.g. "@every 5m".
func (s *SnapshotStore) StartRefresher(spec string, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		snap, err := s.Refresh(ctx)
		if err != nil {
			logger.Error("scheduled snapshot refresh failed", "error", err)
			return
		}
		logger.Debug("snapshot refreshed", "users", snap.Users.Len(), "items", snap.Items.Len())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	c.Start()
	return c, nil
}
