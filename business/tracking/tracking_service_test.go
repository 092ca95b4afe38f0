package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"
	"quixellMarket/pkg/async"
	"quixellMarket/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu          sync.Mutex
	impressions []domain.Impression
	clicks      []domain.Click
	events      []domain.Event
	failWrite   error
	flaky       int
	attempts    int
	conversions []domain.MonthlyConversion
	year        int
}

func (m *memRepo) InsertImpression(_ context.Context, imp *domain.Impression) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeErr(); err != nil {
		return err
	}
	m.impressions = append(m.impressions, *imp)
	return nil
}

func (m *memRepo) InsertClick(_ context.Context, c *domain.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeErr(); err != nil {
		return err
	}
	m.clicks = append(m.clicks, *c)
	return nil
}

func (m *memRepo) InsertEvent(_ context.Context, e *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeErr(); err != nil {
		return err
	}
	m.events = append(m.events, *e)
	return nil
}

// writeErr fails the first flaky writes, then every write if failWrite is set.
func (m *memRepo) writeErr() error {
	m.attempts++
	if m.flaky > 0 {
		m.flaky--
		return errors.New("transient: connection reset")
	}
	return m.failWrite
}

func (m *memRepo) CountImpressions(context.Context) (int64, error) {
	return 3, nil
}

func (m *memRepo) CountClicks(context.Context) (int64, error) {
	return 1, nil
}

func (m *memRepo) MonthlyConversions(_ context.Context, year int) ([]domain.MonthlyConversion, error) {
	m.year = year
	return m.conversions, nil
}

func newService(repo *memRepo) (*trackingService, *async.Runner) {
	runner := async.NewRunner(2, time.Second, OnWriteFailure)
	return NewTrackingService(repo, runner), runner
}

func drain(t *testing.T, r *async.Runner) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))
}

func TestRecordImpressionAndClick(t *testing.T) {
	repo := &memRepo{}
	svc, runner := newService(repo)

	require.NoError(t, svc.RecordImpression(context.Background(), "u1", 42))
	require.NoError(t, svc.RecordClick(context.Background(), "u1", 42))
	require.NoError(t, svc.RecordEvent(context.Background(), "u1", " Purchase ", "/product/42"))
	drain(t, runner)

	require.Len(t, repo.impressions, 1)
	assert.Equal(t, uint64(42), repo.impressions[0].ProductID)
	require.Len(t, repo.clicks, 1)
	require.Len(t, repo.events, 1)
	assert.Equal(t, "purchase", repo.events[0].EventType)
}

func TestRecord_FailureNeverReachesCaller(t *testing.T) {
	repo := &memRepo{failWrite: errors.New("relation \"impressions\" does not exist")}
	svc, runner := newService(repo)

	assert.NoError(t, svc.RecordImpression(context.Background(), "u1", 42))
	assert.NoError(t, svc.RecordClick(context.Background(), "u1", 42))
	drain(t, runner)

	assert.Empty(t, repo.impressions)
}

func TestRecord_AfterShutdownIsDropped(t *testing.T) {
	repo := &memRepo{}
	svc, runner := newService(repo)
	drain(t, runner)

	assert.NoError(t, svc.RecordClick(context.Background(), "u1", 42))
	assert.Empty(t, repo.clicks)
}

func TestRecord_Validation(t *testing.T) {
	svc, runner := newService(&memRepo{})
	defer drain(t, runner)

	assert.True(t, apperror.Is(svc.RecordImpression(context.Background(), "", 1), apperror.KindValidation))
	assert.True(t, apperror.Is(svc.RecordClick(context.Background(), "u1", 0), apperror.KindValidation))
	assert.True(t, apperror.Is(svc.RecordEvent(context.Background(), "u1", "", "/"), apperror.KindValidation))
}

func TestMetric(t *testing.T) {
	svc, runner := newService(&memRepo{})
	defer drain(t, runner)

	n, err := svc.Metric(context.Background(), MetricImpressions)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = svc.Metric(context.Background(), MetricClicks)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Metric(context.Background(), "conversions")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestConversionRates(t *testing.T) {
	repo := &memRepo{conversions: []domain.MonthlyConversion{
		{Month: 1, TotalTrials: 4, TotalConversions: 1},
		{Month: 2, TotalTrials: 0, TotalConversions: 3},
	}}
	svc, runner := newService(repo)
	defer drain(t, runner)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	got, err := svc.ConversionRates(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2026, repo.year)
	assert.InDelta(t, 0.25, got[0].ConversionRate, 1e-9)
	assert.Equal(t, 0.0, got[1].ConversionRate)
}

func TestConversionRates_NoRows(t *testing.T) {
	svc, runner := newService(&memRepo{})
	defer drain(t, runner)

	got, err := svc.ConversionRates(context.Background(), 2023)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecordImpressionSurvivesTransientFailure(t *testing.T) {
	repo := &memRepo{flaky: 1}
	runner := async.NewRunner(2, time.Second, OnWriteFailure,
		async.WithRetry(retry.Policy{MaxRetries: 3, BaseBackoff: time.Millisecond}))
	svc := NewTrackingService(repo, runner)

	require.NoError(t, svc.RecordImpression(context.Background(), "u1", 7))
	require.NoError(t, svc.RecordClick(context.Background(), "u1", 7))
	drain(t, runner)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, 3, repo.attempts)
	require.Len(t, repo.impressions, 1)
	assert.Equal(t, uint64(7), repo.impressions[0].ProductID)
	assert.Len(t, repo.clicks, 1)
}
