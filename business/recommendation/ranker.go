package recommendation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"
	"quixellMarket/pkg/logger"
)

// Scorer is the pre-trained hybrid model as seen by the ranker.
type Scorer interface {
	Score(ref UserRef, items []int, userFeatures, itemFeatures FeatureMatrix) ([]float64, error)
	FeatureVocabulary() *FeatureVocabulary
	UserRepresentations(userFeatures FeatureMatrix) [][]float64
	ItemRepresentations(itemFeatures FeatureMatrix) [][]float64
}

type ModelSource interface {
	Model() (Scorer, error)
}

type SnapshotSource interface {
	Current(ctx context.Context) (*Snapshot, error)
}

type DemographicsRepository interface {
	FindDemographicRows(ctx context.Context, userID string) ([]domain.DemographicRow, error)
}

type CatalogRepository interface {
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

// Alerter notifies operators about server-side defects. Optional.
type Alerter interface {
	SendAlert(ctx context.Context, subject, message string) error
}

type Config struct {
	WarmTopN     int
	ColdTopM     int
	DefaultCount int
}

const (
	defaultWarmTopN     = 20
	defaultColdTopM     = 50
	defaultCount        = 10
	defaultSimilarCount = 10
)

func DefaultConfig() Config {
	return Config{
		WarmTopN:     defaultWarmTopN,
		ColdTopM:     defaultColdTopM,
		DefaultCount: defaultCount,
	}
}

type Ranker struct {
	snapshots    SnapshotSource
	models       ModelSource
	demographics DemographicsRepository
	catalog      CatalogRepository
	eligibility  EligibilityChecker
	alerter      Alerter
	cfg          Config
}

func NewRanker(
	snapshots SnapshotSource,
	models ModelSource,
	demographics DemographicsRepository,
	catalog CatalogRepository,
	alerter Alerter,
	cfg Config,
) *Ranker {
	def := DefaultConfig()
	if cfg.WarmTopN <= 0 {
		cfg.WarmTopN = def.WarmTopN
	}
	if cfg.ColdTopM <= 0 {
		cfg.ColdTopM = def.ColdTopM
	}
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = def.DefaultCount
	}

	return &Ranker{
		snapshots:    snapshots,
		models:       models,
		demographics: demographics,
		catalog:      catalog,
		eligibility:  DepartmentEligibility{},
		alerter:      alerter,
		cfg:          cfg,
	}
}

type scoredItem struct {
	index int
	id    uint64
	score float64
}

// rankScored sorts by descending score, ascending item id on ties, and drops
// repeated ids keeping the first occurrence.
func rankScored(items []scoredItem) []scoredItem {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].id < items[j].id
	})

	seen := make(map[uint64]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, dup := seen[it.id]; dup {
			continue
		}
		seen[it.id] = struct{}{}
		out = append(out, it)
	}
	return out
}

func scoreIndices(snap *Snapshot, indices []int, scores []float64) []scoredItem {
	out := make([]scoredItem, len(indices))
	for n, idx := range indices {
		out[n] = scoredItem{index: idx, id: snap.Items.ID(idx), score: scores[n]}
	}
	return out
}

// selectWithReservations truncates a ranked list to count, reserving slots
// for forced items first so that declared preferences survive truncation.
// The result keeps the ranked order.
func selectWithReservations(ranked []scoredItem, forced map[int]struct{}, count int) []scoredItem {
	if count >= len(ranked) {
		return ranked
	}

	keep := make(map[int]struct{}, count)
	for _, it := range ranked {
		if len(keep) == count {
			break
		}
		if _, ok := forced[it.index]; ok {
			keep[it.index] = struct{}{}
		}
	}
	for _, it := range ranked {
		if len(keep) == count {
			break
		}
		keep[it.index] = struct{}{}
	}

	out := make([]scoredItem, 0, count)
	for _, it := range ranked {
		if _, ok := keep[it.index]; ok {
			out = append(out, it)
		}
	}
	return out
}

func declaredBrands(rows []domain.DemographicRow) map[string]struct{} {
	brands := make(map[string]struct{})
	for _, row := range rows {
		if row.Brand == nil {
			continue
		}
		b := strings.ToLower(strings.TrimSpace(*row.Brand))
		if b != "" {
			brands[b] = struct{}{}
		}
	}
	return brands
}

func declaredGender(rows []domain.DemographicRow) *string {
	for _, row := range rows {
		if row.Gender != nil {
			return row.Gender
		}
	}
	return nil
}

// Recommend ranks products for a user.
//
// Known users are scored by their learned representation, others by a
// feature vector synthesized from their demographics. The candidates are then
// restricted to the user's department, unioned with eligible items of the
// user's declared brands, re-scored in one pass and truncated to count.
func (r *Ranker) Recommend(ctx context.Context, userID string, count int) ([]domain.RecommendedProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, apperror.Validation("user id is required")
	}
	if count <= 0 {
		count = r.cfg.DefaultCount
	}

	start := time.Now()
	tid := TraceIDFromContext(ctx)

	model, err := r.models.Model()
	if err != nil {
		return nil, err
	}

	snap, err := r.snapshots.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interaction snapshot: %w", err)
	}

	rows, err := r.demographics.FindDemographicRows(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load demographics: %w", err)
	}

	all := snap.AllItems()

	var (
		ref  UserRef
		topK int
		path string
	)
	if userIdx, warm := snap.Users.Index(userID); warm {
		ref, topK, path = WarmUser(userIdx), r.cfg.WarmTopN, "warm"
	} else {
		if len(rows) == 0 {
			RecommendPathTotal.WithLabelValues("cold", "not_found").Inc()
			return nil, apperror.NotFound("user not found")
		}
		ref, topK, path = ColdUser(EncodeDemographics(model.FeatureVocabulary(), rows)), r.cfg.ColdTopM, "cold"
	}

	baseScores, err := model.Score(ref, all, snap.UserFeatures, snap.ItemFeatures)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	base := rankScored(scoreIndices(snap, all, baseScores))
	if len(base) > topK {
		base = base[:topK]
	}

	segment := ShoppingDepartment(declaredGender(rows))
	brands := declaredBrands(rows)

	pool := make(map[int]struct{}, len(base))
	for _, it := range base {
		if r.eligibility.IsEligible(segment, snap.Facets[it.index]) {
			pool[it.index] = struct{}{}
		}
	}

	forced := make(map[int]struct{})
	if len(brands) > 0 {
		for idx, facets := range snap.Facets {
			if _, ok := brands[strings.ToLower(strings.TrimSpace(facets.Brand))]; !ok {
				continue
			}
			if r.eligibility.IsEligible(segment, facets) {
				forced[idx] = struct{}{}
				pool[idx] = struct{}{}
			}
		}
	}
	ForcedAffinityItems.Observe(float64(len(forced)))

	logger.Debug("recommend",
		"trace_id", tid,
		"user_id", userID,
		"path", path,
		"segment", segment,
		"base_candidates", len(base),
		"pool", len(pool),
		"forced", len(forced),
	)

	if len(pool) == 0 {
		RecommendPathTotal.WithLabelValues(path, "empty").Inc()
		return []domain.RecommendedProduct{}, nil
	}

	union := make([]int, 0, len(pool))
	for idx := range pool {
		union = append(union, idx)
	}
	sort.Ints(union)

	scores, err := model.Score(ref, union, snap.UserFeatures, snap.ItemFeatures)
	if err != nil {
		return nil, fmt.Errorf("re-score candidates: %w", err)
	}

	final := selectWithReservations(rankScored(scoreIndices(snap, union, scores)), forced, count)

	out, err := r.hydrate(ctx, final)
	if err != nil {
		RecommendPathTotal.WithLabelValues(path, "error").Inc()
		return nil, err
	}

	RecommendPathTotal.WithLabelValues(path, "ok").Inc()
	logger.Debug("recommend_done", "trace_id", tid, "user_id", userID, "returned", len(out), "took", time.Since(start))

	return out, nil
}

// hydrate maps ranked ids to catalog rows. A ranked id without a catalog row
// is a data inconsistency, never silently dropped.
func (r *Ranker) hydrate(ctx context.Context, ranked []scoredItem) ([]domain.RecommendedProduct, error) {
	ids := make([]uint64, len(ranked))
	for i, it := range ranked {
		ids[i] = it.id
	}

	products, err := r.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load ranked products: %w", err)
	}

	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]domain.RecommendedProduct, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			msg := fmt.Sprintf("ranked product %d has no catalog row", id)
			logger.Error("recommendation data inconsistency", "trace_id", TraceIDFromContext(ctx), "product_id", id)
			r.alert("Recommendation data inconsistency", msg)
			return nil, apperror.DataInconsistency(msg)
		}
		out = append(out, domain.RecommendedProduct{ID: p.ID, ProductName: p.ProductName})
	}

	return out, nil
}

func (r *Ranker) alert(subject, message string) {
	if r.alerter == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.alerter.SendAlert(ctx, subject, message); err != nil {
			logger.Warn("failed to send alert", "subject", subject, "error", err)
		}
	}()
}
