package recommendation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"
)

// SimilarItem is a neighbour of an item in the model's item space.
type SimilarItem struct {
	ID          uint64  `json:"id"`
	ProductName string  `json:"product_name"`
	Similarity  float64 `json:"similarity"`
}

// SimilarUser is a neighbour of a user in the model's user space.
type SimilarUser struct {
	UserID     string  `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// KnownPositive is an item a user already interacted with.
type KnownPositive struct {
	ID          uint64  `json:"id"`
	ProductName string  `json:"product_name"`
	Weight      float64 `json:"weight"`
}

func cosine(a, b []float64) float64 {
	na, nb := math.Sqrt(dot(a, a)), math.Sqrt(dot(b, b))
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}

type neighbour struct {
	index int
	sim   float64
}

// nearest ranks every row except target by cosine similarity, descending,
// ties by ascending index.
func nearest(reps [][]float64, target, n int) []neighbour {
	out := make([]neighbour, 0, len(reps))
	for i, rep := range reps {
		if i == target {
			continue
		}
		out = append(out, neighbour{index: i, sim: cosine(reps[target], rep)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].sim != out[j].sim {
			return out[i].sim > out[j].sim
		}
		return out[i].index < out[j].index
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (r *Ranker) SimilarItems(ctx context.Context, itemID uint64, n int) ([]SimilarItem, error) {
	if n <= 0 {
		n = defaultSimilarCount
	}

	model, err := r.models.Model()
	if err != nil {
		return nil, err
	}
	snap, err := r.snapshots.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interaction snapshot: %w", err)
	}

	target, ok := snap.Items.Index(itemID)
	if !ok {
		return nil, apperror.NotFound("product not found")
	}

	found := nearest(model.ItemRepresentations(snap.ItemFeatures), target, n)

	ids := make([]uint64, len(found))
	for i, nb := range found {
		ids[i] = snap.Items.ID(nb.index)
	}
	products, err := r.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load similar products: %w", err)
	}
	names := make(map[uint64]string, len(products))
	for _, p := range products {
		names[p.ID] = p.ProductName
	}

	out := make([]SimilarItem, len(found))
	for i, nb := range found {
		out[i] = SimilarItem{ID: ids[i], ProductName: names[ids[i]], Similarity: nb.sim}
	}
	return out, nil
}

func (r *Ranker) SimilarUsers(ctx context.Context, userID string, n int) ([]SimilarUser, error) {
	if n <= 0 {
		n = defaultSimilarCount
	}

	model, err := r.models.Model()
	if err != nil {
		return nil, err
	}
	snap, err := r.snapshots.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interaction snapshot: %w", err)
	}

	target, ok := snap.Users.Index(userID)
	if !ok {
		return nil, apperror.NotFound("user has no interaction history")
	}

	found := nearest(model.UserRepresentations(snap.UserFeatures), target, n)

	out := make([]SimilarUser, len(found))
	for i, nb := range found {
		out[i] = SimilarUser{UserID: snap.Users.ID(nb.index), Similarity: nb.sim}
	}
	return out, nil
}

// KnownPositives lists the products a user interacted with, heaviest first.
func (r *Ranker) KnownPositives(ctx context.Context, userID string) ([]KnownPositive, error) {
	snap, err := r.snapshots.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interaction snapshot: %w", err)
	}

	u, ok := snap.Users.Index(userID)
	if !ok {
		return nil, apperror.NotFound("user has no interaction history")
	}

	var hits []Interaction
	for _, in := range snap.Interactions {
		if in.User == u {
			hits = append(hits, in)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Weight != hits[j].Weight {
			return hits[i].Weight > hits[j].Weight
		}
		return snap.Items.ID(hits[i].Item) < snap.Items.ID(hits[j].Item)
	})

	ids := make([]uint64, len(hits))
	for i, in := range hits {
		ids[i] = snap.Items.ID(in.Item)
	}

	var products []domain.Product
	if len(ids) > 0 {
		products, err = r.catalog.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load known positives: %w", err)
		}
	}
	names := make(map[uint64]string, len(products))
	for _, p := range products {
		names[p.ID] = p.ProductName
	}

	out := make([]KnownPositive, len(hits))
	for i, in := range hits {
		out[i] = KnownPositive{ID: ids[i], ProductName: names[ids[i]], Weight: in.Weight}
	}
	return out, nil
}
