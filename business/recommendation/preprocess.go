package recommendation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"quixellMarket/domain"
)

var (
	ageBinEdges  = []int{0, 18, 25, 35, 45, 55, 65, 100}
	ageBinLabels = []string{"0-18", "19-25", "26-35", "36-45", "46-55", "56-65", "65+"}
)

const unknownValue = "unknown"

// AgeBand buckets an age into right-closed bins; ages outside (0, 100] or
// missing are "unknown".
func AgeBand(age *int) string {
	if age == nil {
		return unknownValue
	}
	a := *age
	for i := 1; i < len(ageBinEdges); i++ {
		if a > ageBinEdges[i-1] && a <= ageBinEdges[i] {
			return ageBinLabels[i-1]
		}
	}
	return unknownValue
}

func orUnknown(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return unknownValue
	}
	return tokenValue(*s)
}

func nonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownValue
	}
	return tokenValue(s)
}

// UserFeatureToken is the composite gender_ageband_location token of a user.
func UserFeatureToken(u domain.User) string {
	return fmt.Sprintf("%s_%s_%s", orUnknown(u.Gender), AgeBand(u.Age), orUnknown(u.Location))
}

// ItemFeatureToken is the composite category_brand_department token of a product.
func ItemFeatureToken(p domain.Product) string {
	return fmt.Sprintf("%s_%s_%s", nonEmpty(p.ProductCategory), nonEmpty(p.ProductBrand), nonEmpty(p.Department))
}

func UserIdentityToken(userID string) string {
	return "user:" + userID
}

func ItemIdentityToken(itemID uint64) string {
	return "item:" + strconv.FormatUint(itemID, 10)
}

// IDIndex is a bidirectional mapping between external ids and dense indices.
type IDIndex[T comparable] struct {
	ids []T
	pos map[T]int
}

func newIDIndex[T comparable](sorted []T) IDIndex[T] {
	idx := IDIndex[T]{ids: sorted, pos: make(map[T]int, len(sorted))}
	for i, id := range sorted {
		idx.pos[id] = i
	}
	return idx
}

func (x IDIndex[T]) Len() int {
	return len(x.ids)
}

func (x IDIndex[T]) Index(id T) (int, bool) {
	i, ok := x.pos[id]
	return i, ok
}

func (x IDIndex[T]) ID(i int) T {
	return x.ids[i]
}

// FeatureMatrix holds the feature tokens of each dense row.
type FeatureMatrix [][]string

// Interaction is one aggregated (user, item, weight) triple in index space.
type Interaction struct {
	User   int
	Item   int
	Weight float64
}

// ItemFacets are the catalog attributes the ranker filters on.
type ItemFacets struct {
	ID         uint64
	Brand      string
	Department string
}

// Snapshot is the immutable output of the interaction preprocessor.
type Snapshot struct {
	Users        IDIndex[string]
	Items        IDIndex[uint64]
	UserFeatures FeatureMatrix
	ItemFeatures FeatureMatrix
	Interactions []Interaction
	Facets       []ItemFacets
	BuiltAt      time.Time
}

// AllItems returns every item index in ascending order.
func (s *Snapshot) AllItems() []int {
	out := make([]int, s.Items.Len())
	for i := range out {
		out[i] = i
	}
	return out
}

// lessUserID orders numeric-looking ids numerically and everything else lexically.
func lessUserID(a, b string) bool {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// BuildSnapshot turns raw users, products and events into id vocabularies,
// feature matrices and weighted interactions. It is a pure function: ids are
// sorted so identical inputs give identical output.
//
// Events whose user or derived product is not in the tables are excluded.
// The user vocabulary holds every known user with at least one retained event;
// the item vocabulary holds every product.
func BuildSnapshot(users []domain.User, products []domain.Product, events []domain.Event, builtAt time.Time) *Snapshot {
	usersByID := make(map[string]domain.User, len(users))
	for _, u := range users {
		usersByID[u.UserID] = u
	}

	itemIDs := make([]uint64, 0, len(products))
	productsByID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		if _, dup := productsByID[p.ID]; dup {
			continue
		}
		productsByID[p.ID] = p
		itemIDs = append(itemIDs, p.ID)
	}
	sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })

	type pair struct {
		user string
		item uint64
	}
	weights := make(map[pair]float64)
	activeUsers := make(map[string]struct{})

	for _, e := range events {
		if _, ok := usersByID[e.UserID]; !ok {
			continue
		}
		pid, ok := ProductIDFromURI(e.URI)
		if !ok {
			continue
		}
		if _, ok := productsByID[pid]; !ok {
			continue
		}
		activeUsers[e.UserID] = struct{}{}
		weights[pair{e.UserID, pid}] += EventWeight(e.EventType)
	}

	userIDs := make([]string, 0, len(activeUsers))
	for id := range activeUsers {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return lessUserID(userIDs[i], userIDs[j]) })

	snap := &Snapshot{
		Users:        newIDIndex(userIDs),
		Items:        newIDIndex(itemIDs),
		UserFeatures: make(FeatureMatrix, len(userIDs)),
		ItemFeatures: make(FeatureMatrix, len(itemIDs)),
		Facets:       make([]ItemFacets, len(itemIDs)),
		BuiltAt:      builtAt,
	}

	for i, id := range userIDs {
		snap.UserFeatures[i] = []string{UserIdentityToken(id), UserFeatureToken(usersByID[id])}
	}

	for i, id := range itemIDs {
		p := productsByID[id]
		snap.ItemFeatures[i] = []string{ItemIdentityToken(id), ItemFeatureToken(p)}
		snap.Facets[i] = ItemFacets{
			ID:         id,
			Brand:      p.ProductBrand,
			Department: p.Department,
		}
	}

	snap.Interactions = make([]Interaction, 0, len(weights))
	for k, w := range weights {
		u, _ := snap.Users.Index(k.user)
		it, _ := snap.Items.Index(k.item)
		snap.Interactions = append(snap.Interactions, Interaction{User: u, Item: it, Weight: w})
	}
	sort.Slice(snap.Interactions, func(i, j int) bool {
		a, b := snap.Interactions[i], snap.Interactions[j]
		if a.User != b.User {
			return a.User < b.User
		}
		return a.Item < b.Item
	})

	return snap
}
