package recommendation

import (
	"fmt"
	"os"
	"sync/atomic"

	"quixellMarket/pkg/apperror"
	"quixellMarket/pkg/logger"

	"github.com/goccy/go-json"
)

// TokenEmbedding is the learned latent vector and bias of one feature token.
type TokenEmbedding struct {
	Token     string    `json:"token"`
	Bias      float64   `json:"bias"`
	Embedding []float64 `json:"embedding"`
}

// ModelArtifact is the on-disk form of a pre-trained hybrid model.
type ModelArtifact struct {
	NoComponents      int              `json:"no_components"`
	UserFeatures      []TokenEmbedding `json:"user_features"`
	ItemFeatures      []TokenEmbedding `json:"item_features"`
	FeatureVocabulary []string         `json:"feature_vocabulary"`
}

// HybridModel scores users against items as the dot product of the summed
// token embeddings of each side plus their summed biases. A row's tokens that
// the model never learned contribute nothing. It is read-only after construction.
type HybridModel struct {
	dim   int
	users map[string]TokenEmbedding
	items map[string]TokenEmbedding
	vocab *FeatureVocabulary
}

func NewHybridModel(a ModelArtifact) (*HybridModel, error) {
	if a.NoComponents <= 0 {
		return nil, fmt.Errorf("invalid no_components %d", a.NoComponents)
	}

	vocab, err := NewFeatureVocabulary(a.FeatureVocabulary)
	if err != nil {
		return nil, err
	}

	m := &HybridModel{
		dim:   a.NoComponents,
		users: make(map[string]TokenEmbedding, len(a.UserFeatures)),
		items: make(map[string]TokenEmbedding, len(a.ItemFeatures)),
		vocab: vocab,
	}

	for _, e := range a.UserFeatures {
		if len(e.Embedding) != a.NoComponents {
			return nil, fmt.Errorf("user feature %q has %d components, want %d", e.Token, len(e.Embedding), a.NoComponents)
		}
		m.users[e.Token] = e
	}
	for _, e := range a.ItemFeatures {
		if len(e.Embedding) != a.NoComponents {
			return nil, fmt.Errorf("item feature %q has %d components, want %d", e.Token, len(e.Embedding), a.NoComponents)
		}
		m.items[e.Token] = e
	}

	return m, nil
}

// LoadHybridModel reads a model artifact. Any failure is ServiceUnavailable:
// nothing can be ranked without it.
func LoadHybridModel(path string) (*HybridModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.ServiceUnavailable("recommendation model unavailable", err)
	}

	var a ModelArtifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, apperror.ServiceUnavailable("recommendation model unreadable", err)
	}

	m, err := NewHybridModel(a)
	if err != nil {
		return nil, apperror.ServiceUnavailable("recommendation model invalid", err)
	}
	return m, nil
}

func (m *HybridModel) FeatureVocabulary() *FeatureVocabulary {
	return m.vocab
}

func (m *HybridModel) represent(table map[string]TokenEmbedding, tokens []string) ([]float64, float64) {
	rep := make([]float64, m.dim)
	bias := 0.0
	for _, tok := range tokens {
		e, ok := table[tok]
		if !ok {
			continue
		}
		bias += e.Bias
		for k, v := range e.Embedding {
			rep[k] += v
		}
	}
	return rep, bias
}

// UserRef identifies the user side of a scoring call: a warm dense index, or
// a cold indicator vector over the feature vocabulary.
type UserRef struct {
	Index  int
	Vector *SparseVector
}

func WarmUser(index int) UserRef {
	return UserRef{Index: index}
}

func ColdUser(v SparseVector) UserRef {
	return UserRef{Index: -1, Vector: &v}
}

func (r UserRef) IsCold() bool {
	return r.Vector != nil
}

// Score returns one score per requested item index, in request order.
func (m *HybridModel) Score(ref UserRef, items []int, userFeatures, itemFeatures FeatureMatrix) ([]float64, error) {
	var tokens []string
	if ref.IsCold() {
		tokens = make([]string, 0, ref.Vector.Len())
		for _, col := range ref.Vector.Indices {
			if col < 0 || col >= m.vocab.Len() {
				return nil, fmt.Errorf("feature column %d out of range", col)
			}
			tokens = append(tokens, m.vocab.Token(col))
		}
	} else {
		if ref.Index < 0 || ref.Index >= len(userFeatures) {
			return nil, fmt.Errorf("user index %d out of range", ref.Index)
		}
		tokens = userFeatures[ref.Index]
	}

	userRep, userBias := m.represent(m.users, tokens)

	scores := make([]float64, len(items))
	for n, idx := range items {
		if idx < 0 || idx >= len(itemFeatures) {
			return nil, fmt.Errorf("item index %d out of range", idx)
		}
		itemRep, itemBias := m.represent(m.items, itemFeatures[idx])
		scores[n] = dot(userRep, itemRep) + userBias + itemBias
	}

	return scores, nil
}

func (m *HybridModel) UserRepresentations(userFeatures FeatureMatrix) [][]float64 {
	out := make([][]float64, len(userFeatures))
	for i, tokens := range userFeatures {
		out[i], _ = m.represent(m.users, tokens)
	}
	return out
}

func (m *HybridModel) ItemRepresentations(itemFeatures FeatureMatrix) [][]float64 {
	out := make([][]float64, len(itemFeatures))
	for i, tokens := range itemFeatures {
		out[i], _ = m.represent(m.items, tokens)
	}
	return out
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// ModelHolder owns the loaded model for the process lifetime. Reload swaps
// in a freshly loaded model and keeps the old one when loading fails.
type ModelHolder struct {
	path    string
	current atomic.Pointer[HybridModel]
}

func NewModelHolder(path string) (*ModelHolder, error) {
	h := &ModelHolder{path: path}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *ModelHolder) Reload() error {
	m, err := LoadHybridModel(h.path)
	if err != nil {
		logger.Error("failed to load recommendation model", "path", h.path, "error", err)
		return err
	}
	h.current.Store(m)
	logger.Info("recommendation model loaded", "path", h.path, "features", m.vocab.Len())
	return nil
}

func (h *ModelHolder) Model() (Scorer, error) {
	m := h.current.Load()
	if m == nil {
		return nil, apperror.ServiceUnavailable("recommendation model not loaded", nil)
	}
	return m, nil
}
