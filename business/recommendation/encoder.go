package recommendation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"quixellMarket/domain"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"

	DepartmentMen   = "men"
	DepartmentWomen = "women"
)

// FeatureVocabulary maps feature tokens to dense column indices. It is
// immutable once built.
type FeatureVocabulary struct {
	tokens []string
	index  map[string]int
}

func NewFeatureVocabulary(tokens []string) (*FeatureVocabulary, error) {
	v := &FeatureVocabulary{
		tokens: make([]string, len(tokens)),
		index:  make(map[string]int, len(tokens)),
	}
	copy(v.tokens, tokens)

	for i, tok := range tokens {
		if _, dup := v.index[tok]; dup {
			return nil, fmt.Errorf("duplicate feature token %q", tok)
		}
		v.index[tok] = i
	}
	return v, nil
}

func (v *FeatureVocabulary) Len() int {
	return len(v.tokens)
}

func (v *FeatureVocabulary) Index(token string) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}

func (v *FeatureVocabulary) Token(i int) string {
	return v.tokens[i]
}

// SparseVector is a binary indicator row: the listed columns are 1, all others 0.
// Indices are sorted and unique.
type SparseVector struct {
	Indices []int
}

func (s SparseVector) Len() int {
	return len(s.Indices)
}

// CanonicalGender collapses any gender representation into male or female.
// Unknown or missing values fall into the female bucket.
func CanonicalGender(gender *string) string {
	if gender == nil {
		return GenderFemale
	}
	switch strings.ToLower(strings.TrimSpace(*gender)) {
	case "m", "male", "man", "men":
		return GenderMale
	default:
		return GenderFemale
	}
}

// ShoppingDepartment is the catalog department a gender bucket is eligible for.
func ShoppingDepartment(gender *string) string {
	if CanonicalGender(gender) == GenderMale {
		return DepartmentMen
	}
	return DepartmentWomen
}

func tokenValue(s string) string {
	return strings.Join(strings.Fields(s), "_")
}

// DemographicTokens derives the feature tokens of one demographic row.
func DemographicTokens(row domain.DemographicRow) []string {
	tokens := make([]string, 0, 4)

	if row.Age != nil {
		tokens = append(tokens, "age_"+strconv.Itoa(*row.Age))
	}
	tokens = append(tokens, "gender_"+CanonicalGender(row.Gender))
	if row.Location != nil && strings.TrimSpace(*row.Location) != "" {
		tokens = append(tokens, "location_"+tokenValue(*row.Location))
	}
	if row.Brand != nil && strings.TrimSpace(*row.Brand) != "" {
		tokens = append(tokens, "brand_"+tokenValue(*row.Brand))
	}

	return tokens
}

// EncodeDemographics turns a user's demographic rows into one indicator
// vector over vocab. Tokens missing from the vocabulary are ignored.
func EncodeDemographics(vocab *FeatureVocabulary, rows []domain.DemographicRow) SparseVector {
	set := make(map[int]struct{})
	for _, row := range rows {
		for _, tok := range DemographicTokens(row) {
			if i, ok := vocab.Index(tok); ok {
				set[i] = struct{}{}
			}
		}
	}

	indices := make([]int, 0, len(set))
	for i := range set {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	return SparseVector{Indices: indices}
}
