package recommendation

import "strings"

// EligibilityChecker decides whether an item may be shown to a shopper of
// the given department segment.
type EligibilityChecker interface {
	IsEligible(segment string, item ItemFacets) bool
}

// DepartmentEligibility admits items whose department matches the segment.
type DepartmentEligibility struct{}

func (DepartmentEligibility) IsEligible(segment string, item ItemFacets) bool {
	return strings.EqualFold(strings.TrimSpace(item.Department), segment)
}
