package recommendation

import (
	"net/url"
	"strconv"
	"strings"
)

// Event types of the raw event log.
const (
	EventPurchase   = "purchase"
	EventCart       = "cart"
	EventProduct    = "product"
	EventView       = "view"
	EventDepartment = "department"
	EventCancel     = "cancel"
	EventHome       = "home"
)

// eventWeights is the single interaction weight table. Training and serving
// must agree on it, so nothing else may define weights.
var eventWeights = map[string]float64{
	EventPurchase:   3.0,
	EventCart:       2.5,
	EventProduct:    2.0,
	EventView:       2.0,
	EventDepartment: 1.0,
	EventCancel:     0.5,
	EventHome:       0.5,
}

// EventWeight returns the interaction weight of an event type; unknown types weigh 0.
func EventWeight(eventType string) float64 {
	return eventWeights[strings.ToLower(strings.TrimSpace(eventType))]
}

// ProductIDFromURI extracts the product id from the trailing path segment of
// an event uri. Non-numeric trailing segments yield false.
func ProductIDFromURI(uri string) (uint64, bool) {
	path := uri
	if u, err := url.Parse(uri); err == nil {
		path = u.Path
	}

	path = strings.TrimRight(path, "/")
	idx := strings.LastIndex(path, "/")
	segment := path[idx+1:]
	if segment == "" {
		return 0, false
	}

	id, err := strconv.ParseUint(segment, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
