package domain

// RecommendedProduct is one entry of a recommendation response.
type RecommendedProduct struct {
	ID          uint64 `json:"id"`
	ProductName string `json:"product_name"`
}
