package recommendation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventWeight(t *testing.T) {
	tests := []struct {
		eventType string
		want      float64
	}{
		{"purchase", 3.0},
		{"cart", 2.5},
		{"product", 2.0},
		{"view", 2.0},
		{"department", 1.0},
		{"cancel", 0.5},
		{"home", 0.5},
		{" Purchase ", 3.0},
		{"wishlist", 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EventWeight(tt.eventType), tt.eventType)
	}
}

func TestProductIDFromURI(t *testing.T) {
	tests := []struct {
		uri    string
		want   uint64
		wantOK bool
	}{
		{"/product/42", 42, true},
		{"/product/42/", 42, true},
		{"https://shop.example.com/department/men/product/7?ref=home", 7, true},
		{"42", 42, true},
		{"/department/men", 0, false},
		{"/product/0", 0, false},
		{"/product/-3", 0, false},
		{"/product/4x2", 0, false},
		{"", 0, false},
		{"/", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, ok := ProductIDFromURI(tt.uri)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
