package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitBurst(t *testing.T) {
	tests := []struct {
		name      string
		perSecond float64
		want      int
	}{
		{"default", 50, 100},
		{"fractional rate", 0.5, 1},
		{"slow rate", 0.2, 1},
		{"zero", 0, 1},
		{"rounds up", 1.3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rateLimitBurst(tt.perSecond))
		})
	}
}
