package rest

import (
	"errors"
	"net/http"
	"testing"

	"quixellMarket/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperror.NotFound("x"), http.StatusNotFound},
		{"validation", apperror.Validation("x"), http.StatusBadRequest},
		{"upstream", apperror.Upstream("x", errors.New("boom")), http.StatusBadGateway},
		{"unavailable", apperror.ServiceUnavailable("x", nil), http.StatusServiceUnavailable},
		{"inconsistent", apperror.DataInconsistency("x"), http.StatusInternalServerError},
		{"transient write", apperror.TransientWrite("x", errors.New("db")), http.StatusInternalServerError},
		{"plain", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
