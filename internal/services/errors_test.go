package services_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/trentd187/playmate/internal/services"
)

func TestKindOf(t *testing.T) {
	notFound := &services.Error{Kind: services.KindNotFound, Message: "Player not found"}

	tests := []struct {
		name string
		err  error
		want services.Kind
	}{
		{"service error", notFound, services.KindNotFound},
		{"wrapped service error", fmt.Errorf("load: %w", notFound), services.KindNotFound},
		{"plain error", errors.New("disk on fire"), services.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}
