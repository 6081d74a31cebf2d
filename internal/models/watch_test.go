package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestActiveWatchTriggered(t *testing.T) {
	tests := []struct {
		name      string
		direction string
		threshold string
		price     string
		want      bool
	}{
		{"below at threshold", DirectionBelow, "100.00", "100.00", true},
		{"below under threshold", DirectionBelow, "100.00", "99.99", true},
		{"below over threshold", DirectionBelow, "100.00", "100.01", false},
		{"above at threshold", DirectionAbove, "100.00", "100.00", true},
		{"above over threshold", DirectionAbove, "100.00", "100.01", true},
		{"above under threshold", DirectionAbove, "100.00", "99.99", false},
		{"unknown direction never triggers", "sideways", "100.00", "100.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &ActiveWatch{
				Direction: tt.direction,
				Threshold: decimal.RequireFromString(tt.threshold),
			}
			assert.Equal(t, tt.want, w.Triggered(decimal.RequireFromString(tt.price)))
		})
	}
}
