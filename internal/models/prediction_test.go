package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestRatchetTarget(t *testing.T) {
	tests := []struct {
		name     string
		original *float64
		current  *float64
		expected *float64
	}{
		{"both known takes minimum", ptr(40), ptr(25), ptr(25)},
		{"original lower wins", ptr(20), ptr(35), ptr(20)},
		{"equal stays", ptr(30), ptr(30), ptr(30)},
		{"nil current falls back to original", ptr(40), nil, ptr(40)},
		{"nil original falls back to current", nil, ptr(15), ptr(15)},
		{"both nil yields nil", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Prediction{OriginalOddsPercentage: tt.original}
			target := p.RatchetTarget(tt.current)
			if tt.expected == nil {
				assert.Nil(t, target)
				return
			}
			require.NotNil(t, target)
			assert.Equal(t, *tt.expected, *target)
		})
	}
}

// The ratchet never touches the original baseline.
func TestRatchetTargetLeavesOriginal(t *testing.T) {
	p := &Prediction{OriginalOddsPercentage: ptr(40)}
	_ = p.RatchetTarget(ptr(10))
	assert.Equal(t, 40.0, *p.OriginalOddsPercentage)
}

func TestNeedsUpgrade(t *testing.T) {
	tests := []struct {
		name     string
		stored   *float64
		target   *float64
		expected bool
	}{
		{"meaningful drop", ptr(40), ptr(25), true},
		{"sub-epsilon change skipped", ptr(25), ptr(25.005), false},
		{"just over epsilon applies", ptr(25), ptr(25.02), true},
		{"nil target never upgrades", ptr(25), nil, false},
		{"nil stored with target upgrades", nil, ptr(30), true},
		{"no change", ptr(30), ptr(30), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Prediction{OddsPercentage: tt.stored}
			assert.Equal(t, tt.expected, p.NeedsUpgrade(tt.target))
		})
	}
}

// Applying the ratchet twice with the same market odds is a no-op the
// second time.
func TestRatchetIdempotent(t *testing.T) {
	p := &Prediction{
		OddsPercentage:         ptr(40),
		OriginalOddsPercentage: ptr(40),
	}
	current := ptr(25)

	target := p.RatchetTarget(current)
	require.True(t, p.NeedsUpgrade(target))
	p.OddsPercentage = target

	again := p.RatchetTarget(current)
	assert.False(t, p.NeedsUpgrade(again))
}

func TestPredictionHasOdds(t *testing.T) {
	assert.False(t, (&Prediction{}).HasOdds())
	assert.False(t, (&Prediction{OddsPercentage: ptr(0)}).HasOdds())
	assert.False(t, (&Prediction{OddsPercentage: ptr(101)}).HasOdds())
	assert.True(t, (&Prediction{OddsPercentage: ptr(0.5)}).HasOdds())
	assert.True(t, (&Prediction{OddsPercentage: ptr(100)}).HasOdds())
}
