package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFormula(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Formula
	}{
		{"linear", "linear", FormulaLinear},
		{"inverse", "inverse", FormulaInverse},
		{"sqrt", "sqrt", FormulaSqrt},
		{"log", "log", FormulaLog},
		{"empty defaults to linear", "", FormulaLinear},
		{"unknown defaults to linear", "cubic", FormulaLinear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseFormula(tt.input))
		})
	}
}

func TestMultiplierKnownValues(t *testing.T) {
	tests := []struct {
		name     string
		odds     float64
		formula  Formula
		expected float64
	}{
		{"linear at certainty", 100, FormulaLinear, 1.0},
		{"linear at 50", 50, FormulaLinear, 1.5},
		{"linear at 25", 25, FormulaLinear, 1.75},
		{"inverse at 50", 50, FormulaInverse, 2.0},
		{"inverse at certainty", 100, FormulaInverse, 1.0},
		{"sqrt at certainty", 100, FormulaSqrt, 1.0},
		{"log at certainty", 100, FormulaLog, 1.0},
		{"log at 50", 50, FormulaLog, 1 + math.Ln2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Multiplier(tt.odds, tt.formula), 1e-9)
		})
	}
}

// Odds outside (0, 100] carry no information and must not scale points.
func TestMultiplierInvalidOdds(t *testing.T) {
	formulas := []Formula{FormulaLinear, FormulaInverse, FormulaSqrt, FormulaLog}
	invalid := []float64{0, -1, 100.01, 250, math.NaN()}

	for _, formula := range formulas {
		for _, odds := range invalid {
			assert.Equal(t, 1.0, Multiplier(odds, formula),
				"formula %s odds %v", formula, odds)
		}
	}
}

func TestMultiplierBounds(t *testing.T) {
	formulas := []Formula{FormulaLinear, FormulaInverse, FormulaSqrt, FormulaLog}

	for _, formula := range formulas {
		for odds := 0.5; odds <= 100; odds += 0.5 {
			m := Multiplier(odds, formula)
			assert.GreaterOrEqual(t, m, 1.0, "formula %s odds %v", formula, odds)
			assert.False(t, math.IsInf(m, 0), "formula %s odds %v", formula, odds)
		}
	}
}

// Longer shots must never earn a smaller bonus than favorites.
func TestMultiplierMonotonic(t *testing.T) {
	formulas := []Formula{FormulaLinear, FormulaInverse, FormulaSqrt, FormulaLog}

	for _, formula := range formulas {
		prev := Multiplier(0.5, formula)
		for odds := 1.0; odds <= 100; odds += 0.5 {
			m := Multiplier(odds, formula)
			assert.LessOrEqual(t, m, prev, "formula %s odds %v", formula, odds)
			prev = m
		}
	}
}

func TestMultiplierFor(t *testing.T) {
	odds := 25.0

	assert.Equal(t, 1.0, MultiplierFor(nil, FormulaLinear))
	assert.InDelta(t, 1.75, MultiplierFor(&odds, FormulaLinear), 1e-9)
}
