// Package scoring implements the pool scoring engine and the odds-derived
// bonus multiplier. Everything here is pure computation over models; no
// database access.
package scoring

import (
	"math"
)

// Formula selects how an odds percentage maps to a bonus multiplier.
type Formula string

// Supported multiplier formulas. Lower win-probability picks are riskier,
// so a correct long-shot pick earns proportionally more points; how much
// more is a pool-level game-design choice.
const (
	FormulaLinear  Formula = "linear"
	FormulaInverse Formula = "inverse"
	FormulaSqrt    Formula = "sqrt"
	FormulaLog     Formula = "log"
)

// ParseFormula maps a stored formula name to a Formula, defaulting to
// linear for unknown or empty values.
func ParseFormula(s string) Formula {
	switch Formula(s) {
	case FormulaInverse, FormulaSqrt, FormulaLog:
		return Formula(s)
	default:
		return FormulaLinear
	}
}

// Multiplier maps an odds percentage to a scalar >= 1.0. Odds outside
// (0, 100] (including NaN) mean "no usable odds" and yield exactly 1.0.
func Multiplier(oddsPercentage float64, formula Formula) float64 {
	if math.IsNaN(oddsPercentage) || oddsPercentage <= 0 || oddsPercentage > 100 {
		return 1.0
	}

	d := oddsPercentage / 100

	switch formula {
	case FormulaInverse:
		return math.Max(1.0, 100/oddsPercentage)
	case FormulaSqrt:
		return 1 + math.Sqrt(1-d)
	case FormulaLog:
		return 1 + math.Log(100/oddsPercentage)
	default:
		return 2 - d
	}
}

// MultiplierFor applies Multiplier to a nullable odds percentage.
// A nil percentage yields exactly 1.0.
func MultiplierFor(oddsPercentage *float64, formula Formula) float64 {
	if oddsPercentage == nil {
		return 1.0
	}
	return Multiplier(*oddsPercentage, formula)
}
