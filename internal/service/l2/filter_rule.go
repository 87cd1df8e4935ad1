package l2_service

import (
	"fmt"
	"holdingsbuilder/internal/domain"
	"math"

	"github.com/maja42/goval"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// DefaultFilterExpression keeps a security only if it traded on
// every day of the window at a positive price. Newly listed or
// suspended names fail it.
const DefaultFilterExpression = "missing == 0 && observed >= 1 && minPrice > 0.0"

// FilterRule decides whether a candidate stays in the portfolio,
// given its prices over the filter window
type FilterRule interface {
	Keep(series domain.PriceSeries) (bool, error)
}

type FilterRuleFunc func(series domain.PriceSeries) (bool, error)

func (f FilterRuleFunc) Keep(series domain.PriceSeries) (bool, error) {
	return f(series)
}

// WindowStats are the variables a filter expression can refer to.
// Counts are ints, prices are floats; compare them with literals of
// the same kind (observed >= 15, minPrice > 1.0).
type WindowStats struct {
	Total           int     `json:"total"`
	Observed        int     `json:"observed"`
	Missing         int     `json:"missing"`
	First           float64 `json:"first"`
	Last            float64 `json:"last"`
	MinPrice        float64 `json:"minPrice"`
	MaxPrice        float64 `json:"maxPrice"`
	Mean            float64 `json:"mean"`
	Stdev           float64 `json:"stdev"`
	PctChange       float64 `json:"pctChange"`
	MaxAbsDailyMove float64 `json:"maxAbsDailyMove"`
}

func percentChange(end, start float64) float64 {
	return ((end - start) / start) * 100
}

func ComputeWindowStats(series domain.PriceSeries) (WindowStats, error) {
	observed := series.Observed()
	out := WindowStats{
		Total:    len(series.Prices),
		Observed: len(observed),
		Missing:  len(series.Prices) - len(observed),
	}
	if len(observed) == 0 {
		return out, nil
	}

	var err error
	out.First = observed[0]
	out.Last = observed[len(observed)-1]
	if out.MinPrice, err = stats.Min(observed); err != nil {
		return out, fmt.Errorf("failed to compute min price for %s: %w", series.SecurityID, err)
	}
	if out.MaxPrice, err = stats.Max(observed); err != nil {
		return out, fmt.Errorf("failed to compute max price for %s: %w", series.SecurityID, err)
	}
	if out.Mean, err = stats.Mean(observed); err != nil {
		return out, fmt.Errorf("failed to compute mean price for %s: %w", series.SecurityID, err)
	}
	if len(observed) > 1 {
		if out.Stdev, err = stats.StandardDeviationSample(observed); err != nil {
			return out, fmt.Errorf("failed to compute stdev for %s: %w", series.SecurityID, err)
		}
		moves := make([]float64, 0, len(observed)-1)
		for i := 1; i < len(observed); i++ {
			if observed[i-1] == 0 {
				continue
			}
			moves = append(moves, math.Abs(percentChange(observed[i], observed[i-1])))
		}
		if len(moves) > 0 {
			out.MaxAbsDailyMove = floats.Max(moves)
		}
	}
	if out.First != 0 {
		out.PctChange = percentChange(out.Last, out.First)
	}

	return out, nil
}

func (s WindowStats) variables() map[string]interface{} {
	return map[string]interface{}{
		"total":           s.Total,
		"observed":        s.Observed,
		"missing":         s.Missing,
		"first":           s.First,
		"last":            s.Last,
		"minPrice":        s.MinPrice,
		"maxPrice":        s.MaxPrice,
		"mean":            s.Mean,
		"stdev":           s.Stdev,
		"pctChange":       s.PctChange,
		"maxAbsDailyMove": s.MaxAbsDailyMove,
	}
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func ruleFunctions() map[string]goval.ExpressionFunction {
	return map[string]goval.ExpressionFunction{
		"abs": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return 0, fmt.Errorf("abs needs 1 arg, got %d", len(args))
			}
			x, err := toFloat(args[0])
			if err != nil {
				return 0, err
			}
			return math.Abs(x), nil
		},
		"min": func(args ...interface{}) (interface{}, error) {
			if len(args) < 1 {
				return 0, fmt.Errorf("min needs at least 1 arg")
			}
			values := []float64{}
			for _, a := range args {
				x, err := toFloat(a)
				if err != nil {
					return 0, err
				}
				values = append(values, x)
			}
			return floats.Min(values), nil
		},
		"max": func(args ...interface{}) (interface{}, error) {
			if len(args) < 1 {
				return 0, fmt.Errorf("max needs at least 1 arg")
			}
			values := []float64{}
			for _, a := range args {
				x, err := toFloat(a)
				if err != nil {
					return 0, err
				}
				values = append(values, x)
			}
			return floats.Max(values), nil
		},
	}
}

// ExpressionRule evaluates a boolean goval expression over the
// window statistics, e.g.
//
//	missing == 0 && maxAbsDailyMove < 9.9
type ExpressionRule struct {
	Expression string
	functions  map[string]goval.ExpressionFunction
}

// NewExpressionRule checks the expression once against a sample
// window so syntax errors surface before any date is processed
func NewExpressionRule(expression string) (*ExpressionRule, error) {
	if expression == "" {
		expression = DefaultFilterExpression
	}
	rule := &ExpressionRule{
		Expression: expression,
		functions:  ruleFunctions(),
	}
	sample := WindowStats{
		Total:    2,
		Observed: 2,
		First:    1,
		Last:     1,
		MinPrice: 1,
		MaxPrice: 1,
		Mean:     1,
	}
	if _, err := rule.evaluate(sample); err != nil {
		return nil, fmt.Errorf("invalid filter expression %q: %w", expression, err)
	}
	return rule, nil
}

func (r ExpressionRule) evaluate(s WindowStats) (bool, error) {
	eval := goval.NewEvaluator()
	result, err := eval.Evaluate(r.Expression, s.variables(), r.functions)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter expression: %w", err)
	}
	keep, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("filter expression must evaluate to a bool, got %T", result)
	}
	return keep, nil
}

func (r ExpressionRule) Keep(series domain.PriceSeries) (bool, error) {
	s, err := ComputeWindowStats(series)
	if err != nil {
		return false, err
	}
	keep, err := r.evaluate(s)
	if err != nil {
		return false, fmt.Errorf("%s: %w", series.SecurityID, err)
	}
	return keep, nil
}
