package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/EnderRifter/StarSim-sub000/internal/config"
	"github.com/EnderRifter/StarSim-sub000/internal/experiment"
)

// Setters apply a named parameter to a config.
var Setters = map[string]func(*config.Config, float64){
	"theta":     func(c *config.Config, v float64) { c.Physics.Theta = v },
	"softening": func(c *config.Config, v float64) { c.Physics.Softening = v },
	"dt":        func(c *config.Config, v float64) { c.Dt = v },
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch runs one experiment per combination of parameter values and
// looks for the smallest value of a result metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for _, name := range params {
		if _, ok := Setters[name]; !ok {
			return nil, fmt.Errorf("optim: unknown parameter %q", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search evaluates every grid point on a copy of base. Failed trials are
// recorded but never selected as best.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (best Trial, trials []Trial, err error) {
	best.Value = math.Inf(1)
	g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &best, &trials)
	if err := ctx.Err(); err != nil {
		return best, trials, err
	}
	if best.Params == nil {
		return best, trials, fmt.Errorf("optim: no successful trial")
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	best *Trial,
	trials *[]Trial,
) {
	if ctx.Err() != nil {
		return
	}

	if depth == len(g.paramNames) {
		trial := Trial{Params: current}
		trial.Value, trial.Err = g.evaluate(ctx, base, current, metricName)
		*trials = append(*trials, trial)

		if trial.Err == nil && trial.Value < best.Value {
			*best = trial
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, base, metricName, best, trials)
	}
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64, metricName string) (float64, error) {
	cfg := base.Clone()
	for name, v := range params {
		Setters[name](cfg, v)
	}

	exp := experiment.New(cfg, nil)
	if err := exp.Setup(); err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}

	val, ok := result.Metrics[metricName]
	if !ok {
		return 0, fmt.Errorf("optim: metric %q not recorded", metricName)
	}
	return val, nil
}
