package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/EnderRifter/StarSim-sub000/internal/physics"
)

var (
	// ErrInvalidState indicates a body with a NaN or Inf component.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates run settings that cannot be simulated.
	ErrInvalidConfig = errors.New("sim: invalid run configuration")
)

// SimulationError wraps an error with the tick it happened on.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// ValidateState reports the first body whose state is not finite.
func ValidateState(bodies []*physics.Body) error {
	for _, b := range bodies {
		if !b.Position.IsFinite() || !b.Velocity.IsFinite() || math.IsNaN(b.Mass) || math.IsInf(b.Mass, 0) {
			return fmt.Errorf("%w: body %d/%d", ErrInvalidState, b.Generation(), b.ID())
		}
	}
	return nil
}
