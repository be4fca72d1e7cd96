package experiment

import "errors"

var (
	ErrUnknownUpdater    = errors.New("experiment: unknown updater")
	ErrUnknownIntegrator = errors.New("experiment: unknown integrator")
	ErrUnknownGenerator  = errors.New("experiment: unknown generator")
	ErrNotSetup          = errors.New("experiment: not set up")
)
