// Package viewpoint applies BCF viewpoints to host views and exports the active
// view back to a BCF viewpoint.
package viewpoint

import (
	"errors"
	"fmt"

	"github.com/philipparndt/gobcf/pkg/clipping"
	"github.com/philipparndt/gobcf/pkg/geometry"
)

// Options tunes the translation between BCF and the host
type Options struct {
	// AngleThreshold is the largest angle in radians between a clipping plane
	// normal and an axis for the plane to be used
	AngleThreshold float64
	// InvertDirection negates camera directions for hosts whose cameras look
	// along the opposite axis
	InvertDirection bool
	// Unit is the host length unit
	Unit geometry.Unit
	// FieldOfView in degrees is written for exported perspective cameras
	FieldOfView float64
}

// DefaultOptions returns options for a metric host with a 5° plane threshold
func DefaultOptions() Options {
	return Options{
		AngleThreshold: clipping.DefaultAngleThreshold,
		Unit:           geometry.Meters,
		FieldOfView:    60,
	}
}

// Step names a stage of applying a viewpoint. It is also the transaction name.
type Step string

// Application steps in execution order
const (
	StepReset      Step = "reset"
	StepOrient     Step = "orient"
	StepVisibility Step = "visibility"
	StepClipping   Step = "clipping"
	StepActivate   Step = "activate"
)

// StepError reports which step failed
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("viewpoint %s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// FailedStep returns the step err originated from, if any
func FailedStep(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}
	return "", false
}
