// Package reconcile returns the fleet to the warehouse baseline: every
// camera stored and unassigned, no worker or tournament holding cameras.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golfcam/internal/model"
	"golfcam/internal/store"
)

// Step names, in execution order.
const (
	StepCameras     = "cameras"
	StepWorkers     = "workers"
	StepTournaments = "tournaments"
)

// StepResult is the outcome of one bulk update.
type StepResult struct {
	Step     string `json:"step"`
	Affected int64  `json:"affected"`
}

// Report lists the completed steps of a reset.
type Report struct {
	Atomic bool         `json:"atomic"`
	Steps  []StepResult `json:"steps"`
}

// PartialBatchError is returned by a step-wise reset when a step fails
// after earlier steps were applied. Completed steps are not rolled back.
type PartialBatchError struct {
	Completed []StepResult
	Failed    string
	Err       error
}

func (e *PartialBatchError) Error() string {
	done := make([]string, len(e.Completed))
	for i, s := range e.Completed {
		done[i] = fmt.Sprintf("%s=%d", s.Step, s.Affected)
	}
	return fmt.Sprintf("reset partially applied (%s), step %s failed: %v", strings.Join(done, ", "), e.Failed, e.Err)
}

func (e *PartialBatchError) Unwrap() error { return e.Err }

type step struct {
	name string
	run  func(ctx context.Context, s store.Store) (int64, error)
}

var steps = []step{
	{StepCameras, func(ctx context.Context, s store.Store) (int64, error) {
		return s.Cameras().BulkUpdate(ctx, store.Fields{
			"location":   model.Warehouse,
			"assignedTo": nil,
			"status":     model.CameraAvailable,
		}, nil)
	}},
	{StepWorkers, func(ctx context.Context, s store.Store) (int64, error) {
		return s.Workers().BulkUpdate(ctx, store.Fields{"camerasAssigned": []string{}}, nil)
	}},
	{StepTournaments, func(ctx context.Context, s store.Store) (int64, error) {
		return s.Tournaments().BulkUpdate(ctx, store.Fields{"cameras": []string{}}, nil)
	}},
}

// Reconciler runs the warehouse reset.
type Reconciler struct {
	store  store.Store
	atomic bool
}

// New returns a Reconciler. With atomic set, the three steps share one
// transaction and a failure rolls all of them back.
func New(s store.Store, atomic bool) *Reconciler {
	return &Reconciler{store: s, atomic: atomic}
}

// ResetAll applies the warehouse reset to every camera, worker and
// tournament. Each step is one unconditional bulk update.
func (r *Reconciler) ResetAll(ctx context.Context) (*Report, error) {
	if r.atomic {
		var report *Report
		err := r.store.Transaction(ctx, func(tx store.Store) error {
			var err error
			report, err = runSteps(ctx, tx)
			return err
		})
		if err != nil {
			var pe *PartialBatchError
			if errors.As(err, &pe) {
				err = fmt.Errorf("reset rolled back at step %s: %w", pe.Failed, pe.Err)
			}
			log.Printf("[Reconcile] %v", err)
			return nil, err
		}
		report.Atomic = true
		log.Printf("[Reconcile] reset done: %+v", report.Steps)
		return report, nil
	}

	report, err := runSteps(ctx, r.store)
	if err != nil {
		log.Printf("[Reconcile] %v", err)
		return nil, err
	}
	log.Printf("[Reconcile] reset done: %+v", report.Steps)
	return report, nil
}

func runSteps(ctx context.Context, s store.Store) (*Report, error) {
	report := &Report{}
	for _, st := range steps {
		n, err := st.run(ctx, s)
		if err != nil {
			if len(report.Steps) == 0 {
				return nil, fmt.Errorf("reset step %s: %w", st.name, err)
			}
			return nil, &PartialBatchError{Completed: report.Steps, Failed: st.name, Err: err}
		}
		report.Steps = append(report.Steps, StepResult{Step: st.name, Affected: n})
	}
	return report, nil
}
