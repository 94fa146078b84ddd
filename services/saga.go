package services

import (
	"context"
	"errors"
	"fmt"

	"prompt-cms/logger"
)

type sagaFunc func(ctx context.Context) error

type sagaStep struct {
	name       string
	action     sagaFunc
	compensate sagaFunc
}

// saga runs dependent store writes in order. When a step fails, the steps
// that already completed are compensated in reverse order and the caller
// gets the step's error. Compensation failures are joined onto it.
type saga struct {
	name  string
	steps []sagaStep
}

func newSaga(name string) *saga {
	return &saga{name: name}
}

// step appends an action. compensate may be nil for read-only steps.
func (s *saga) step(name string, action, compensate sagaFunc) *saga {
	s.steps = append(s.steps, sagaStep{name: name, action: action, compensate: compensate})
	return s
}

func (s *saga) run(ctx context.Context) error {
	done := make([]sagaStep, 0, len(s.steps))
	for _, st := range s.steps {
		if err := st.action(ctx); err != nil {
			logger.Log.Warnw("workflow step failed, compensating",
				"workflow", s.name, "step", st.name, "completed", len(done), "error", err)
			if cerr := s.rollback(ctx, done); cerr != nil {
				return errors.Join(err, cerr)
			}
			return err
		}
		done = append(done, st)
	}
	return nil
}

func (s *saga) rollback(ctx context.Context, done []sagaStep) error {
	// the request may already be cancelled; compensation must still run
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		st := done[i]
		if st.compensate == nil {
			continue
		}
		if err := st.compensate(ctx); err != nil {
			logger.Log.Errorw("compensation failed",
				"workflow", s.name, "step", st.name, "error", err)
			errs = append(errs, fmt.Errorf("compensate %s: %w", st.name, err))
		}
	}
	return errors.Join(errs...)
}
