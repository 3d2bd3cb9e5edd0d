package host

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/fmukit/internal/abi"
	"github.com/san-kum/fmukit/internal/dynamo"
	"github.com/san-kum/fmukit/internal/fmi"
	"github.com/san-kum/fmukit/internal/integrators"
	"github.com/san-kum/fmukit/internal/logging"
)

// instanceSystem presents a model-exchange instance as a dynamo.System.
// Derive cannot fail, so the first bad status is kept in status and checked
// after every step.
type instanceSystem struct {
	table  *abi.Table
	h      abi.Handle
	n      int
	status fmi.Status
}

func (s *instanceSystem) StateDim() int { return s.n }

func (s *instanceSystem) Derive(t float64, x, dx dynamo.State) {
	s.keep(s.table.SetTime(s.h, t))
	s.keep(s.table.SetContinuousStates(s.h, x))
	s.keep(s.table.GetDerivatives(s.h, dx))
}

func (s *instanceSystem) keep(status fmi.Status) {
	if status > s.status {
		s.status = status
	}
}

func (r *run) runModelExchange(ctx context.Context, res *Result) error {
	o := r.opts
	integ, err := integrators.New(o.Solver)
	if err != nil {
		return err
	}

	sys := &instanceSystem{table: r.table, h: r.h, n: r.c.NumStates()}
	x := make(dynamo.State, sys.n)
	if status := r.table.GetContinuousStates(r.h, x); status > fmi.Warning {
		return fmt.Errorf("get continuous states: status %s", status)
	}

	t := o.Start
	for i := 0; i < r.points(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		h := math.Min(o.Step, o.Stop-t)
		if err := integrators.Advance(integ, sys, t, h, h, o.Tolerance, x); err != nil {
			return err
		}
		if sys.status > fmi.Warning {
			return fmt.Errorf("derivatives at t=%g: status %s", t, sys.status)
		}
		t += h

		// Leave the instance on the accepted state before reading outputs.
		r.table.SetTime(r.h, t)
		r.table.SetContinuousStates(r.h, x)
		_, terminate, status := r.table.CompletedIntegratorStep(r.h, true)
		if status > fmi.Warning {
			return fmt.Errorf("completed integrator step at t=%g: status %s", t, status)
		}
		res.Steps++
		if err := r.record(res, t); err != nil {
			return err
		}
		if terminate {
			break
		}
	}

	logging.Logger().Debug("model exchange finished",
		zap.String("instance", o.InstanceName),
		zap.String("solver", integ.Name()),
		zap.Int("steps", res.Steps))
	return nil
}
