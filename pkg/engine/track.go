package engine

import (
	"errors"
	"time"

	"github.com/dd0wney/cluso-patchbay/pkg/logging"
	"github.com/dd0wney/cluso-patchbay/pkg/metrics"
	"github.com/dd0wney/cluso-patchbay/pkg/validation"
)

// opTimer times one public operation and records its outcome.
type opTimer struct {
	m     *Manager
	op    string
	timer *logging.TimedOperation
}

func (m *Manager) begin(op string, fields ...logging.Field) *opTimer {
	return &opTimer{
		m:     m,
		op:    op,
		timer: logging.StartTimer(m.logger, op, append(fields, logging.Operation(op))...),
	}
}

// done records the operation. Runtime failures are logged at error level;
// caller mistakes and rejections only at debug.
func (o *opTimer) done(err error) {
	status := statusOf(err)
	if status == metrics.StatusError && !callerError(err) {
		o.finish(status, o.timer.EndError(err))
		return
	}
	fields := []logging.Field{logging.String("status", status)}
	if err != nil {
		fields = append(fields, logging.Error(err))
	}
	o.finish(status, o.timer.End(fields...))
}

// noop records an operation that found nothing to do.
func (o *opTimer) noop() {
	o.finish(metrics.StatusNoop, o.timer.End(logging.String("status", metrics.StatusNoop)))
}

func (o *opTimer) finish(status string, d time.Duration) {
	o.m.metrics.RecordOperation(o.op, status, d)
	o.m.metrics.SetGraphSize(len(o.m.nodes), len(o.m.links))
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.Is(err, validation.ErrInvalidConnection):
		return metrics.StatusRejected
	default:
		return metrics.StatusError
	}
}

func callerError(err error) bool {
	return errors.Is(err, ErrUnknownNode) ||
		errors.Is(err, ErrUnknownUnitType) ||
		errors.Is(err, ErrNodeExists) ||
		errors.Is(err, ErrClosed)
}
