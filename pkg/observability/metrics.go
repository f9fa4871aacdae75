package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/debot/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by engine lifecycle events.
type Metrics struct {
	StateEnters    *prometheus.CounterVec
	Actions        *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec
	Calls          *prometheus.CounterVec
	CallDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		StateEnters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debot_state_enters_total",
				Help: "Total number of context entries, including exits.",
			},
			[]string{"state", "instant"},
		),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debot_actions_total",
				Help: "Total number of executed actions.",
			},
			[]string{"kind", "result"},
		),
		ActionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "debot_action_duration_seconds",
				Help:    "Duration of action executions.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debot_calls_total",
				Help: "Total number of call service requests.",
			},
			[]string{"function", "kind", "result"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "debot_call_duration_seconds",
				Help:    "Duration of call service requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}
	for _, c := range []prometheus.Collector{m.StateEnters, m.Actions, m.ActionDuration, m.Calls, m.CallDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			m.StateEnters.WithLabelValues(e.To.String(), boolLabel(e.Instant)).Inc()
		},
		OnActionDone: func(_ context.Context, e *domain.ActionEvent) {
			m.Actions.WithLabelValues(e.Kind, resultLabel(e.IsError)).Inc()
			m.ActionDuration.WithLabelValues(e.Kind).Observe(e.Duration.Seconds())
		},
		OnCall: func(_ context.Context, e *domain.CallEvent) {
			kind := callKind(e)
			m.Calls.WithLabelValues(e.Function, kind, resultLabel(e.IsError)).Inc()
			m.CallDuration.WithLabelValues(kind).Observe(e.Duration.Seconds())
		},
	}
}

// LogHooks returns lifecycle hooks that write debug records to logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "state_enter", "session_id", e.SessionID, "from", e.From.String(), "to", e.To.String(), "instant", e.Instant)
		},
		OnActionStart: func(ctx context.Context, e *domain.ActionEvent) {
			logger.DebugContext(ctx, "action_start", "session_id", e.SessionID, "action", e.Action, "kind", e.Kind)
		},
		OnActionDone: func(ctx context.Context, e *domain.ActionEvent) {
			logger.DebugContext(ctx, "action_done", "session_id", e.SessionID, "action", e.Action, "duration", e.Duration, "is_error", e.IsError)
		},
		OnCall: func(ctx context.Context, e *domain.CallEvent) {
			logger.DebugContext(ctx, "call", "session_id", e.SessionID, "function", e.Function, "kind", callKind(e), "duration", e.Duration, "is_error", e.IsError)
		},
	}
}

// Combine fans every event out to all hooks, in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(ctx context.Context, e *domain.StateEvent) {
			for _, h := range hooks {
				if h.OnStateEnter != nil {
					h.OnStateEnter(ctx, e)
				}
			}
		},
		OnActionStart: func(ctx context.Context, e *domain.ActionEvent) {
			for _, h := range hooks {
				if h.OnActionStart != nil {
					h.OnActionStart(ctx, e)
				}
			}
		},
		OnActionDone: func(ctx context.Context, e *domain.ActionEvent) {
			for _, h := range hooks {
				if h.OnActionDone != nil {
					h.OnActionDone(ctx, e)
				}
			}
		},
		OnCall: func(ctx context.Context, e *domain.CallEvent) {
			for _, h := range hooks {
				if h.OnCall != nil {
					h.OnCall(ctx, e)
				}
			}
		},
	}
}

func callKind(e *domain.CallEvent) string {
	switch {
	case e.Submit:
		return "submit"
	case e.Target:
		return "target"
	default:
		return "debot"
	}
}

func resultLabel(isError bool) string {
	if isError {
		return "error"
	}
	return "ok"
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
