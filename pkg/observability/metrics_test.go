package observability_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/debot/pkg/domain"
	"github.com/aretw0/debot/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStateEnter(ctx, &domain.StateEvent{To: domain.ContextID(1)})
	hooks.OnStateEnter(ctx, &domain.StateEvent{To: domain.ContextID(1), Instant: true})
	hooks.OnActionDone(ctx, &domain.ActionEvent{Kind: "send_msg", Duration: time.Millisecond})
	hooks.OnActionDone(ctx, &domain.ActionEvent{Kind: "send_msg", IsError: true})
	hooks.OnCall(ctx, &domain.CallEvent{Function: "fetch"})
	hooks.OnCall(ctx, &domain.CallEvent{Function: "transfer", Target: true, Submit: true, IsError: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StateEnters.WithLabelValues("1", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StateEnters.WithLabelValues("1", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Actions.WithLabelValues("send_msg", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Actions.WithLabelValues("send_msg", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("fetch", "debot", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("transfer", "submit", "error")))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestCombine(t *testing.T) {
	var order []string
	first := domain.LifecycleHooks{
		OnCall: func(context.Context, *domain.CallEvent) { order = append(order, "first") },
	}
	second := domain.LifecycleHooks{
		OnCall:       func(context.Context, *domain.CallEvent) { order = append(order, "second") },
		OnStateEnter: func(context.Context, *domain.StateEvent) { order = append(order, "enter") },
	}
	hooks := observability.Combine(first, second)

	hooks.OnCall(context.Background(), &domain.CallEvent{})
	hooks.OnStateEnter(context.Background(), &domain.StateEvent{})
	hooks.OnActionStart(context.Background(), &domain.ActionEvent{})

	assert.Equal(t, []string{"first", "second", "enter"}, order)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LogHooks(logger)

	hooks.OnStateEnter(context.Background(), &domain.StateEvent{
		EventBase: domain.EventBase{SessionID: "s1"},
		From:      domain.StateZero,
		To:        domain.StateExit,
	})

	out := buf.String()
	assert.Contains(t, out, "state_enter")
	assert.Contains(t, out, "session_id=s1")
	assert.Contains(t, out, "to=EXIT")
}

func TestNewRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	m.Hooks().OnCall(context.Background(), &domain.CallEvent{Function: "fetch"})

	srv := httptest.NewServer(observability.NewRouter(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `debot_calls_total{function="fetch",kind="debot",result="ok"} 1`))

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
