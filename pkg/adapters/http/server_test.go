package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/accelerate/internal/logging"
	"github.com/aretw0/accelerate/internal/runtime"
	"github.com/aretw0/accelerate/pkg/adapters/memory"
	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMotions(n int) []domain.Motion {
	motions := make([]domain.Motion, n)
	for i := range motions {
		motions[i] = domain.Motion{
			Name:    fmt.Sprintf("motion-%d", i),
			Version: []int{i + 1},
			Add:     fmt.Sprintf("add:%d", i),
			Sub:     fmt.Sprintf("sub:%d", i),
		}
	}
	return motions
}

func newTestHandler(t *testing.T, driver *memory.Driver, n int, opts ...Option) (http.Handler, *runtime.Engine) {
	t.Helper()
	engine := runtime.NewEngine(driver, newMotions(n))
	opts = append([]Option{WithLogger(logging.NewNop())}, opts...)
	return NewHandler(engine, opts...), engine
}

func do(t *testing.T, h http.Handler, method, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func TestServer_Status(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewDriver(memory.WithStatus(2)), 5)

	code, body := do(t, h, http.MethodGet, "/status")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2.0, body["status"])
}

func TestServer_Operations(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/up", 5},
		{"/down", 0},
		{"/add", 3},
		{"/sub", 1},
		{"/move?n=2", 4},
		{"/move?n=-10", 0},
		{"/move", 3},
		{"/goto/0", 1},
		{"/goto/-1", 0},
		{"/goto/99", 5},
		{"/redo", 2},
		{"/reset", 2},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			h, _ := newTestHandler(t, memory.NewDriver(memory.WithStatus(2)), 5)

			code, body := do(t, h, http.MethodPost, tt.path)
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, float64(tt.want), body["status"])
		})
	}
}

func TestServer_BadRequest(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewDriver(), 3)

	code, body := do(t, h, http.MethodPost, "/move?n=lots")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "invalid n")

	code, body = do(t, h, http.MethodPost, "/goto/first")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "invalid position")
}

func TestServer_StepFailure(t *testing.T) {
	driver := memory.NewDriver(memory.WithExec(func(_ context.Context, step domain.Step) error {
		if step.Index == 2 {
			return errors.New("syntax error")
		}
		return nil
	}))
	h, _ := newTestHandler(t, driver, 4)

	code, body := do(t, h, http.MethodPost, "/up")
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, body["error"], "syntax error")
	assert.Equal(t, 2.0, body["status"], "reached cursor is reported")
}

type downDriver struct{ *memory.Driver }

func (downDriver) Status(context.Context) (int, bool, error) {
	return 0, false, fmt.Errorf("%w: connection refused", domain.ErrBackendUnavailable)
}

func TestServer_BackendUnavailable(t *testing.T) {
	engine := runtime.NewEngine(downDriver{memory.NewDriver()}, newMotions(2))
	h := NewHandler(engine, WithLogger(logging.NewNop()))

	code, body := do(t, h, http.MethodGet, "/status")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body["error"], "connection refused")
	assert.NotContains(t, body, "status")
}

func TestServer_Motions(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewDriver(memory.WithStatus(1)), 3)

	req := httptest.NewRequest(http.MethodGet, "/motions", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var motions []motionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &motions))
	require.Len(t, motions, 3)
	assert.Equal(t, motionResponse{Index: 0, Name: "motion-0", Version: "1", Applied: true}, motions[0])
	assert.False(t, motions[1].Applied)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewDriver(), 3)

	req := httptest.NewRequest(http.MethodGet, "/up", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewDriver(), 3)

	req := httptest.NewRequest(http.MethodOptions, "/up", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "accelerate_cursor 0\n")
	})
	h, _ := newTestHandler(t, memory.NewDriver(), 1, WithMetricsHandler(metrics))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "accelerate_cursor")
}

func TestServer_EventsDisabledByDefault(t *testing.T) {
	h, _ := newTestHandler(t, memory.NewDriver(), 1)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents(t *testing.T) {
	streams := NewStreamManager(logging.NewNop())
	engine := runtime.NewEngine(memory.NewDriver(), newMotions(2), runtime.WithLifecycleHooks(streams.Hooks()))
	srv := httptest.NewServer(NewHandler(engine, WithStreams(streams), WithLogger(logging.NewNop())))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?watch=step", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	require.Eventually(t, func() bool { return streams.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, engine.Up(ctx))

	var events []string
	for len(events) < 2 && lines.Scan() {
		if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok && lines.Text() != "data: connected" {
			events = append(events, data)
		}
	}
	require.Len(t, events, 2, "only step events pass the watch filter")

	var step domain.StepEvent
	require.NoError(t, json.Unmarshal([]byte(events[1]), &step))
	assert.Equal(t, "motion-1", step.Motion)
	assert.Equal(t, 2, step.Status)
}

func TestStreamManager_Hooks(t *testing.T) {
	streams := NewStreamManager(logging.NewNop())
	ch, cancel := streams.Subscribe()
	defer cancel()

	hooks := streams.Hooks()
	hooks.OnRunFinish(context.Background(), &domain.RunEvent{
		EventBase: domain.EventBase{Type: domain.EventRunFinish},
		Reached:   3,
		Err:       errors.New("boom"),
	})

	msg := <-ch
	assert.Equal(t, domain.EventRunFinish, msg.Type)
	assert.Contains(t, msg.Data, `"reached":3`)
	assert.Contains(t, msg.Data, `"error":"boom"`)

	cancel()
	assert.Equal(t, 0, streams.Subscribers())
}
