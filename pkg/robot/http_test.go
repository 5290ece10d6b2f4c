package robot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teslashibe/go-mazerunner/internal/httpc"
	"github.com/teslashibe/go-mazerunner/pkg/sensor"
)

func newDaemon(t *testing.T, line []int, motors *[][2]int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/line", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"values": line})
	})
	mux.HandleFunc("/api/motors", func(w http.ResponseWriter, r *http.Request) {
		var req motorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		*motors = append(*motors, [2]int{req.Left, req.Right})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/daemon/status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"state":"running"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPController_ReadLine(t *testing.T) {
	var motors [][2]int
	srv := newDaemon(t, []int{0, 10, 990, 20, 0}, &motors)
	r := NewHTTPController(srv.URL)

	f, err := r.ReadLine(context.Background())
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if f != (sensor.Frame{0, 10, 990, 20, 0}) {
		t.Errorf("frame = %v", f)
	}
}

func TestHTTPController_ReadLineRejectsShortFrame(t *testing.T) {
	var motors [][2]int
	srv := newDaemon(t, []int{0, 10, 990}, &motors)
	r := NewHTTPController(srv.URL)

	if _, err := r.ReadLine(context.Background()); !errors.Is(err, ErrBadFrame) {
		t.Errorf("err = %v, want ErrBadFrame", err)
	}
}

func TestHTTPController_SetSpeeds(t *testing.T) {
	var motors [][2]int
	srv := newDaemon(t, []int{0, 0, 0, 0, 0}, &motors)
	r := NewHTTPController(srv.URL)

	if err := r.SetSpeeds(context.Background(), 60, 42); err != nil {
		t.Fatalf("SetSpeeds: %v", err)
	}
	if len(motors) != 1 || motors[0] != [2]int{60, 42} {
		t.Errorf("motors = %v", motors)
	}

	if err := r.SetSpeeds(context.Background(), 500, 0); !errors.Is(err, ErrSpeedOutOfRange) {
		t.Errorf("err = %v, want ErrSpeedOutOfRange", err)
	}
	if len(motors) != 1 {
		t.Error("out-of-range command must not reach the daemon")
	}
}

func TestHTTPController_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "motor fault", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	r := NewHTTPController(srv.URL)

	err := r.SetSpeeds(context.Background(), 10, 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	var statusErr *httpc.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("err = %v, want 503 StatusError", err)
	}
}

func TestHTTPController_DaemonStatus(t *testing.T) {
	var motors [][2]int
	srv := newDaemon(t, nil, &motors)
	r := NewHTTPController(srv.URL)

	state, err := r.GetDaemonStatus(context.Background())
	if err != nil {
		t.Fatalf("GetDaemonStatus: %v", err)
	}
	if state != "running" {
		t.Errorf("state = %q, want running", state)
	}
}
