package robot

import (
	"context"
	"fmt"
	"net/http"

	"github.com/teslashibe/go-mazerunner/internal/httpc"
	"github.com/teslashibe/go-mazerunner/pkg/sensor"
)

// HTTPController drives the robot through its daemon's HTTP API. Waits
// run on wall time.
type HTTPController struct {
	SystemClock

	BaseURL string
	client  *http.Client
}

// NewHTTPController creates a controller for the daemon at baseURL,
// e.g. "http://192.168.68.80:8000".
func NewHTTPController(baseURL string) *HTTPController {
	return &HTTPController{
		BaseURL: baseURL,
		client:  httpc.Client,
	}
}

// lineResponse is the daemon's calibrated line sensor payload.
type lineResponse struct {
	Values []int `json:"values"`
}

// motorRequest sets both wheel speeds.
type motorRequest struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// ReadLine fetches one calibrated frame.
func (r *HTTPController) ReadLine(ctx context.Context) (sensor.Frame, error) {
	var resp lineResponse
	if err := httpc.GetJSON(ctx, r.client, r.BaseURL+"/api/line", &resp); err != nil {
		return sensor.Frame{}, &APIError{Endpoint: "/api/line", Err: err}
	}
	if len(resp.Values) != sensor.Count {
		return sensor.Frame{}, fmt.Errorf("%w: got %d values", ErrBadFrame, len(resp.Values))
	}

	var f sensor.Frame
	for i, v := range resp.Values {
		if v < 0 || v > sensor.MaxValue {
			return sensor.Frame{}, fmt.Errorf("%w: channel %d = %d", ErrBadFrame, i, v)
		}
		f[i] = uint16(v)
	}
	return f, nil
}

// SetSpeeds sets both wheel speeds.
func (r *HTTPController) SetSpeeds(ctx context.Context, left, right int) error {
	if err := CheckSpeeds(left, right); err != nil {
		return err
	}
	if err := httpc.PostJSON(ctx, r.client, r.BaseURL+"/api/motors", motorRequest{Left: left, Right: right}, nil); err != nil {
		return &APIError{Endpoint: "/api/motors", Err: err}
	}
	return nil
}

// GetDaemonStatus returns the robot daemon state string.
func (r *HTTPController) GetDaemonStatus(ctx context.Context) (string, error) {
	var status struct {
		State string `json:"state"`
	}
	if err := httpc.GetJSON(ctx, r.client, r.BaseURL+"/api/daemon/status", &status); err != nil {
		return "", &APIError{Endpoint: "/api/daemon/status", Err: err}
	}
	return status.State, nil
}
