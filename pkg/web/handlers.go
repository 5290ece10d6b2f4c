package web

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-mazerunner/pkg/hub"
	"github.com/teslashibe/go-mazerunner/pkg/protocol"
	"github.com/teslashibe/go-mazerunner/pkg/runstore"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4")
	return c.SendString(fmt.Sprintf(`# HELP mazerunner_events_total Run events observed
# TYPE mazerunner_events_total counter
mazerunner_events_total %d

# HELP mazerunner_events_dropped_total Run events that could not be encoded
# TYPE mazerunner_events_dropped_total counter
mazerunner_events_dropped_total %d

# HELP mazerunner_junctions_total Junction decisions executed
# TYPE mazerunner_junctions_total counter
mazerunner_junctions_total %d

# HELP mazerunner_sessions_total Sessions tracked
# TYPE mazerunner_sessions_total counter
mazerunner_sessions_total %d

# HELP mazerunner_ws_clients Connected websocket clients
# TYPE mazerunner_ws_clients gauge
mazerunner_ws_clients %d
`, s.stats.events.Load(), s.stats.dropped.Load(), s.stats.junctions.Load(),
		s.stats.sessions.Load(), s.hub.ClientCount()))
}

// handleStatus returns the session snapshot
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}

// EventsResponse is the body of GET /api/events.
type EventsResponse struct {
	Events []*protocol.Message `json:"events"`
	Next   int64               `json:"next"`
}

// handleEvents returns buffered events, optionally after ?since=N
func (s *Server) handleEvents(c *fiber.Ctx) error {
	var since int64
	if v := c.Query("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "since must be a non-negative integer")
		}
		since = n
	}
	events, next := s.Recent(since)
	return c.JSON(EventsResponse{Events: events, Next: next})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	st := s.Status()
	return c.JSON(fiber.Map{
		"run_id":  st.RunID,
		"history": st.History,
		"length":  len(st.History),
	})
}

// handlePath returns the optimized path in the export format
func (s *Server) handlePath(c *fiber.Ctx) error {
	st := s.Status()
	if st.Path == "" {
		return fiber.NewError(fiber.StatusNotFound, "no optimized path yet")
	}
	return c.SendString(st.Path)
}

// handleRuns lists stored runs, newest first, optionally for ?maze=label
func (s *Server) handleRuns(c *fiber.Ctx) error {
	s.mu.RLock()
	runs := s.runs
	s.mu.RUnlock()
	if runs == nil {
		return c.JSON([]runstore.Record{})
	}
	list := runs.List(c.Query("maze"))
	if list == nil {
		list = []runstore.Record{}
	}
	return c.JSON(list)
}

// handleEventsWS streams run events, starting with a status snapshot
func (s *Server) handleEventsWS(conn *websocket.Conn) {
	var initial []hub.Message
	if msg, err := protocol.NewStatusMessage(s.Status()); err == nil {
		if m, err := hub.Encode(msg); err == nil {
			initial = append(initial, m)
		}
	}
	hub.NewClient(s.hub, conn, initial...).Run()
}

// handleInbound answers pings; other client frames are ignored
func (s *Server) handleInbound(c *hub.Client, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil || msg.Type != protocol.TypePing {
		return
	}
	ping, err := msg.GetPingData()
	if err != nil {
		return
	}
	pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli())
	if err != nil {
		return
	}
	if m, err := hub.Encode(pong); err == nil {
		c.Send(m)
	}
}
