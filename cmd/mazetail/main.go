// mazetail follows a mazerunner dashboard and prints run events as they
// happen.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-mazerunner/internal/log"
	"github.com/teslashibe/go-mazerunner/pkg/protocol"
)

const pingEvery = 15 * time.Second

func main() {
	url := flag.String("url", "ws://localhost:8080/ws/events", "Dashboard event stream")
	raw := flag.Bool("json", false, "Print raw JSON messages")
	untilDone := flag.Bool("exit", false, "Exit when the session finishes or fails")
	flag.Parse()

	log.Init("info")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	t := &tailer{out: os.Stdout, raw: *raw, untilDone: *untilDone}
	if err := t.run(ctx, *url); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("tail failed", "url", *url, "error", err)
		os.Exit(1)
	}
}

type tailer struct {
	out       io.Writer
	raw       bool
	untilDone bool
}

// run reads messages until ctx is done, the server closes the stream, or
// with untilDone a finished or error event arrives.
func (t *tailer) run(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	// Unblock ReadMessage on cancel.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	// Only this goroutine writes after the first ping.
	go func() {
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		for {
			if err := sendPing(conn); err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Warn("skipping malformed message", "error", err)
			continue
		}
		if t.raw {
			fmt.Fprintln(t.out, string(data))
		} else {
			fmt.Fprintln(t.out, format(msg))
		}
		if t.untilDone && (msg.Type == protocol.TypeFinished || msg.Type == protocol.TypeError) {
			return nil
		}
	}
}

func sendPing(conn *websocket.Conn) error {
	msg, err := protocol.NewPingMessage(uuid.NewString())
	if err != nil {
		return err
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// format renders one message as a single line.
func format(msg *protocol.Message) string {
	ts := msg.Time().Format("15:04:05.000")
	switch {
	case msg.Type == protocol.TypeStatus:
		st, err := msg.GetStatusData()
		if err != nil {
			return ts + " status (unreadable)"
		}
		return fmt.Sprintf("%s status   run=%s phase=%s rule=%s junctions=%d history=%q path=%q",
			ts, st.RunID, st.Phase, st.Rule, st.Junctions, st.History, st.Path)

	case msg.Type == protocol.TypePong:
		pong, err := msg.GetPongData()
		if err != nil {
			return ts + " pong"
		}
		return fmt.Sprintf("%s pong     %dms", ts, pong.LatencyMs)

	case msg.Type.IsEvent():
		e, err := msg.GetEventData()
		if err != nil {
			return fmt.Sprintf("%s %s (unreadable)", ts, msg.Type)
		}
		return fmt.Sprintf("%s %-8s %s", ts, msg.Type, describe(msg.Type, e))
	}
	return fmt.Sprintf("%s %s", ts, msg.Type)
}

func describe(t protocol.MessageType, e *protocol.EventData) string {
	switch t {
	case protocol.TypeStart:
		return e.Mode + " countdown"
	case protocol.TypeJunction:
		if e.Geometry == nil {
			return fmt.Sprintf("#%d", e.Junction+1)
		}
		return fmt.Sprintf("#%d %s", e.Junction+1, e.Geometry)
	case protocol.TypeDecision:
		s := fmt.Sprintf("#%d %s", e.Junction, e.Maneuver)
		if e.Mode == "replay" && e.Consumed {
			s += " (from path)"
		}
		return s
	case protocol.TypeRecorded, protocol.TypeGoal:
		return "history=" + e.History
	case protocol.TypeOptimized:
		return fmt.Sprintf("%s -> %s", e.History, e.Path)
	case protocol.TypeReplayEnd:
		if e.Goal {
			return "reached goal"
		}
		return "path used up"
	case protocol.TypeError:
		return e.Error
	}
	return e.Path
}
