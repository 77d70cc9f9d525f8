/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	datasource "github.com/ilhamster/litviz/dashboard/data_source"
	"github.com/ilhamster/litviz/dashboard/metrics"
	rankingchart "github.com/ilhamster/litviz/ranking_chart"
	"github.com/ilhamster/litviz/resize"
)

const playbackPath = "/charts/{id}/play"

// Playback commands.
const (
	playAction  = "play"
	pauseAction = "pause"
	stopAction  = "stop"
	resetAction = "reset"
	scrubAction = "scrub"
)

// TimelineSource provides the timelines of ranking charts.
type TimelineSource interface {
	Timeline(ctx context.Context, id string) (datasource.Entry, []rankingchart.Snapshot, error)
}

// playbackHandler streams ranking chart playback over websockets.
type playbackHandler struct {
	timelines TimelineSource
	clock     rankingchart.Clock
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewPlaybackHandler returns a Handler streaming the frames of ranking chart
// playback over a websocket, under the control of the client's commands.
// Origins are checked against allowedOrigins, where "*" allows any origin.
// A nil clock means rankingchart.RealClock.
func NewPlaybackHandler(timelines TimelineSource, clock rankingchart.Clock, allowedOrigins []string, logger *slog.Logger) Handler {
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &playbackHandler{
		timelines: timelines,
		clock:     clock,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		logger: logger,
	}
}

// HandlersByPath returns a mapping of HTTP request path to HTTP handler for
// this Handler.
func (ph *playbackHandler) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	return map[string]func(http.ResponseWriter, *http.Request){
		playbackPath: ph.play,
	}
}

type entryMessage struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// frameMessage is sent for each frame shown.
type frameMessage struct {
	Index     int            `json:"index"`
	Timestamp float64        `json:"timestamp"`
	State     string         `json:"state"`
	Entries   []entryMessage `json:"entries"`
}

type errorMessage struct {
	Error string `json:"error"`
}

// command is a client's playback command.
type command struct {
	Action string `json:"action"`
	// Index is the snapshot index of a scrub.
	Index int `json:"index"`
}

// session is a single playback stream.  Writes to its connection are
// serialized.
type session struct {
	conn   *websocket.Conn
	logger *slog.Logger

	mu sync.Mutex
}

func (s *session) send(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(v); err != nil {
		s.logger.Debug("failed to send playback message", "error", err)
	}
}

func (s *session) sendFrame(f rankingchart.Frame) {
	msg := frameMessage{
		Index:     f.Index,
		Timestamp: f.Timestamp,
		State:     f.State.String(),
		Entries:   make([]entryMessage, len(f.Entries)),
	}
	for idx, it := range f.Entries {
		msg.Entries[idx] = entryMessage{Label: it.Label, Value: it.Value}
	}
	s.send(msg)
}

func apply(chart *rankingchart.Chart, cmd command) error {
	switch cmd.Action {
	case playAction:
		chart.Play()
	case pauseAction:
		chart.Pause()
	case stopAction:
		chart.Stop()
	case resetAction:
		chart.Reset()
	case scrubAction:
		return chart.Scrub(cmd.Index)
	default:
		return fmt.Errorf("unsupported playback action '%s'", cmd.Action)
	}
	return nil
}

func (ph *playbackHandler) play(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, idParam)
	accumulate, err := boolParam(req.URL.Query(), "accumulate")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, timeline, err := ph.timelines.Timeline(req.Context(), id)
	if errors.Is(err, datasource.ErrUnknownChart) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := ph.upgrader.Upgrade(w, req, nil)
	if err != nil {
		ph.logger.Error("websocket upgrade failed", "chart", id, "error", err)
		return
	}
	defer conn.Close()
	metrics.PlaybackSessions.Inc()
	defer metrics.PlaybackSessions.Dec()

	s := &session{conn: conn, logger: ph.logger}
	chart := rankingchart.New(rankingchart.Props{
		XLabel:     entry.XLabel,
		YLabel:     entry.YLabel,
		Clock:      ph.clock,
		OnFrame:    s.sendFrame,
		Accumulate: accumulate,
	})
	chart.Mount(resize.NewContainer(resize.Size{}))
	defer chart.Unmount()
	if err := chart.Load(timeline); err != nil {
		s.send(errorMessage{Error: err.Error()})
		return
	}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ph.logger.Warn("playback stream closed", "chart", id, "error", err)
			}
			return
		}
		var cmd command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			s.send(errorMessage{Error: "invalid command: " + err.Error()})
			continue
		}
		if err := apply(chart, cmd); err != nil {
			s.send(errorMessage{Error: err.Error()})
		}
	}
}
