// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/AleutianRL/services/reward"
)

// ScoreEvent is the payload broadcast to websocket subscribers after
// every scored step.
type ScoreEvent struct {
	RolloutID string        `json:"rollout_id,omitempty"`
	Step      int           `json:"step"`
	Result    reward.Result `json:"result"`
	Time      time.Time     `json:"time"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 64 * 1024,
}

// subscriberBuffer is the per-subscriber event queue depth. A slow
// consumer drops events rather than stalling the score path.
const subscriberBuffer = 256

// EventHub fans scored steps out to websocket subscribers.
//
// Thread Safety: all methods are safe for concurrent use.
type EventHub struct {
	mu     sync.Mutex
	subs   map[string]chan ScoreEvent
	closed bool
	logger *slog.Logger
}

// NewEventHub creates an empty hub.
func NewEventHub(logger *slog.Logger) *EventHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHub{
		subs:   make(map[string]chan ScoreEvent),
		logger: logger,
	}
}

// Publish delivers ev to every subscriber. Subscribers whose buffer is
// full miss the event.
func (h *EventHub) Publish(ev ScoreEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("event subscriber lagging, dropping event", "subscriber", id)
		}
	}
}

// subscribe registers a new consumer and returns its channel plus an
// unsubscribe func.
func (h *EventHub) subscribe() (string, chan ScoreEvent, func()) {
	id := uuid.NewString()
	ch := make(chan ScoreEvent, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return id, ch, func() {}
	}
	h.subs[id] = ch
	h.mu.Unlock()

	return id, ch, func() {
		h.mu.Lock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
		h.mu.Unlock()
	}
}

// Close shuts the hub down and disconnects every subscriber.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// HandleEvents handles GET /v1/reward/events.
//
// Description:
//
//	Upgrades the connection to a websocket and streams ScoreEvent
//	frames until the client disconnects or the hub closes.
func (h *Handlers) HandleEvents(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.svc.logger.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()

	id, ch, cancel := h.svc.hub.subscribe()
	defer cancel()
	h.svc.logger.Info("event subscriber connected", "subscriber", id)

	// Drain client frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for ev := range ch {
		if err := ws.WriteJSON(ev); err != nil {
			h.svc.logger.Info("event subscriber disconnected", "subscriber", id, "error", err.Error())
			return
		}
	}
}
