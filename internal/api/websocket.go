package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/HatimDz/crypto-sub000/internal/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var wsTopics = map[string]events.Event{
	"signals":  events.EventSignal,
	"progress": events.EventBacktestProgress,
	"trades":   events.EventTradeClosed,
	"weights":  events.EventWeightsUpdated,
}

// websocket streams one event topic to the client. Select it with
// ?topic=signals|progress|trades|weights; signals is the default.
func (s *Server) websocket(c *gin.Context) {
	topic := c.DefaultQuery("topic", "signals")
	event, ok := wsTopics[topic]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown topic"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if s.Bus == nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"bus not ready"}`))
		return
	}

	stream, unsub := s.Bus.Subscribe(event, 100)
	defer unsub()

	for msg := range stream {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}
