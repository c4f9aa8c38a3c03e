package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pagesift/pagesift/internal/pipeline"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Development default. Lock this down behind a reverse proxy.
		return true
	},
}

// wsRequest is a processing request sent over the socket. The image is
// base64-encoded by encoding/json through the []byte field.
type wsRequest struct {
	Type  string `json:"type"` // currently only "image"
	Image []byte `json:"image,omitempty"`
}

// wsResponse is a processing update or result sent back to the client.
type wsResponse struct {
	Type     string         `json:"type"`
	Status   string         `json:"status"` // "processing", "completed", "error"
	Progress float64        `json:"progress,omitempty"`
	Page     *pipeline.Page `json:"page,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// processWebSocketHandler handles streaming page processing requests.
func (s *Server) processWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("websocket connection established", "remote", r.RemoteAddr)
	s.handleConnection(r.Context(), conn)
}

// handleConnection processes messages from one websocket connection.
func (s *Server) handleConnection(ctx context.Context, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var req wsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			s.sendWS(conn, wsResponse{Type: "error", Status: "error", Error: "invalid request"})
			continue
		}
		s.processWSImage(ctx, conn, req)
	}
}

// processWSImage decodes and processes one page, streaming status
// updates before the final result.
func (s *Server) processWSImage(ctx context.Context, conn *websocket.Conn, req wsRequest) {
	if req.Type != "image" || len(req.Image) == 0 {
		s.sendWS(conn, wsResponse{Type: "error", Status: "error", Error: "expected an image request"})
		return
	}

	img, _, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		s.sendWS(conn, wsResponse{Type: "error", Status: "error", Error: "invalid image format"})
		return
	}

	s.sendWS(conn, wsResponse{Type: "image", Status: "processing", Progress: 0})

	start := time.Now()
	page, err := s.orchestrator.ProcessPage(ctx, img, 1)
	if err != nil {
		s.sendWS(conn, wsResponse{Type: "image", Status: "error", Error: err.Error()})
		return
	}
	text, images := countRegions(page)
	recordPage("image", page.Failed, time.Since(start), text, images)

	s.sendWS(conn, wsResponse{Type: "image", Status: "completed", Progress: 1, Page: &page})
}

func (s *Server) sendWS(conn *websocket.Conn, resp wsResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("failed to marshal websocket response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("failed to write websocket message", "error", err)
	}
}
