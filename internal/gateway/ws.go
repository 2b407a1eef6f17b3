package gateway

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// wsRequest is one question over the WebSocket channel.
type wsRequest struct {
	Question string `json:"question"`
}

// wsError is sent when a frame cannot be processed.
type wsError struct {
	Error string `json:"error"`
}

// handleWebSocket handles /ws: a long-lived connection where each JSON
// frame {"question": "..."} gets the full pipeline response back as one
// frame. Malformed frames get an error frame; the connection stays open.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[Gateway] WebSocket client connected: %s", conn.RemoteAddr())

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Gateway] WebSocket read error: %v", err)
			}
			return
		}

		if req.Question == "" {
			if err := conn.WriteJSON(wsError{Error: "question is required"}); err != nil {
				return
			}
			continue
		}

		resp := s.orchestrator.HandleQuery(r.Context(), req.Question)
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("[Gateway] WebSocket write error: %v", err)
			return
		}
	}
}
