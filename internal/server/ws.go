package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"TenangChat/internal/therapy"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

type wsInbound struct {
	Text string `json:"text"`
}

type wsOutbound struct {
	Text      string `json:"text"`
	Provider  string `json:"provider"`
	Severity  string `json:"severity"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

// handleWebSocket serves a live chat connection. Each JSON frame in carries
// user text; each frame out carries the reply. The session lives as long as
// the connection unless the client supplies a session_id query parameter.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := s.store.GetOrCreate(r.URL.Query().Get("session_id"))
	s.logger.Info("websocket session started", "session_id", sessionID)

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Error("websocket read failed", "session_id", sessionID, "error", err)
			}
			return
		}
		if in.Text == "" {
			continue
		}

		result, err := s.therapist.Respond(r.Context(), sessionID, in.Text)
		out := wsOutbound{SessionID: sessionID}
		if err != nil {
			if errors.Is(err, therapy.ErrAllProvidersUnavailable) {
				out.Text = therapy.ApologyMessage
				out.Severity = result.Severity.String()
			} else {
				s.logger.Error("websocket therapy request failed", "session_id", sessionID, "error", err)
				out.Error = therapy.ApologyMessage
			}
		} else {
			out.Text = result.Response.Text
			out.Provider = result.Response.Provider
			out.Severity = result.Severity.String()
		}

		if err := conn.WriteJSON(out); err != nil {
			s.logger.Error("websocket write failed", "session_id", sessionID, "error", err)
			return
		}
	}
}
