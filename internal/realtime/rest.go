package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/zackiles/terminal-emulator/internal/protocol"
	"github.com/zackiles/terminal-emulator/internal/terminal"
)

type postInputRequest struct {
	Line string `json:"line"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info := s.sess.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.StatePayload{
		ID:               info.ID,
		State:            string(info.State),
		User:             info.User,
		WorkingDirectory: info.WorkingDirectory,
		CreatedAt:        info.CreatedAt.Format(time.RFC3339Nano),
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	history := s.sess.History()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

func (s *Server) handlePostInput(w http.ResponseWriter, r *http.Request) {
	var req postInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if s.sess.State() == terminal.StateClosed {
		http.Error(w, `{"error":"session closed"}`, http.StatusConflict)
		return
	}

	s.sess.HandleLine(req.Line)

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"accepted"}`))
}
