package web

import (
	"net/http"
	"strconv"
	"strings"
)

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("post_id")), 10, 64)
	if err != nil || postID <= 0 {
		http.Error(w, "bad post_id", http.StatusBadRequest)
		return
	}
	if err := s.hub.ServeWS(w, r, postID); err != nil {
		s.logger.Warn(r.Context(), "live subscribe failed", "post_id", postID, "error", err)
	}
}
