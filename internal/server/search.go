// search.go - File search, available to both roles.
package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type searchResp struct {
	Files []fileEntry `json:"files"`
	Total int         `json:"total"`
}

// searchFiles handles GET /api/files/search?q=&type=. Both roles may
// search; only the ops view includes the uploader.
func (s *Server) searchFiles(w http.ResponseWriter, r *http.Request) {
	u := s.authorize(w, r, OpSearch)
	if u == nil {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	fileType := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))

	records, err := s.files.Search(r.Context(), query, fileType)
	if err != nil {
		s.log.Error("file search failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	entries := make([]fileEntry, 0, len(records))
	for _, f := range records {
		entries = append(entries, toEntry(f, u.Role == RoleOps))
	}
	writeJSON(w, http.StatusOK, searchResp{Files: entries, Total: len(entries)})
}
