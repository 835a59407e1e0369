// files.go - File listing and ops-only deletion.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fileEntry is the listing shape. UploadedBy is only populated for the
// ops view.
type fileEntry struct {
	ID         string  `json:"id"`
	Filename   string  `json:"filename"`
	Type       string  `json:"type"`
	UploadedAt string  `json:"uploaded_at"`
	UploadedBy *string `json:"uploaded_by,omitempty"`
}

type fileListResp struct {
	Files []fileEntry `json:"files"`
}

func toEntry(f FileRecord, includeOwner bool) fileEntry {
	e := fileEntry{
		ID:         f.ID.String(),
		Filename:   f.OriginalName,
		Type:       f.FileType,
		UploadedAt: f.CreatedAt.UTC().Format(time.RFC3339),
	}
	if includeOwner {
		owner := f.OwnerID.String()
		e.UploadedBy = &owner
	}
	return e
}

// listFiles serves both GET /api/client/files and GET /api/ops/files;
// the role decides the view and whether the owner field is included.
func (s *Server) listFiles(op Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := s.authorize(w, r, op)
		if u == nil {
			return
		}

		records, err := s.files.List(r.Context())
		if err != nil {
			s.log.Error("file list failed", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "server error")
			return
		}

		entries := make([]fileEntry, 0, len(records))
		for _, f := range records {
			entries = append(entries, toEntry(f, u.Role == RoleOps))
		}
		writeJSON(w, http.StatusOK, fileListResp{Files: entries})
	}
}

// deleteFile handles DELETE /api/ops/files/delete/{file_id}. Bytes are
// removed before the record so a record never outlives its bytes.
func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	u := s.authorize(w, r, OpDelete)
	if u == nil {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "file_id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}

	f, err := s.files.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "not found")
			return
		}
		s.log.Error("file lookup failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	if err := s.store.Remove(r.Context(), f.StoredName); err != nil {
		s.log.Error("blob remove failed", zap.String("stored_name", f.StoredName), zap.Error(err))
		s.audit.record(r.Context(), auditDelete, u.ID.String(), f.ID.String(), false)
		writeMessage(w, http.StatusBadRequest, "storage error")
		return
	}

	if err := s.files.Delete(r.Context(), id); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Error("registry delete failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	s.audit.record(r.Context(), auditDelete, u.ID.String(), f.ID.String(), true)
	writeMessage(w, http.StatusOK, "File deleted successfully")
}
