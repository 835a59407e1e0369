// download.go - Download resolver: link issuance and resolution.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type downloadLinkResp struct {
	DownloadLink string `json:"download_link"`
	Message      string `json:"message"`
}

// issueLink handles GET /api/client/download/{file_id}: it wraps the
// file's opaque download token in ciphertext and returns the resulting
// URL. Any verified client may request a link to any file; ownership is
// irrelevant, matching the list-all-files semantics.
func (s *Server) issueLink(w http.ResponseWriter, r *http.Request) {
	u := s.authorize(w, r, OpIssueLink)
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

	wrapper, err := s.links.Seal(f.DownloadToken)
	if err != nil {
		s.log.Error("wrapper seal failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	s.audit.record(r.Context(), auditLinkIssue, u.ID.String(), f.ID.String(), true)
	writeJSON(w, http.StatusOK, downloadLinkResp{
		DownloadLink: fmt.Sprintf("%s/api/download/%s", s.cfg.BaseURL, wrapper),
		Message:      "success",
	})
}

// resolveLink handles GET /api/download/{wrapper_token}: decrypt the
// wrapper, resolve the opaque token to a registry record, and stream
// the stored bytes under the original filename.
//
// Decrypt failures answer 400 and lookup misses 404, both with the same
// message; the response never says which step failed.
func (s *Server) resolveLink(w http.ResponseWriter, r *http.Request) {
	u := s.authorize(w, r, OpResolveLink)
	if u == nil {
		return
	}

	token, err := s.links.Open(chi.URLParam(r, "wrapper_token"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, ErrInvalidLink.Error())
		return
	}

	f, err := s.files.ByDownloadToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeMessage(w, http.StatusNotFound, ErrInvalidLink.Error())
			return
		}
		s.log.Error("token lookup failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	rc, err := s.store.Open(r.Context(), f.StoredName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Record existed but bytes are gone: a delete raced us.
			writeMessage(w, http.StatusNotFound, ErrInvalidLink.Error())
			return
		}
		s.log.Error("blob open failed", zap.String("stored_name", f.StoredName), zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "server error")
		return
	}
	defer func() { _ = rc.Close() }()

	s.audit.record(r.Context(), auditDownload, u.ID.String(), f.ID.String(), true)

	w.Header().Set("Content-Type", contentTypeForExtension(f.FileType))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.OriginalName))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
