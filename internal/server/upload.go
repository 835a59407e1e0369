// upload.go - Upload pipeline.
//
// Order of operations: size cap, extension allow-list, filename
// sanitisation, collision-resistant stored name, byte persistence,
// content sniffing against the office-document allow-list, opaque
// download-token generation, and a single atomic registry insert.
// Bytes never survive a failed insert, and a record is never written
// before its bytes.
package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// uploadHandler handles POST /api/ops/upload (multipart, field "file").
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	u := s.authorize(w, r, OpUpload)
	if u == nil {
		return
	}

	// Cap the payload before touching the body.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeMessage(w, http.StatusBadRequest, ErrPayloadTooLarge.Error())
			return
		}
		writeMessage(w, http.StatusBadRequest, "No file part")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		writeMessage(w, http.StatusBadRequest, "No selected file")
		return
	}
	if !allowedFile(header.Filename) {
		writeMessage(w, http.StatusBadRequest, ErrUnsupportedType.Error())
		return
	}

	original := sanitizeFilename(header.Filename)
	ext := fileExtension(original)

	// Random prefix guarantees the stored name never collides, and
	// never derives solely from the untrusted original name.
	storedName := uuid.NewString() + "_" + original

	if err := s.store.Save(r.Context(), storedName, file); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeMessage(w, http.StatusBadRequest, ErrPayloadTooLarge.Error())
			return
		}
		s.log.Error("upload persist failed", zap.String("stored_name", storedName), zap.Error(err))
		s.audit.record(r.Context(), auditUpload, u.ID.String(), original, false)
		writeMessage(w, http.StatusBadRequest, "storage error")
		return
	}

	// Sniff the stored bytes; the declared extension proves nothing.
	ok, err := s.sniffStored(r, storedName)
	if err != nil {
		_ = s.store.Remove(r.Context(), storedName)
		s.log.Error("upload sniff failed", zap.String("stored_name", storedName), zap.Error(err))
		writeMessage(w, http.StatusBadRequest, "storage error")
		return
	}
	if !ok {
		if err := s.store.Remove(r.Context(), storedName); err != nil {
			s.log.Error("cleanup after type mismatch failed", zap.String("stored_name", storedName), zap.Error(err))
		}
		s.audit.record(r.Context(), auditUpload, u.ID.String(), original, false)
		writeMessage(w, http.StatusBadRequest, ErrTypeMismatch.Error())
		return
	}

	record := FileRecord{
		ID:            uuid.New(),
		StoredName:    storedName,
		OriginalName:  original,
		FileType:      ext,
		OwnerID:       u.ID,
		DownloadToken: uuid.NewString(),
	}

	if err := s.files.Create(r.Context(), record); err != nil {
		// Compensate: the bytes must not outlive a failed insert.
		if rmErr := s.store.Remove(r.Context(), storedName); rmErr != nil {
			s.log.Error("rollback after registry failure failed",
				zap.String("stored_name", storedName), zap.Error(rmErr))
		}
		s.log.Error("registry insert failed", zap.Error(err))
		s.audit.record(r.Context(), auditUpload, u.ID.String(), original, false)
		writeMessage(w, http.StatusBadRequest, "storage error")
		return
	}

	s.audit.record(r.Context(), auditUpload, u.ID.String(), record.ID.String(), true)
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "File uploaded successfully",
		"id":      record.ID.String(),
	})
}

// sniffStored re-reads the just-persisted blob and checks its actual
// media type.
func (s *Server) sniffStored(r *http.Request, storedName string) (bool, error) {
	rc, err := s.store.Open(r.Context(), storedName)
	if err != nil {
		return false, err
	}
	defer func() { _ = rc.Close() }()
	return allowedContent(rc)
}
