// audit.go - Append-only audit trail for security-relevant actions.
package server

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type auditAction string

const (
	auditLogin     auditAction = "login"
	auditSignup    auditAction = "signup"
	auditVerify    auditAction = "verify_email"
	auditUpload    auditAction = "file_upload"
	auditDelete    auditAction = "file_delete"
	auditLinkIssue auditAction = "link_issue"
	auditDownload  auditAction = "file_download"
)

// auditLog appends events to the audit_events table. A failed append is
// logged and swallowed; auditing never fails the request it describes.
type auditLog struct {
	db  *sql.DB
	log *zap.Logger
}

func (a *auditLog) record(ctx context.Context, action auditAction, userID, resource string, success bool) {
	if a == nil || a.db == nil {
		return
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, action, user_id, resource, success)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), string(action),
		sql.NullString{String: userID, Valid: userID != ""},
		sql.NullString{String: resource, Valid: resource != ""},
		success)
	if err != nil {
		a.log.Warn("audit append failed",
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}
