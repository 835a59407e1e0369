package server

import (
	"archive/zip"
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// newTestServer builds a Server wired to a sqlmock database and a
// temp-dir disk store.
func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	links, err := newLinkCipher(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)

	logger := zap.NewNop()
	s := &Server{
		cfg: Config{
			BaseURL:        "http://localhost:8080",
			MaxUploadBytes: 16 << 20,
			JWTSecret:      "testsecret",
			TokenTTL:       time.Hour,
		},
		log:    logger,
		users:  NewUserStore(db),
		files:  NewFileStore(db),
		store:  store,
		tokens: newTokenIssuer("testsecret", time.Hour),
		links:  links,
		mail:   logSender{log: logger},
		audit:  &auditLog{},
	}
	s.httpServer = &http.Server{Handler: s.routes()}
	return s, mock
}

func testUser(t *testing.T, role Role, verified bool) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)
	return &User{
		ID:           uuid.New(),
		Email:        string(role) + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		Verified:     verified,
		CreatedAt:    time.Now().UTC(),
	}
}

// bearerFor issues a real token for u and queues the user lookup the
// auth middleware performs.
func bearerFor(t *testing.T, s *Server, mock sqlmock.Sqlmock, u *User) string {
	t.Helper()
	tok, err := s.tokens.Issue(u.ID)
	require.NoError(t, err)
	expectUserLookup(mock, u)
	return "Bearer " + tok
}

func expectUserLookup(mock sqlmock.Sqlmock, u *User) {
	rows := sqlmock.NewRows([]string{"email", "password_hash", "role", "is_verified", "created_at"}).
		AddRow(u.Email, u.PasswordHash, string(u.Role), u.Verified, u.CreatedAt)
	mock.ExpectQuery(`SELECT email, password_hash, role, is_verified, created_at`).
		WithArgs(u.ID).
		WillReturnRows(rows)
}

func fileRows(files ...FileRecord) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "stored_name", "original_name", "file_type", "owner_id", "download_token", "created_at"})
	for _, f := range files {
		rows.AddRow(f.ID.String(), f.StoredName, f.OriginalName, f.FileType, f.OwnerID.String(), f.DownloadToken, f.CreatedAt)
	}
	return rows
}

// docxBytes builds a minimal OOXML container that sniffs as a Word
// document.
func docxBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(`<?xml version="1.0"?><root/>`))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
