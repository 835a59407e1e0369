package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	to  string
	url string
}

func (c *captureSender) SendVerification(to, verifyURL string) error {
	c.to = to
	c.url = verifyURL
	return nil
}

func postSignup(t *testing.T, s *Server, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(signupReq{Email: email, Password: password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/client/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestClientSignup(t *testing.T) {
	s, mock := newTestServer(t)
	sender := &captureSender{}
	s.mail = sender

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "new@example.com", sqlmock.AnyArg(), RoleClient, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := postSignup(t, s, "new@example.com", "password1")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "check your email")

	assert.Equal(t, "new@example.com", sender.to)
	assert.True(t, strings.HasPrefix(sender.url, s.cfg.BaseURL+"/api/verify-email/"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientSignupDuplicateEmail(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	rec := postSignup(t, s, "dup@example.com", "password1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")
}

func TestClientSignupInvalidEmail(t *testing.T) {
	s, _ := newTestServer(t)

	rec := postSignup(t, s, "not-an-email", "password1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email")
}

func TestClientSignupWeakPassword(t *testing.T) {
	s, _ := newTestServer(t)

	rec := postSignup(t, s, "ok@example.com", "short")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientSignupBadBody(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/client/signup", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEmail(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs("tok-valid").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodGet, "/api/verify-email/tok-valid", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "verified successfully")
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	s, mock := newTestServer(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs("tok-bogus").
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodGet, "/api/verify-email/tok-bogus", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid verification token")
}
