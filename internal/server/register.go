// register.go - Client self-service signup and email verification.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// clientSignup handles POST /api/client/signup. Accounts start
// unverified with a fresh single-use verification token; ops accounts
// are provisioned out of band, pre-verified.
func (s *Server) clientSignup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if !validateEmail(req.Email) {
		writeMessage(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if ok, msg := validatePassword(req.Password); !ok {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.log.Error("password hash failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	verificationToken := uuid.NewString()
	user := User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         RoleClient,
		Verified:     false,
	}

	if err := s.users.Create(r.Context(), user, verificationToken); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			writeMessage(w, http.StatusBadRequest, "Email already registered")
			return
		}
		s.log.Error("signup insert failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	verifyURL := fmt.Sprintf("%s/api/verify-email/%s", s.cfg.BaseURL, verificationToken)
	if err := s.mail.SendVerification(req.Email, verifyURL); err != nil {
		// The account exists either way; the user can be re-sent a link.
		s.log.Warn("verification mail failed", zap.String("email", req.Email), zap.Error(err))
	}

	s.audit.record(r.Context(), auditSignup, user.ID.String(), "", true)
	writeMessage(w, http.StatusCreated, "Please check your email for verification")
}

// verifyEmail handles GET /api/verify-email/{token}. The token is
// single-use: consuming it flips the verification state and clears the
// token in one statement.
func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid verification token")
		return
	}

	if err := s.users.Verify(r.Context(), token); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeMessage(w, http.StatusBadRequest, "Invalid verification token")
			return
		}
		s.log.Error("verify update failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	s.audit.record(r.Context(), auditVerify, "", token, true)
	writeMessage(w, http.StatusOK, "Email verified successfully")
}
