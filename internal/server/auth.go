// auth.go - Credential verification, bearer middleware and login handlers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Authenticate verifies credentials for the expected role. Role is part
// of the lookup key. A client account that matches the password but is
// not verified fails with ErrUnverifiedAccount; the verification state
// is never revealed to wrong-password attempts.
func (s *Server) Authenticate(ctx context.Context, email, password string, role Role) (*User, error) {
	u, err := s.users.ByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Unknown account still costs one bcrypt comparison.
			verifyPassword(password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !verifyPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if role == RoleClient && !u.Verified {
		return nil, ErrUnverifiedAccount
	}
	return u, nil
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
}

// loginHandler serves both role-specific login endpoints.
func (s *Server) loginHandler(role Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Email = strings.TrimSpace(req.Email)

		u, err := s.Authenticate(r.Context(), req.Email, req.Password, role)
		if err != nil {
			s.audit.record(r.Context(), auditLogin, "", req.Email, false)
			switch {
			case errors.Is(err, ErrUnverifiedAccount):
				writeMessage(w, http.StatusForbidden, "Please verify your email first")
			case errors.Is(err, ErrInvalidCredentials):
				writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			default:
				s.log.Error("login failed", zap.Error(err))
				writeMessage(w, http.StatusInternalServerError, "server error")
			}
			return
		}

		token, err := s.tokens.Issue(u.ID)
		if err != nil {
			s.log.Error("token issue failed", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "server error")
			return
		}

		s.audit.record(r.Context(), auditLogin, u.ID.String(), "", true)
		writeJSON(w, http.StatusOK, loginResp{AccessToken: token})
	}
}

type userCtxKey struct{}

// currentUser returns the authenticated user stored by requireUser.
func currentUser(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*User)
	return u, ok
}

// requireUser resolves the Authorization bearer token to a full user
// record and stores it in the request context. Role checks happen per
// handler against the policy table.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeMessage(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeMessage(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		userID, err := s.tokens.Resolve(parts[1])
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}

		// Fetch the live record so role and verification state are
		// current at request time, not at token-issue time.
		u, err := s.users.ByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeMessage(w, http.StatusUnauthorized, "invalid token")
				return
			}
			s.log.Error("user lookup failed", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, u)))
	})
}

// authorize loads the request user and checks the policy table. It
// writes the failure response itself and returns nil when the caller
// may not proceed.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, op Operation) *User {
	u, ok := currentUser(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return nil
	}
	if !Authorized(u.Role, op) {
		writeMessage(w, http.StatusForbidden, "Unauthorized")
		return nil
	}
	return u
}
