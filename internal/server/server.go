package server

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server owns the HTTP surface and its collaborators: credential
// store, file registry, blob storage, token issuer, link cipher,
// mailer and audit trail.
type Server struct {
	httpServer *http.Server

	cfg    Config
	log    *zap.Logger
	users  *UserStore
	files  *FileStore
	store  BlobStore
	tokens *tokenIssuer
	links  *linkCipher
	mail   Sender
	audit  *auditLog
}

// New builds a Server from configuration and an open database pool.
// The blob store defaults to local disk; configuring DS_S3_ENDPOINT
// switches to the S3 backend.
func New(cfg Config, db *sql.DB, log *zap.Logger) (*Server, error) {
	key, err := cfg.LinkKey()
	if err != nil {
		return nil, err
	}
	links, err := newLinkCipher(key)
	if err != nil {
		return nil, err
	}

	var store BlobStore
	if cfg.S3Endpoint != "" {
		store, err = NewMinioStore(cfg)
	} else {
		store, err = NewDiskStore(cfg.UploadDir)
	}
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		log:    log,
		users:  NewUserStore(db),
		files:  NewFileStore(db),
		store:  store,
		tokens: newTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		links:  links,
		mail:   newSender(cfg, log),
		audit:  &auditLog{db: db, log: log},
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.log))

	r.Get("/", s.indexHandler)
	r.Get("/health", s.healthHandler)

	// Public endpoints
	r.Post("/api/ops/login", s.loginHandler(RoleOps))
	r.Post("/api/client/login", s.loginHandler(RoleClient))
	r.Post("/api/client/signup", s.clientSignup)
	r.Get("/api/verify-email/{token}", s.verifyEmail)

	// Bearer-protected endpoints; per-operation role checks live in
	// the handlers.
	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Post("/api/ops/upload", s.uploadHandler)
		r.Get("/api/ops/files", s.listFiles(OpListOps))
		r.Delete("/api/ops/files/delete/{file_id}", s.deleteFile)

		r.Get("/api/client/files", s.listFiles(OpListClient))
		r.Get("/api/client/download/{file_id}", s.issueLink)
		r.Get("/api/download/{wrapper_token}", s.resolveLink)

		r.Get("/api/files/search", s.searchFiles)
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// indexHandler describes the API surface.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Secure File Sharing API",
		"endpoints": map[string]any{
			"client": map[string]string{
				"signup":     "/api/client/signup",
				"login":      "/api/client/login",
				"list_files": "/api/client/files",
				"download":   "/api/client/download/{file_id}",
			},
			"ops": map[string]string{
				"login":       "/api/ops/login",
				"upload":      "/api/ops/upload",
				"list_files":  "/api/ops/files",
				"delete_file": "/api/ops/files/delete/{file_id}",
			},
			"search": "/api/files/search",
		},
	})
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
