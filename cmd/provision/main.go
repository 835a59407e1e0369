// Command provision creates a pre-verified ops account. Ops accounts
// are never created through the public API; this tool is the only path.
//
// Usage:
//
//	DATABASE_URL=postgres://... provision -email ops@example.com -password s3cret123
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"docshare/internal/db"
	"docshare/internal/server"
)

func main() {
	email := flag.String("email", "", "ops account email")
	password := flag.String("password", "", "ops account password")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if *email == "" || *password == "" {
		logger.Fatal("both -email and -password are required")
	}

	dbConn, err := server.OpenDB(os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer func() { _ = dbConn.Close() }()

	if err := db.RunMigrations(dbConn); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		logger.Fatal("password hash failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users := server.NewUserStore(dbConn)
	u := server.User{
		ID:           uuid.New(),
		Email:        *email,
		PasswordHash: string(hash),
		Role:         server.RoleOps,
		Verified:     true, // ops accounts skip email verification
	}
	if err := users.Create(ctx, u, ""); err != nil {
		logger.Fatal("create ops user failed", zap.Error(err))
	}

	logger.Info("ops user created", zap.String("email", *email), zap.String("id", u.ID.String()))
}
