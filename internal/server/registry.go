// registry.go - File registry: persistence for file metadata.
//
// The opaque download token stored here is never returned to clients
// directly; only its encrypted wrapper leaves the server.
package server

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// FileRecord is a file-registry entry. StoredName is the on-disk (or
// object-store) key; OriginalName is the user-supplied display name.
type FileRecord struct {
	ID            uuid.UUID
	StoredName    string
	OriginalName  string
	FileType      string
	OwnerID       uuid.UUID
	DownloadToken string
	CreatedAt     time.Time
}

// FileStore persists file metadata.
type FileStore struct {
	db *sql.DB
}

func NewFileStore(db *sql.DB) *FileStore {
	return &FileStore{db: db}
}

// Create inserts the metadata record for a freshly stored file. The
// insert is a single atomic statement; the caller removes the stored
// bytes if it fails.
func (s *FileStore) Create(ctx context.Context, f FileRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (id, stored_name, original_name, file_type, owner_id, download_token)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, f.ID, f.StoredName, f.OriginalName, f.FileType, f.OwnerID, f.DownloadToken)
	return err
}

const fileColumns = `id, stored_name, original_name, file_type, owner_id, download_token, created_at`

func scanFile(row interface{ Scan(...any) error }) (*FileRecord, error) {
	var f FileRecord
	err := row.Scan(&f.ID, &f.StoredName, &f.OriginalName, &f.FileType, &f.OwnerID, &f.DownloadToken, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *FileStore) ByID(ctx context.Context, id uuid.UUID) (*FileRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = $1`, id)
	return scanFile(row)
}

// ByDownloadToken resolves a decrypted opaque token back to its record.
// This lookup is the enforcement point for the delete/resolve race: a
// deleted record yields ErrNotFound, never stale bytes.
func (s *FileStore) ByDownloadToken(ctx context.Context, token string) (*FileRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE download_token = $1`, token)
	return scanFile(row)
}

// Delete removes the registry record. Returns ErrNotFound when the
// record is already gone.
func (s *FileStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all registered files, newest first.
func (s *FileStore) List(ctx context.Context) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+fileColumns+` FROM files ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFiles(rows)
}

// Search filters by a case-insensitive substring of the original name
// and/or an exact validated extension.
func (s *FileStore) Search(ctx context.Context, query, fileType string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+fileColumns+`
		FROM files
		WHERE ($1 = '' OR original_name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR file_type = $2)
		ORDER BY created_at DESC
	`, query, fileType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFiles(rows)
}

func collectFiles(rows *sql.Rows) ([]FileRecord, error) {
	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.ID, &f.StoredName, &f.OriginalName, &f.FileType, &f.OwnerID, &f.DownloadToken, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
