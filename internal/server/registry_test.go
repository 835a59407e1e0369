package server

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockFileStore(t *testing.T) (*FileStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewFileStore(db), mock
}

func sampleRecord() FileRecord {
	return FileRecord{
		ID:            uuid.New(),
		StoredName:    uuid.NewString() + "_report.docx",
		OriginalName:  "report.docx",
		FileType:      "docx",
		OwnerID:       uuid.New(),
		DownloadToken: uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
	}
}

func TestFileStoreCreate(t *testing.T) {
	store, mock := newMockFileStore(t)
	f := sampleRecord()

	mock.ExpectExec(`INSERT INTO files`).
		WithArgs(f.ID, f.StoredName, f.OriginalName, f.FileType, f.OwnerID, f.DownloadToken).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Create(context.Background(), f))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileStoreByID(t *testing.T) {
	store, mock := newMockFileStore(t)
	f := sampleRecord()

	mock.ExpectQuery(`FROM files WHERE id`).
		WithArgs(f.ID).
		WillReturnRows(fileRows(f))

	got, err := store.ByID(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.StoredName, got.StoredName)
	assert.Equal(t, f.DownloadToken, got.DownloadToken)
}

func TestFileStoreByIDMissing(t *testing.T) {
	store, mock := newMockFileStore(t)

	mock.ExpectQuery(`FROM files WHERE id`).
		WillReturnRows(fileRows())

	_, err := store.ByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreByDownloadToken(t *testing.T) {
	store, mock := newMockFileStore(t)
	f := sampleRecord()

	mock.ExpectQuery(`FROM files WHERE download_token`).
		WithArgs(f.DownloadToken).
		WillReturnRows(fileRows(f))

	got, err := store.ByDownloadToken(context.Background(), f.DownloadToken)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
}

func TestFileStoreDelete(t *testing.T) {
	store, mock := newMockFileStore(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM files`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), id))
}

func TestFileStoreDeleteMissing(t *testing.T) {
	store, mock := newMockFileStore(t)

	mock.ExpectExec(`DELETE FROM files`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreList(t *testing.T) {
	store, mock := newMockFileStore(t)
	f1, f2 := sampleRecord(), sampleRecord()

	mock.ExpectQuery(`FROM files ORDER BY created_at`).
		WillReturnRows(fileRows(f1, f2))

	files, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFileStoreSearch(t *testing.T) {
	store, mock := newMockFileStore(t)
	f := sampleRecord()

	mock.ExpectQuery(`original_name ILIKE`).
		WithArgs("report", "docx").
		WillReturnRows(fileRows(f))

	files, err := store.Search(context.Background(), "report", "docx")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "report.docx", files[0].OriginalName)
}

func TestFileStoreSearchNoFilters(t *testing.T) {
	store, mock := newMockFileStore(t)

	mock.ExpectQuery(`original_name ILIKE`).
		WithArgs("", "").
		WillReturnRows(fileRows())

	files, err := store.Search(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, files)
}
