package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio-builder/internal/domain/domaintest"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/user"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type fakeUploader struct {
	folder   string
	publicID string
	body     []byte
	calls    int
	err      error
}

func (u *fakeUploader) Upload(_ context.Context, file io.Reader, folder, publicID string) (string, error) {
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	u.folder, u.publicID, u.body = folder, publicID, body
	return "https://cdn.example.com/" + folder + "/" + publicID, nil
}

func newSnapshotFixture(t *testing.T) (*SnapshotUseCase, *domaintest.MemoryStore, *fakeUploader, uuid.UUID) {
	t.Helper()
	store := domaintest.NewMemoryStore()
	id := uuid.New()
	require.NoError(t, store.Create(context.Background(), &user.User{ID: id, Name: "Ann", Email: "ann@x.com"}))

	up := &fakeUploader{}
	uc := NewSnapshotUseCase(store, up, logger.NewNop())
	uc.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }
	return uc, store, up, id
}

func TestSnapshot_UploadsCurrentDocument(t *testing.T) {
	uc, store, up, id := newSnapshotFixture(t)
	_, err := store.Save(context.Background(), id, portfolio.Document{"fullName": "Ann"})
	require.NoError(t, err)

	require.NoError(t, uc.Execute(context.Background(), id))

	assert.Equal(t, "portfolios/"+id.String(), up.folder)
	assert.Equal(t, "snapshot-2025-03-04_05-06-07", up.publicID)
	var got portfolio.Document
	require.NoError(t, json.Unmarshal(up.body, &got))
	assert.Equal(t, portfolio.Document{"fullName": "Ann"}, got)
}

func TestSnapshot_MissingUserIsSkipped(t *testing.T) {
	uc, _, up, _ := newSnapshotFixture(t)

	assert.NoError(t, uc.Execute(context.Background(), uuid.New()))
	assert.Zero(t, up.calls)
}

func TestSnapshot_UploadFailure(t *testing.T) {
	uc, _, up, id := newSnapshotFixture(t)
	up.err = errors.New("cloudinary down")

	err := uc.Execute(context.Background(), id)
	assert.ErrorIs(t, err, apperror.ErrInternal)
}
