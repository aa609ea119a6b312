package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository/memory"
	"github.com/noah-isme/chamada-api/pkg/jobs"
	"github.com/noah-isme/chamada-api/pkg/storage"
)

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func newBackupService(store *memory.Store) *BackupService {
	return NewBackupService(BackupSources{
		Users:      store.Users(),
		Units:      store.Units(),
		Courses:    store.Courses(),
		Classes:    store.Classes(),
		Students:   store.Students(),
		Attendance: store.Attendance(),
	}, zap.NewNop())
}

func TestBackupExportEmptyStoreHasEveryCollection(t *testing.T) {
	backup, err := newBackupService(memory.New()).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.BackupVersion, backup.Version)

	raw, err := json.Marshal(backup)
	require.NoError(t, err)
	var doc struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"users", "units", "courses", "classes", "students", "attendance", "presence"} {
		require.Contains(t, doc.Data, key)
		assert.Equal(t, "[]", string(doc.Data[key]), key)
	}
}

func TestBackupExportOmitsSecrets(t *testing.T) {
	store := memory.New()
	_, _, class := seedReferenceData(t, store)
	ctx := context.Background()
	_, err := newUserService(store).Create(ctx, validUserRequest(), models.UserStatusPending)
	require.NoError(t, err)
	require.NoError(t, store.Attendance().Create(ctx, &models.AttendanceSession{
		ClassID: class.ID, Date: "2025-03-10",
		Entries: models.AttendanceData{"s1": models.EnhancedEntry{Present: true}},
	}))

	backup, err := newBackupService(store).Export(ctx)
	require.NoError(t, err)
	assert.Len(t, backup.Data.Users, 1)
	assert.Len(t, backup.Data.Attendance, 1)
	assert.Len(t, backup.Data.Presence, 1)

	raw, err := json.Marshal(backup)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"password"`)
	assert.NotContains(t, string(raw), backup.Data.Users[0].PasswordHash)
}

func TestBackupArchiveDisabled(t *testing.T) {
	svc := newBackupService(memory.New())
	_, err := svc.Archive(context.Background())
	requireStatus(t, err, http.StatusServiceUnavailable)

	_, err = svc.Download(context.Background(), "whatever")
	requireStatus(t, err, http.StatusNotFound)
}

func TestBackupArchiveWritesSnapshotThroughJob(t *testing.T) {
	store := memory.New()
	seedReferenceData(t, store)
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	queue := &recordingQueue{}

	svc := newBackupService(store)
	svc.EnableArchive(files, signer, queue, NewMetricsService())
	ctx := context.Background()

	archive, err := svc.Archive(ctx)
	require.NoError(t, err)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, BackupJobType, queue.jobs[0].Type)
	assert.Equal(t, archive.JobID, queue.jobs[0].ID)
	assert.Contains(t, archive.DownloadURL, "/backup/download/")

	require.True(t, strings.HasPrefix(archive.DownloadURL, "/api/backup/download/"), archive.DownloadURL)
	token := strings.TrimPrefix(archive.DownloadURL, "/api/backup/download/")
	_, err = svc.Download(ctx, token)
	requireStatus(t, err, http.StatusNotFound)

	require.NoError(t, svc.HandleJob(ctx, queue.jobs[0]))

	download, err := svc.Download(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, archive.File, download.Filename)
	var backup models.Backup
	require.NoError(t, json.Unmarshal(download.Data, &backup))
	assert.Len(t, backup.Data.Units, 1)

	_, err = svc.Download(ctx, token+"x")
	requireStatus(t, err, http.StatusNotFound)
}

func TestBackupArchiveQueueFailure(t *testing.T) {
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := newBackupService(memory.New())
	svc.EnableArchive(files, storage.NewSignedURLSigner("secret", time.Hour), &recordingQueue{err: jobs.ErrQueueStopped}, nil)

	_, err = svc.Archive(context.Background())
	requireStatus(t, err, http.StatusServiceUnavailable)
}

func TestBackupHandleJobRejectsMissingFile(t *testing.T) {
	svc := newBackupService(memory.New())
	assert.Error(t, svc.HandleJob(context.Background(), jobs.Job{ID: "j1"}))
}
