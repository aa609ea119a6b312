package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/models"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/jobs"
	"github.com/noah-isme/chamada-api/pkg/logger"
	"github.com/noah-isme/chamada-api/pkg/storage"
)

// BackupJobType identifies archive jobs on the queue.
const BackupJobType = "backup.archive"

type backupUserLister interface {
	List(ctx context.Context, status models.UserStatus) ([]models.User, error)
}

type courseLister interface {
	List(ctx context.Context) ([]models.Course, error)
}

type ledgerReader interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSession, error)
	ListRecords(ctx context.Context) ([]models.AttendanceRecord, error)
}

type backupFileStorage interface {
	Save(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
}

type backupSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string) (storage.Claims, error)
}

type jobEnqueuer interface {
	Enqueue(ctx context.Context, job jobs.Job) error
}

// BackupSources lists the stores included in a snapshot.
type BackupSources struct {
	Users      backupUserLister
	Units      unitLister
	Courses    courseLister
	Classes    classLister
	Students   studentLister
	Attendance ledgerReader
}

// BackupDownload is an archived snapshot ready to stream.
type BackupDownload struct {
	Filename string
	Data     []byte
}

// BackupService exports the full state and archives snapshots to storage.
type BackupService struct {
	src     BackupSources
	storage backupFileStorage
	signer  backupSigner
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time

	downloadPath string
}

const defaultDownloadPath = "/api/backup/download"

// NewBackupService constructs a BackupService. Archiving stays disabled until
// EnableArchive is called.
func NewBackupService(src BackupSources, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{src: src, logger: logger, now: time.Now, downloadPath: defaultDownloadPath}
}

// WithDownloadPath sets the route prefix that archive links are built on,
// e.g. "/v1/backup/download" when the API is mounted under /v1.
func (s *BackupService) WithDownloadPath(path string) *BackupService {
	if path = strings.TrimRight(path, "/"); path != "" {
		s.downloadPath = path
	}
	return s
}

// EnableArchive wires the storage, signer and queue used by Archive.
func (s *BackupService) EnableArchive(files backupFileStorage, signer backupSigner, queue jobEnqueuer, metrics *MetricsService) {
	s.storage = files
	s.signer = signer
	s.queue = queue
	s.metrics = metrics
}

// ArchiveEnabled reports whether snapshots can be archived.
func (s *BackupService) ArchiveEnabled() bool {
	return s.storage != nil && s.signer != nil && s.queue != nil
}

// Export returns a versioned snapshot of every collection. Passwords are
// never part of the snapshot and every collection is present even when empty.
func (s *BackupService) Export(ctx context.Context) (*models.Backup, error) {
	users, err := s.src.Users.List(ctx, "")
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao exportar usuários")
	}
	units, err := s.src.Units.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao exportar unidades")
	}
	courses, err := s.src.Courses.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao exportar cursos")
	}
	classes, err := s.src.Classes.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao exportar turmas")
	}
	students, err := s.src.Students.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao exportar estudantes")
	}
	sessions, err := s.src.Attendance.List(ctx, models.AttendanceFilter{})
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao exportar chamadas")
	}
	records, err := s.src.Attendance.ListRecords(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao exportar presenças")
	}

	return &models.Backup{
		Timestamp: s.now().UTC(),
		Version:   models.BackupVersion,
		Data: models.BackupData{
			Users:      nonNil(users),
			Units:      nonNil(units),
			Courses:    nonNil(courses),
			Classes:    nonNil(classes),
			Students:   nonNil(students),
			Attendance: nonNil(sessions),
			Presence:   nonNil(records),
		},
	}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Archive schedules a snapshot to be written to storage and returns a signed
// download link for it. The file exists once the job has run.
func (s *BackupService) Archive(ctx context.Context) (*models.BackupArchive, error) {
	if !s.ArchiveEnabled() {
		return nil, appErrors.ErrArchiveNotAvailable
	}

	jobID := uuid.NewString()
	file := fmt.Sprintf("backup-%s-%s.json", s.now().UTC().Format("20060102T150405Z"), jobID[:8])
	token, expiresAt, err := s.signer.Generate(jobID, file)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao assinar link de download")
	}

	if err := s.queue.Enqueue(ctx, jobs.Job{ID: jobID, Type: BackupJobType, Payload: file}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "fila de backup indisponível")
	}
	logger.ForContext(ctx, s.logger).Info("backup archive queued", zap.String("job_id", jobID), zap.String("file", file))

	return &models.BackupArchive{
		JobID:       jobID,
		File:        file,
		DownloadURL: s.downloadPath + "/" + token,
		ExpiresAt:   expiresAt,
	}, nil
}

// HandleJob writes one archived snapshot. It is the queue handler for
// BackupJobType jobs.
func (s *BackupService) HandleJob(ctx context.Context, job jobs.Job) error {
	file, ok := job.Payload.(string)
	if !ok || file == "" {
		return fmt.Errorf("backup job %s: missing file name", job.ID)
	}

	err := s.writeSnapshot(ctx, file)
	s.metrics.RecordBackupJob(err)
	if err != nil {
		s.logger.Warn("backup archive failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
		return err
	}
	s.logger.Info("backup archive written", zap.String("job_id", job.ID), zap.String("file", file))
	return nil
}

func (s *BackupService) writeSnapshot(ctx context.Context, file string) error {
	backup, err := s.Export(ctx)
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if _, err := s.storage.Save(file, payload); err != nil {
		return fmt.Errorf("store backup: %w", err)
	}
	return nil
}

// Download resolves a signed token into the archived snapshot. Invalid,
// expired or not yet written archives are all reported as not found.
func (s *BackupService) Download(_ context.Context, token string) (*BackupDownload, error) {
	notFound := appErrors.Clone(appErrors.ErrNotFound, "Backup não encontrado ou link expirado")
	if !s.ArchiveEnabled() {
		return nil, notFound
	}
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, notFound
	}
	data, err := s.storage.Read(claims.Path)
	if err != nil {
		return nil, notFound
	}
	return &BackupDownload{Filename: claims.Path, Data: data}, nil
}
