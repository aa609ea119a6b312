package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/chamada-api/internal/models"
)

const (
	sessionColumns = `id, class_id, date, start_time, end_time, instructor, class_observations, status, created_at`
	recordColumns  = `id, attendance_id, student_id, kind, status, present, justified, observation, certificate_url, certificate_name, created_at`
)

// AttendanceRepository persists roll call sessions and their entries.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create stores the session and one row per entry in a single transaction.
func (r *AttendanceRepository) Create(ctx context.Context, session *models.AttendanceSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusClosed
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const sessionQuery = `INSERT INTO attendance_sessions (` + sessionColumns + `)
VALUES (:id, :class_id, :date, :start_time, :end_time, :instructor, :class_observations, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, sessionQuery, session); err != nil {
		return mapConstraintError("insert attendance session", err)
	}

	const recordQuery = `INSERT INTO attendance_entries (` + recordColumns + `)
VALUES (:id, :attendance_id, :student_id, :kind, :status, :present, :justified, :observation, :certificate_url, :certificate_name, :created_at)`
	for _, studentID := range session.Entries.StudentIDs() {
		rec := models.NewAttendanceRecord(uuid.NewString(), session.ID, studentID, session.Entries[studentID], session.CreatedAt)
		if _, err := tx.NamedExecContext(ctx, recordQuery, rec); err != nil {
			return mapConstraintError("insert attendance entry", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance: %w", err)
	}
	committed = true
	return nil
}

// List returns matching sessions in insertion order with their entries.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSession, error) {
	var conditions []string
	var args []interface{}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)))
	}
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY seq ASC"

	sessions := make([]models.AttendanceSession, 0)
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance sessions: %w", err)
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	ids := make([]string, len(sessions))
	index := make(map[string]int, len(sessions))
	for i := range sessions {
		ids[i] = sessions[i].ID
		index[sessions[i].ID] = i
		sessions[i].Entries = models.AttendanceData{}
	}

	var records []models.AttendanceRecord
	const entriesQuery = `SELECT ` + recordColumns + ` FROM attendance_entries WHERE attendance_id = ANY($1) ORDER BY student_id ASC`
	if err := r.db.SelectContext(ctx, &records, entriesQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list attendance entries: %w", err)
	}
	for _, rec := range records {
		if i, ok := index[rec.AttendanceID]; ok {
			sessions[i].Entries[rec.StudentID] = rec.Entry()
		}
	}
	return sessions, nil
}

// ListRecords returns every stored entry, grouped by session in insertion order.
func (r *AttendanceRepository) ListRecords(ctx context.Context) ([]models.AttendanceRecord, error) {
	records := make([]models.AttendanceRecord, 0)
	const query = `SELECT e.id, e.attendance_id, e.student_id, e.kind, e.status, e.present, e.justified, e.observation, e.certificate_url, e.certificate_name, e.created_at
FROM attendance_entries e
JOIN attendance_sessions s ON s.id = e.attendance_id
ORDER BY s.seq ASC, e.student_id ASC`
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return records, nil
}

// CountByDate returns the number of sessions held on date (YYYY-MM-DD).
func (r *AttendanceRepository) CountByDate(ctx context.Context, date string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM attendance_sessions WHERE date = $1`, date); err != nil {
		return 0, fmt.Errorf("count attendance sessions: %w", err)
	}
	return total, nil
}
