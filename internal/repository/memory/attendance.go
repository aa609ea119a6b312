package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/chamada-api/internal/models"
)

// AttendanceRepository is the in-memory attendance ledger.
type AttendanceRepository struct {
	s *Store
}

// Create appends the session and its flattened entries.
func (r *AttendanceRepository) Create(_ context.Context, session *models.AttendanceSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusClosed
	}

	records := make([]models.AttendanceRecord, 0, len(session.Entries))
	for _, studentID := range session.Entries.StudentIDs() {
		records = append(records, models.NewAttendanceRecord(uuid.NewString(), session.ID, studentID, session.Entries[studentID], session.CreatedAt))
	}

	stored := *session
	stored.Entries = nil

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions = append(r.s.sessions, stored)
	r.s.records = append(r.s.records, records...)
	return nil
}

// List returns matching sessions in insertion order with their entries.
func (r *AttendanceRepository) List(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.AttendanceSession, 0)
	index := make(map[string]int)
	for _, session := range r.s.sessions {
		if !filter.Matches(session) {
			continue
		}
		session.Entries = models.AttendanceData{}
		index[session.ID] = len(out)
		out = append(out, session)
	}
	for _, rec := range r.s.records {
		if i, ok := index[rec.AttendanceID]; ok {
			out[i].Entries[rec.StudentID] = rec.Entry()
		}
	}
	return out, nil
}

// ListRecords returns every stored entry, grouped by session in insertion order.
func (r *AttendanceRepository) ListRecords(_ context.Context) ([]models.AttendanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append(make([]models.AttendanceRecord, 0, len(r.s.records)), r.s.records...), nil
}

// CountByDate returns the number of sessions held on date (YYYY-MM-DD).
func (r *AttendanceRepository) CountByDate(_ context.Context, date string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := 0
	for _, session := range r.s.sessions {
		if session.Date == date {
			total++
		}
	}
	return total, nil
}
