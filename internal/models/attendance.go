package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// SessionStatusClosed is stored on every submitted session.
const SessionStatusClosed = "closed"

// EntryKind identifies which historical shape an entry was submitted in.
type EntryKind string

const (
	EntryKindLegacy   EntryKind = "legacy"
	EntryKindEnhanced EntryKind = "enhanced"
)

// LegacyStatus is the single-field attendance mark used by older clients.
type LegacyStatus string

const (
	LegacyPresent   LegacyStatus = "presente"
	LegacyAbsent    LegacyStatus = "falta"
	LegacyJustified LegacyStatus = "justificada"
)

// Valid reports whether s is a known legacy mark.
func (s LegacyStatus) Valid() bool {
	switch s {
	case LegacyPresent, LegacyAbsent, LegacyJustified:
		return true
	default:
		return false
	}
}

// Display labels used in reports.
const (
	DisplayPresent   = "Presente"
	DisplayJustified = "Justificada"
	DisplayAbsent    = "Falta"
)

// AttendanceEntry is one student's mark inside a session. It is either a
// LegacyEntry or an EnhancedEntry.
type AttendanceEntry interface {
	Kind() EntryKind
	// DisplayStatus maps the entry to Presente, Justificada or Falta.
	DisplayStatus() string
	Note() string
}

// LegacyEntry is the {status, observation} shape.
type LegacyEntry struct {
	Status      LegacyStatus `json:"status"`
	Observation string       `json:"observation"`
}

func (LegacyEntry) Kind() EntryKind { return EntryKindLegacy }

func (e LegacyEntry) DisplayStatus() string {
	switch e.Status {
	case LegacyPresent:
		return DisplayPresent
	case LegacyJustified:
		return DisplayJustified
	default:
		return DisplayAbsent
	}
}

func (e LegacyEntry) Note() string { return e.Observation }

// Certificate references a medical or justification document.
type Certificate struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// EnhancedEntry is the {present, justified, observation, certificate} shape.
type EnhancedEntry struct {
	Present     bool         `json:"present"`
	Justified   bool         `json:"justified"`
	Observation string       `json:"observation"`
	Certificate *Certificate `json:"certificate,omitempty"`
}

func (EnhancedEntry) Kind() EntryKind { return EntryKindEnhanced }

func (e EnhancedEntry) DisplayStatus() string {
	switch {
	case e.Present:
		return DisplayPresent
	case e.Justified:
		return DisplayJustified
	default:
		return DisplayAbsent
	}
}

func (e EnhancedEntry) Note() string { return e.Observation }

// AttendanceData maps student IDs to their entry for one session.
type AttendanceData map[string]AttendanceEntry

// UnmarshalJSON accepts both entry shapes. An object carrying a "status" key
// is legacy; any other object is enhanced.
func (d *AttendanceData) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("attendanceData must be an object: %w", err)
	}
	out := make(AttendanceData, len(raw))
	for studentID, value := range raw {
		entry, err := decodeEntry(value)
		if err != nil {
			return fmt.Errorf("attendance entry %q: %w", studentID, err)
		}
		out[studentID] = entry
	}
	*d = out
	return nil
}

func decodeEntry(value json.RawMessage) (AttendanceEntry, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(value, &probe); err != nil || probe == nil {
		return nil, fmt.Errorf("entry must be an object")
	}
	if _, ok := probe["status"]; ok {
		var legacy LegacyEntry
		if err := json.Unmarshal(value, &legacy); err != nil {
			return nil, err
		}
		if !legacy.Status.Valid() {
			return nil, fmt.Errorf("unknown status %q", legacy.Status)
		}
		return legacy, nil
	}
	var enhanced EnhancedEntry
	if err := json.Unmarshal(value, &enhanced); err != nil {
		return nil, err
	}
	if enhanced.Certificate != nil && enhanced.Certificate.URL == "" && enhanced.Certificate.Name == "" {
		enhanced.Certificate = nil
	}
	return enhanced, nil
}

// StudentIDs returns the keys in ascending order.
func (d AttendanceData) StudentIDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AttendanceSession is one submitted roll call for a class on a date.
type AttendanceSession struct {
	ID                string         `db:"id" json:"id"`
	ClassID           string         `db:"class_id" json:"class_id"`
	Date              string         `db:"date" json:"date"`
	StartTime         string         `db:"start_time" json:"start_time"`
	EndTime           string         `db:"end_time" json:"end_time"`
	Instructor        string         `db:"instructor" json:"instructor"`
	ClassObservations string         `db:"class_observations" json:"class_observations"`
	Status            string         `db:"status" json:"status"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	Entries           AttendanceData `db:"-" json:"attendance_data,omitempty"`
}

// AttendanceRecord is the flattened, storable form of one entry. Legacy rows
// keep their status verbatim; Present and Justified are derived from it.
type AttendanceRecord struct {
	ID              string    `db:"id" json:"id"`
	AttendanceID    string    `db:"attendance_id" json:"attendance_id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	Kind            EntryKind `db:"kind" json:"kind"`
	Status          *string   `db:"status" json:"status,omitempty"`
	Present         bool      `db:"present" json:"present"`
	Justified       bool      `db:"justified" json:"justified"`
	Observation     string    `db:"observation" json:"observation"`
	CertificateURL  *string   `db:"certificate_url" json:"certificate_url"`
	CertificateName *string   `db:"certificate_name" json:"certificate_name"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// NewAttendanceRecord flattens entry for storage.
func NewAttendanceRecord(id, attendanceID, studentID string, entry AttendanceEntry, createdAt time.Time) AttendanceRecord {
	rec := AttendanceRecord{
		ID:           id,
		AttendanceID: attendanceID,
		StudentID:    studentID,
		Kind:         entry.Kind(),
		Observation:  entry.Note(),
		CreatedAt:    createdAt,
	}
	switch e := entry.(type) {
	case LegacyEntry:
		status := string(e.Status)
		rec.Status = &status
		rec.Present = e.Status == LegacyPresent
		rec.Justified = e.Status == LegacyJustified
	case EnhancedEntry:
		rec.Present = e.Present
		rec.Justified = e.Justified
		if e.Certificate != nil {
			url, name := e.Certificate.URL, e.Certificate.Name
			rec.CertificateURL = &url
			rec.CertificateName = &name
		}
	}
	return rec
}

// Entry rebuilds the submitted variant from a stored record.
func (r AttendanceRecord) Entry() AttendanceEntry {
	if r.Kind == EntryKindLegacy && r.Status != nil {
		return LegacyEntry{Status: LegacyStatus(*r.Status), Observation: r.Observation}
	}
	entry := EnhancedEntry{Present: r.Present, Justified: r.Justified, Observation: r.Observation}
	if r.CertificateURL != nil || r.CertificateName != nil {
		entry.Certificate = &Certificate{}
		if r.CertificateURL != nil {
			entry.Certificate.URL = *r.CertificateURL
		}
		if r.CertificateName != nil {
			entry.Certificate.Name = *r.CertificateName
		}
	}
	return entry
}

// SaveAttendanceRequest is the payload of a roll call submission.
type SaveAttendanceRequest struct {
	ClassID           string         `json:"classId" validate:"required"`
	Date              string         `json:"date" validate:"required"`
	StartTime         string         `json:"startTime"`
	EndTime           string         `json:"endTime"`
	Instructor        string         `json:"instructor"`
	ClassObservations string         `json:"classObservations"`
	AttendanceData    AttendanceData `json:"attendanceData" validate:"required"`
}

// SaveAttendanceResponse acknowledges a stored session.
type SaveAttendanceResponse struct {
	Message      string `json:"message"`
	AttendanceID string `json:"attendanceId"`
	RecordsCount int    `json:"recordsCount"`
}

// AttendanceFilter narrows session listings. Empty fields match everything;
// dates compare as YYYY-MM-DD strings.
type AttendanceFilter struct {
	ClassID  string `json:"class_id" form:"classId"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

// Matches reports whether s passes the filter.
func (f AttendanceFilter) Matches(s AttendanceSession) bool {
	if f.ClassID != "" && s.ClassID != f.ClassID {
		return false
	}
	if f.DateFrom != "" && s.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && s.Date > f.DateTo {
		return false
	}
	return true
}
