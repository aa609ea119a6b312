package models

import "time"

// BackupVersion tags the snapshot schema.
const BackupVersion = "1.0"

// BackupData holds every collection. Slices are never nil so each key is
// always serialized as an array.
type BackupData struct {
	Users      []User              `json:"users"`
	Units      []Unit              `json:"units"`
	Courses    []Course            `json:"courses"`
	Classes    []Class             `json:"classes"`
	Students   []Student           `json:"students"`
	Attendance []AttendanceSession `json:"attendance"`
	Presence   []AttendanceRecord  `json:"presence"`
}

// Backup is a full point-in-time export.
type Backup struct {
	Timestamp time.Time  `json:"timestamp"`
	Version   string     `json:"version"`
	Data      BackupData `json:"data"`
}

// BackupArchive describes a snapshot scheduled for writing to storage.
type BackupArchive struct {
	JobID       string    `json:"job_id"`
	File        string    `json:"file"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
