// Package memory is an in-process implementation of the repositories, used
// when STORAGE_DRIVER=memory and by the end-to-end handler tests.
package memory

import (
	"sync"

	"github.com/noah-isme/chamada-api/internal/models"
)

// Store holds every collection behind one mutex so that uniqueness and
// parent-reference checks are atomic with the write that depends on them.
type Store struct {
	mu       sync.RWMutex
	users    []models.User
	units    []models.Unit
	courses  []models.Course
	classes  []models.Class
	students []models.Student
	sessions []models.AttendanceSession
	records  []models.AttendanceRecord
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Users exposes the identity collection.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Units exposes the unit collection.
func (s *Store) Units() *UnitRepository { return &UnitRepository{s: s} }

// Courses exposes the course collection.
func (s *Store) Courses() *CourseRepository { return &CourseRepository{s: s} }

// Classes exposes the class collection.
func (s *Store) Classes() *ClassRepository { return &ClassRepository{s: s} }

// Students exposes the student collection.
func (s *Store) Students() *StudentRepository { return &StudentRepository{s: s} }

// Attendance exposes the attendance ledger.
func (s *Store) Attendance() *AttendanceRepository { return &AttendanceRepository{s: s} }

func (s *Store) unitIndex(id string) int {
	for i := range s.units {
		if s.units[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) courseIndex(id string) int {
	for i := range s.courses {
		if s.courses[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) classIndex(id string) int {
	for i := range s.classes {
		if s.classes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) userIndex(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}
