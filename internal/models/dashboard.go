package models

// DashboardStats are the counters shown on the home screen.
type DashboardStats struct {
	UnitsCount      int `json:"unitsCount"`
	ClassesCount    int `json:"classesCount"`
	StudentsCount   int `json:"studentsCount"`
	TodayAttendance int `json:"todayAttendance"`
}
