package service

import (
	"context"
	"time"

	"github.com/noah-isme/chamada-api/internal/models"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

const dashboardStatsKey = "dashboard:stats"

type counter interface {
	Count(ctx context.Context) (int, error)
}

type activeStudentCounter interface {
	CountActive(ctx context.Context) (int, error)
}

type sessionDateCounter interface {
	CountByDate(ctx context.Context, date string) (int, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Units      counter
	Classes    counter
	Students   activeStudentCounter
	Attendance sessionDateCounter
	Cache      *CacheService
	CacheTTL   time.Duration
}

// DashboardService computes home screen counters.
type DashboardService struct {
	units      counter
	classes    counter
	students   activeStudentCounter
	attendance sessionDateCounter
	cache      *CacheService
	ttl        time.Duration
	now        func() time.Time
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DashboardService{
		units:      params.Units,
		classes:    params.Classes,
		students:   params.Students,
		attendance: params.Attendance,
		cache:      params.Cache,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Stats returns the counters, from cache when possible. The second return
// value reports a cache hit.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, bool, error) {
	stats, hit, err := remember(ctx, s.cache, dashboardStatsKey, s.ttl, s.compute)
	if err != nil {
		return nil, false, err
	}
	return &stats, hit, nil
}

func (s *DashboardService) compute(ctx context.Context) (models.DashboardStats, error) {
	units, err := s.units.Count(ctx)
	if err != nil {
		return models.DashboardStats{}, appErrors.Internal(err, "falha ao contar unidades")
	}
	classes, err := s.classes.Count(ctx)
	if err != nil {
		return models.DashboardStats{}, appErrors.Internal(err, "falha ao contar turmas")
	}
	students, err := s.students.CountActive(ctx)
	if err != nil {
		return models.DashboardStats{}, appErrors.Internal(err, "falha ao contar estudantes")
	}
	// "Today" is the UTC calendar date, the same day the web client stamps.
	today, err := s.attendance.CountByDate(ctx, s.now().UTC().Format("2006-01-02"))
	if err != nil {
		return models.DashboardStats{}, appErrors.Internal(err, "falha ao contar chamadas")
	}
	return models.DashboardStats{
		UnitsCount:      units,
		ClassesCount:    classes,
		StudentsCount:   students,
		TodayAttendance: today,
	}, nil
}

// Invalidate drops the cached counters.
func (s *DashboardService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, dashboardStatsKey)
}
