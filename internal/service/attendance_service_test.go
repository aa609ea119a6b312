package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository/memory"
)

func decodeAttendance(t *testing.T, raw string) models.SaveAttendanceRequest {
	t.Helper()
	var req models.SaveAttendanceRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	return req
}

func TestAttendanceSaveCountsEveryEntry(t *testing.T) {
	store := memory.New()
	stats := &countingInvalidator{}
	svc := NewAttendanceService(store.Attendance(), stats, nil, zap.NewNop()).WithMetrics(NewMetricsService())
	ctx := context.Background()

	legacy := decodeAttendance(t, `{"classId":"c1","date":"2025-03-10","attendanceData":{
		"s1":{"status":"presente"},"s2":{"status":"falta","observation":"doente"},"s3":{"status":"justificada"}}}`)
	resp, err := svc.Save(ctx, legacy)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.RecordsCount)
	assert.Equal(t, "Chamada salva com sucesso", resp.Message)
	assert.NotEmpty(t, resp.AttendanceID)

	enhanced := decodeAttendance(t, `{"classId":"c1","date":"2025-03-10","instructor":"João","attendanceData":{
		"s1":{"present":true},"s2":{"present":false,"justified":true,"certificate":{"url":"https://x/a.pdf","name":"a.pdf"}}}}`)
	resp2, err := svc.Save(ctx, enhanced)
	require.NoError(t, err)
	assert.Equal(t, 2, resp2.RecordsCount)
	assert.NotEqual(t, resp.AttendanceID, resp2.AttendanceID)
	assert.Equal(t, 2, stats.calls)

	history, err := svc.History(ctx, models.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, resp.AttendanceID, history[0].ID)
	assert.Len(t, history[0].Entries, 3)
	assert.Equal(t, models.DisplayJustified, history[1].Entries["s2"].DisplayStatus())
}

func TestAttendanceSaveRejectsIncompletePayload(t *testing.T) {
	svc := NewAttendanceService(memory.New().Attendance(), nil, nil, zap.NewNop())

	_, err := svc.Save(context.Background(), models.SaveAttendanceRequest{ClassID: "c1", Date: "2025-03-10"})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, msgAttendanceIncomplete, appErr.Message)

	_, err = svc.Save(context.Background(), models.SaveAttendanceRequest{Date: "2025-03-10", AttendanceData: models.AttendanceData{}})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestAttendanceHistoryFiltersByClass(t *testing.T) {
	store := memory.New()
	svc := NewAttendanceService(store.Attendance(), nil, nil, zap.NewNop())
	ctx := context.Background()

	for _, classID := range []string{"c1", "c2", "c1"} {
		_, err := svc.Save(ctx, models.SaveAttendanceRequest{
			ClassID: classID, Date: "2025-03-10",
			AttendanceData: models.AttendanceData{"s1": models.EnhancedEntry{Present: true}},
		})
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, models.AttendanceFilter{ClassID: "c1"})
	require.NoError(t, err)
	assert.Len(t, history, 2)

	empty, err := svc.History(ctx, models.AttendanceFilter{ClassID: "unknown"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
