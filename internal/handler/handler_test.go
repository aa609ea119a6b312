package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chamada-api/internal/middleware"
	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/service"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func withClaims(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID})
		c.Next()
	}
}

type fakeAuth struct {
	login     *models.LoginResponse
	loginErr  error
	changed   string
	changeReq models.ChangePasswordRequest
}

func (f *fakeAuth) Login(context.Context, models.LoginRequest) (*models.LoginResponse, error) {
	return f.login, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, req models.CreateUserRequest) (*models.UserResponse, error) {
	return &models.UserResponse{User: &models.User{Name: req.Name}, Message: "ok"}, nil
}

func (f *fakeAuth) RequestReset(context.Context, models.ResetPasswordRequest) (*models.ResetPasswordResponse, error) {
	return &models.ResetPasswordResponse{}, nil
}

func (f *fakeAuth) ChangePassword(_ context.Context, userID string, req models.ChangePasswordRequest) error {
	f.changed = userID
	f.changeReq = req
	return nil
}

func (f *fakeAuth) Me(_ context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	svc := &fakeAuth{loginErr: appErrors.Clone(appErrors.ErrInvalidCredentials, "Credenciais inválidas ou usuário não aprovado")}
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/login", h.Login)

	rec := doRequest(r, http.MethodPost, "/login", models.LoginRequest{Email: "a@b.com", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Credenciais inválidas ou usuário não aprovado", decode(t, rec)["error"])

	rec = doRequest(r, http.MethodPost, "/login", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.loginErr = nil
	svc.login = &models.LoginResponse{Token: "tok", User: &models.User{ID: "u1"}}
	rec = doRequest(r, http.MethodPost, "/login", models.LoginRequest{Email: "a@b.com", Password: "x"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", decode(t, rec)["token"])
}

func TestAuthHandlerChangePasswordUsesClaims(t *testing.T) {
	svc := &fakeAuth{}
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/anon", h.ChangePassword)
	r.POST("/me/password", withClaims("u42"), h.ChangePassword)
	r.GET("/me", withClaims("u42"), h.Me)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodPost, "/anon", gin.H{"new_password": "abcdef"}).Code)

	rec := doRequest(r, http.MethodPost, "/me/password", gin.H{"old_password": "x", "new_password": "abcdef"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Senha alterada com sucesso", decode(t, rec)["message"])
	assert.Equal(t, "u42", svc.changed)
	assert.Equal(t, "abcdef", svc.changeReq.NewPassword)

	rec = doRequest(r, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "u42", user["id"])
}

type fakeUsers struct {
	users    []models.User
	approved string
	err      error
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	return f.users, f.err
}

func (f *fakeUsers) ListPending(context.Context) ([]models.User, error) {
	return []models.User{}, f.err
}

func (f *fakeUsers) Create(_ context.Context, req models.CreateUserRequest, status models.UserStatus) (*models.User, error) {
	return &models.User{ID: "new", Name: req.Name, Status: status}, f.err
}

func (f *fakeUsers) Approve(_ context.Context, id string) error {
	f.approved = id
	return f.err
}

func (f *fakeUsers) Reject(context.Context, string) error {
	return f.err
}

func (f *fakeUsers) Update(context.Context, string, models.UpdateUserRequest) error {
	return f.err
}

func (f *fakeUsers) Delete(context.Context, string) error {
	return f.err
}

func TestUserHandlerRoutes(t *testing.T) {
	svc := &fakeUsers{users: []models.User{{ID: "u1"}}}
	h := NewUserHandler(svc)
	r := gin.New()
	r.GET("/users", h.List)
	r.POST("/users", h.Create)
	r.POST("/users/approve/:id", h.Approve)
	r.DELETE("/users/:id", h.Delete)

	rec := doRequest(r, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["users"], 1)

	rec = doRequest(r, http.MethodPost, "/users", models.CreateUserRequest{Name: "Ana", Email: "a@b.com", CPF: "1", Password: "123456", Role: models.RoleAdmin})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Usuário criado com sucesso", body["message"])
	assert.Equal(t, string(models.UserStatusApproved), body["user"].(map[string]interface{})["status"])

	rec = doRequest(r, http.MethodPost, "/users/approve/u9", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u9", svc.approved)

	svc.err = appErrors.Clone(appErrors.ErrNotFound, "Usuário não encontrado")
	rec = doRequest(r, http.MethodDelete, "/users/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Usuário não encontrado", decode(t, rec)["error"])
}

type fakeStudents struct {
	byClass map[string][]models.Student
}

func (f *fakeStudents) List(context.Context) ([]models.Student, error) {
	return []models.Student{}, nil
}

func (f *fakeStudents) ListByClass(_ context.Context, classID string) ([]models.Student, error) {
	if s, ok := f.byClass[classID]; ok {
		return s, nil
	}
	return []models.Student{}, nil
}
func (f *fakeStudents) Create(_ context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	return &models.Student{ID: "s1", Name: req.Name}, nil
}

func TestClassStudentsUnknownClassIsEmptyList(t *testing.T) {
	h := NewClassHandler(nil, &fakeStudents{byClass: map[string][]models.Student{"c1": {{ID: "s1"}}}})
	r := gin.New()
	r.GET("/classes/:id/students", h.Students)

	rec := doRequest(r, http.MethodGet, "/classes/nope/students", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"students":[]}`, rec.Body.String())

	rec = doRequest(r, http.MethodGet, "/classes/c1/students", nil)
	assert.Len(t, decode(t, rec)["students"], 1)
}

type fakeAttendance struct {
	filter models.AttendanceFilter
}

func (f *fakeAttendance) Save(_ context.Context, req models.SaveAttendanceRequest) (*models.SaveAttendanceResponse, error) {
	return &models.SaveAttendanceResponse{Message: "Chamada salva com sucesso", AttendanceID: "a1"}, nil
}

func (f *fakeAttendance) History(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceSession, error) {
	f.filter = filter
	return []models.AttendanceSession{}, nil
}

func TestAttendanceHandlerPassesQueryFilter(t *testing.T) {
	svc := &fakeAttendance{}
	h := NewAttendanceHandler(svc)
	r := gin.New()
	r.GET("/attendance", h.List)
	r.POST("/attendance", h.Save)

	rec := doRequest(r, http.MethodGet, "/attendance?classId=c1&dateFrom=2025-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"attendance":[]}`, rec.Body.String())
	assert.Equal(t, "c1", svc.filter.ClassID)
	assert.Equal(t, "2025-01-01", svc.filter.DateFrom)

	rec = doRequest(r, http.MethodPost, "/attendance", "[]")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgAttendanceIncomplete, decode(t, rec)["error"])
}

type fakeDashboard struct{ hit bool }

func (f fakeDashboard) Stats(context.Context) (*models.DashboardStats, bool, error) {
	return &models.DashboardStats{UnitsCount: 2}, f.hit, nil
}

func TestDashboardHandlerReportsCacheState(t *testing.T) {
	r := gin.New()
	r.GET("/miss", NewDashboardHandler(fakeDashboard{}).Stats)
	r.GET("/hit", NewDashboardHandler(fakeDashboard{hit: true}).Stats)

	rec := doRequest(r, http.MethodGet, "/miss", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.EqualValues(t, 2, decode(t, rec)["unitsCount"])
	assert.Equal(t, "HIT", doRequest(r, http.MethodGet, "/hit", nil).Header().Get("X-Cache"))
}

type fakeReports struct {
	format service.ReportFormat
	filter models.AttendanceFilter
}

func (f *fakeReports) Generate(_ context.Context, filter models.AttendanceFilter, format service.ReportFormat) (*service.Report, error) {
	f.format = format
	f.filter = filter
	return &service.Report{Filename: "relatorio-frequencia.csv", ContentType: "text/csv", Data: []byte("Data\n")}, nil
}

func TestReportHandlerGenerate(t *testing.T) {
	svc := &fakeReports{}
	r := gin.New()
	r.POST("/reports/generate", NewReportHandler(svc).Generate)

	req := httptest.NewRequest(http.MethodPost, "/reports/generate", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, service.ReportFormatCSV, svc.format)

	rec = doRequest(r, http.MethodPost, "/reports/generate?format=pdf", models.AttendanceFilter{ClassID: "c1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ReportFormatPDF, svc.format)
	assert.Equal(t, "c1", svc.filter.ClassID)

	rec = doRequest(r, http.MethodPost, "/reports/generate?format=xls", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeBackup struct {
	archiveErr error
}

func (f fakeBackup) Export(context.Context) (*models.Backup, error) {
	return &models.Backup{Version: models.BackupVersion}, nil
}

func (f fakeBackup) Archive(context.Context) (*models.BackupArchive, error) {
	if f.archiveErr != nil {
		return nil, f.archiveErr
	}
	return &models.BackupArchive{JobID: "j1"}, nil
}

func (f fakeBackup) Download(_ context.Context, token string) (*service.BackupDownload, error) {
	if token != "ok" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Backup não encontrado ou link expirado")
	}
	return &service.BackupDownload{Filename: "backup.json", Data: []byte("{}")}, nil
}

func TestBackupHandler(t *testing.T) {
	h := NewBackupHandler(fakeBackup{})
	r := gin.New()
	r.GET("/backup/export", h.Export)
	r.POST("/backup/archive", h.Archive)
	r.GET("/backup/download/:token", h.Download)
	r.POST("/disabled", NewBackupHandler(fakeBackup{archiveErr: appErrors.ErrArchiveNotAvailable}).Archive)

	rec := doRequest(r, http.MethodGet, "/backup/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	backup := decode(t, rec)["backup"].(map[string]interface{})
	assert.Equal(t, models.BackupVersion, backup["version"])

	assert.Equal(t, http.StatusAccepted, doRequest(r, http.MethodPost, "/backup/archive", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(r, http.MethodPost, "/disabled", nil).Code)

	rec = doRequest(r, http.MethodGet, "/backup/download/ok", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodGet, "/backup/download/bad", nil).Code)
}

type downPinger struct{}

func (downPinger) PingContext(context.Context) error { return errors.New("down") }

func TestHealthHandlerReady(t *testing.T) {
	r := gin.New()
	r.GET("/ready", NewHealthHandler(nil, nil).Ready)
	r.GET("/down", NewHealthHandler(nil, downPinger{}).Ready)
	r.GET("/", NewHealthHandler(nil, nil).Root)

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/ready", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(r, http.MethodGet, "/down", nil).Code)
	assert.Equal(t, "Sistema de Chamada - IOS API", decode(t, doRequest(r, http.MethodGet, "/", nil))["message"])
}
