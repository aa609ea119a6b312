package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chamada-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var userRowColumns = []string{"id", "name", "email", "cpf", "password_hash", "role", "status", "unit_id", "unit", "password_reset", "created_at", "updated_at", "approved_at"}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u1", "Ana", "ana@ios.org.br", "12345678900", "hash", "instrutor", "approved", nil, nil, false, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("ana@ios.org.br").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "ana@ios.org.br")
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, user.Role)
	assert.Equal(t, models.UserStatusApproved, user.Status)
	assert.Nil(t, user.UnitID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u1", "Ana", "ana@ios.org.br", "1", "hash", "admin", "pending", "unit-1", "Centro", false, now, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE status = $1 ORDER BY seq ASC")).
		WithArgs("pending").
		WillReturnRows(rows)

	users, err := repo.List(context.Background(), models.UserStatusPending)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].Unit)
	assert.Equal(t, "Centro", *users[0].Unit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListAllIsNeverNil(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY seq ASC")).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	users, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserRepositoryCreateMapsDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_cpf_key"})

	user := &models.User{Name: "Ana", Email: "ana@ios.org.br", CPF: "1", Role: models.RoleAdmin, Status: models.UserStatusPending}
	err := repo.Create(context.Background(), user)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryApprove(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET status = $2, approved_at = COALESCE(approved_at, $3)")).
		WithArgs("u1", "approved", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET status = $2")).
		WithArgs("ghost", "approved", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Approve(context.Background(), "u1", now))
	assert.ErrorIs(t, repo.Approve(context.Background(), "ghost", now), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdatePasswordAndDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $2, password_reset = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("u1", "newhash", true, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdatePassword(context.Background(), "u1", "newhash", true, now))
	assert.ErrorIs(t, repo.Delete(context.Background(), "u1"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryConsumeTemporaryPasswordIsConditional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	query := regexp.QuoteMeta("UPDATE users SET password_hash = '', updated_at = $3 WHERE id = $1 AND password_hash = $2 AND password_reset")
	mock.ExpectExec(query).WithArgs("u1", "temphash", now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("u1", "temphash", now).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.ConsumeTemporaryPassword(context.Background(), "u1", "temphash", now))
	assert.ErrorIs(t, repo.ConsumeTemporaryPassword(context.Background(), "u1", "temphash", now), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
