package users

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewStore(gormDB, WithCost(bcrypt.MinCost)), mock
}

var userColumns = []string{"id", "username", "email", "password_hash", "skills", "created_at"}

func userRow(t *testing.T, password string) *sqlmock.Rows {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return sqlmock.NewRows(userColumns).
		AddRow(3, "alice", "alice@example.com", string(hash), `["go","python"]`, time.Now())
}

func TestStoreRegister(t *testing.T) {
	tests := []struct {
		name      string
		reg       Registration
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "new user",
			reg:  Registration{Username: " alice ", Email: "Alice@Example.com", Password: "correct horse", Skills: []string{"Python", "go", "python"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE username = $1 OR email = $2`)).
					WithArgs("alice", "alice@example.com").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
				mock.ExpectCommit()
			},
		},
		{
			name: "duplicate",
			reg:  Registration{Username: "alice", Email: "alice@example.com", Password: "correct horse"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users"`)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
			},
			wantErr: ErrUserExists,
		},
		{
			name:    "invalid email",
			reg:     Registration{Username: "alice", Email: "not-an-email", Password: "correct horse"},
			wantErr: ErrInvalidUser,
		},
		{
			name:    "short password",
			reg:     Registration{Username: "alice", Email: "alice@example.com", Password: "short"},
			wantErr: ErrInvalidUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := setupMockDB(t)
			if tt.setupMock != nil {
				tt.setupMock(mock)
			}

			u, err := store.Register(context.Background(), tt.reg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(7), u.ID)
				assert.Equal(t, "alice", u.Username)
				assert.Equal(t, "alice@example.com", u.Email)
				assert.Equal(t, []string{"go", "python"}, u.Skills)
				assert.NotEqual(t, tt.reg.Password, u.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(tt.reg.Password)))
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStoreRegisterDatabaseError(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users"`)).
		WillReturnError(errors.New("connection refused"))

	_, err := store.Register(context.Background(), Registration{Username: "alice", Email: "alice@example.com", Password: "correct horse"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserExists)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStoreAuthenticate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		rows     func(t *testing.T) *sqlmock.Rows
		wantErr  error
	}{
		{
			name:     "valid password",
			password: "correct horse",
			rows:     func(t *testing.T) *sqlmock.Rows { return userRow(t, "correct horse") },
		},
		{
			name:     "wrong password",
			password: "battery staple",
			rows:     func(t *testing.T) *sqlmock.Rows { return userRow(t, "correct horse") },
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			password: "correct horse",
			rows:     func(*testing.T) *sqlmock.Rows { return sqlmock.NewRows(userColumns) },
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := setupMockDB(t)
			mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
				WillReturnRows(tt.rows(t))

			u, err := store.Authenticate(context.Background(), "alice", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(3), u.ID)
				assert.Equal(t, []string{"go", "python"}, u.Skills)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStoreGet(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WillReturnRows(userRow(t, "correct horse"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	u, err := store.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = store.Get(context.Background(), 4)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpdate(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "skills"=$1 WHERE "id" = $2`)).
		WithArgs(`["go","python"]`, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WillReturnRows(userRow(t, "correct horse"))

	u, err := store.Update(context.Background(), 3, nil, []string{"Python", "Go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "python"}, u.Skills)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpdateMissingUser(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "username"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	name := "bob"
	_, err := store.Update(context.Background(), 9, &name, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUpdateRejectsBlankUsername(t *testing.T) {
	store, mock := setupMockDB(t)

	name := "  "
	_, err := store.Update(context.Background(), 3, &name, nil)
	assert.ErrorIs(t, err, ErrInvalidUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}
