package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"user_service/internal/feature/users/domain"
	"user_service/internal/feature/users/domain/entity"
	"user_service/internal/feature/users/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
// A single connection keeps every statement, including transactions, on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(&UserModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

// seedUser creates a test user through the repository.
func seedUser(t *testing.T, repo *userPostgres, name, email string, age int) *entity.User {
	t.Helper()

	u := &entity.User{Name: name, Email: email, Age: age}
	require.NoError(t, repo.Create(context.Background(), u), "failed to seed user")
	return u
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&UserModel{}).Count(&n).Error)
	return n
}

func TestNewUserPostgres(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserPostgres(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserPostgres_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)

		before := time.Now().Add(-time.Second)
		user := &entity.User{Name: "Roman", Email: "email@gmail.com", Age: 26}

		err := repo.Create(context.Background(), user)

		require.NoError(t, err, "failed to create user")
		assert.NotZero(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
		assert.True(t, user.CreatedAt.After(before), "CreatedAt is before creation time")

		found, err := repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Roman", found.Name)
		assert.Equal(t, "email@gmail.com", found.Email)
		assert.Equal(t, 26, found.Age)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)
		seedUser(t, repo, "Roman", "email@gmail.com", 26)

		err := repo.Create(context.Background(), &entity.User{Name: "Ivan", Email: "email@gmail.com", Age: 20})

		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, int64(1), countUsers(t, db))
	})

	t.Run("emails differing only by case are distinct", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)
		seedUser(t, repo, "Roman", "email@gmail.com", 26)

		err := repo.Create(context.Background(), &entity.User{Name: "Ivan", Email: "Email@gmail.com", Age: 20})

		assert.NoError(t, err)
	})

	t.Run("nil user error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)

		err := repo.Create(context.Background(), nil)

		assert.Error(t, err, "should return error for nil user")
	})
}

func TestUserPostgres_FindByID(t *testing.T) {
	t.Run("find correct user when multiple users exist", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)

		seedUser(t, repo, "Ivan", "my@mail.com", 20)
		want := seedUser(t, repo, "Oleg", "oleg@gmail.com", 25)
		seedUser(t, repo, "Roman", "email@gmail.com", 26)

		found, err := repo.FindByID(context.Background(), want.ID)

		require.NoError(t, err)
		assert.Equal(t, want.ID, found.ID)
		assert.Equal(t, "Oleg", found.Name)
		assert.Equal(t, want.CreatedAt.Unix(), found.CreatedAt.Unix(), "CreatedAt does not match")
	})

	t.Run("ID not found error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)

		found, err := repo.FindByID(context.Background(), 999)

		assert.Nil(t, found)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserPostgres_FindAll(t *testing.T) {
	t.Run("returns all users ordered by id", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)

		a := seedUser(t, repo, "Ivan", "my@mail.com", 20)
		b := seedUser(t, repo, "Oleg", "oleg@gmail.com", 25)
		c := seedUser(t, repo, "Roman", "email@gmail.com", 26)

		users, err := repo.FindAll(context.Background())

		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, []int64{a.ID, b.ID, c.ID}, []int64{users[0].ID, users[1].ID, users[2].ID})
		assert.Equal(t, []string{"Ivan", "Oleg", "Roman"}, []string{users[0].Name, users[1].Name, users[2].Name})
	})

	t.Run("returns empty list when no users exist", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)

		users, err := repo.FindAll(context.Background())

		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func TestUserPostgres_Update(t *testing.T) {
	t.Run("updates mutable fields and keeps created_at", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)
		user := seedUser(t, repo, "Roman", "email@gmail.com", 26)
		createdAt := user.CreatedAt

		user.Email = "newEmail@gmail.com"
		user.Age = 27
		user.CreatedAt = createdAt.Add(48 * time.Hour)
		err := repo.Update(context.Background(), user)
		require.NoError(t, err)

		updated, err := repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "newEmail@gmail.com", updated.Email)
		assert.Equal(t, 27, updated.Age)
		assert.Equal(t, "Roman", updated.Name)
		assert.Equal(t, createdAt.Unix(), updated.CreatedAt.Unix(), "created_at must not change")
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)
		user := seedUser(t, repo, "Roman", "email@gmail.com", 26)
		seedUser(t, repo, "Ivan", "my@mail.com", 20)

		user.Email = "my@mail.com"
		err := repo.Update(context.Background(), user)

		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("missing user", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)

		err := repo.Update(context.Background(), &entity.User{ID: 999, Name: "Ghost", Email: "g@x.com", Age: 1})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserPostgres_Delete(t *testing.T) {
	t.Run("removes the row", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)
		user := seedUser(t, repo, "Roman", "email@gmail.com", 26)

		err := repo.Delete(context.Background(), user.ID)
		require.NoError(t, err)

		_, err = repo.FindByID(context.Background(), user.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Zero(t, countUsers(t, db))
	})

	t.Run("missing user", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)

		err := repo.Delete(context.Background(), 999)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserPostgres_ExistsByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserPostgres(db)
	roman := seedUser(t, repo, "Roman", "email@gmail.com", 26)
	ivan := seedUser(t, repo, "Ivan", "my@mail.com", 20)

	tests := []struct {
		name      string
		email     string
		excludeID int64
		want      bool
	}{
		{name: "taken by anyone", email: "email@gmail.com", excludeID: 0, want: true},
		{name: "taken by another user", email: "email@gmail.com", excludeID: ivan.ID, want: true},
		{name: "own email is not a conflict", email: "email@gmail.com", excludeID: roman.ID, want: false},
		{name: "free email", email: "free@gmail.com", excludeID: 0, want: false},
		{name: "case-sensitive match", email: "EMAIL@gmail.com", excludeID: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ExistsByEmail(context.Background(), tt.email, tt.excludeID)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserPostgres_Transaction(t *testing.T) {
	t.Run("rolls back on error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)
		errAbort := errors.New("abort")

		err := repo.Transaction(context.Background(), func(tx usecase.UserRepository) error {
			if err := tx.Create(context.Background(), &entity.User{Name: "Roman", Email: "email@gmail.com", Age: 26}); err != nil {
				return err
			}
			return errAbort
		})

		assert.ErrorIs(t, err, errAbort)
		assert.Zero(t, countUsers(t, db), "insert must be rolled back")
	})

	t.Run("commits on success", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserPostgres(db)

		err := repo.Transaction(context.Background(), func(tx usecase.UserRepository) error {
			return tx.Create(context.Background(), &entity.User{Name: "Roman", Email: "email@gmail.com", Age: 26})
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), countUsers(t, db))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "gorm duplicated key", err: gorm.ErrDuplicatedKey, want: true},
		{name: "postgres sqlstate 23505", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "postgres email constraint", err: &pgconn.PgError{Code: "XX000", ConstraintName: "users_email_key"}, want: true},
		{name: "other postgres error", err: &pgconn.PgError{Code: "23502"}, want: false},
		{name: "generic error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
