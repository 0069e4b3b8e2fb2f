// Package adapters はusersフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"user_service/internal/feature/users/domain"
	"user_service/internal/feature/users/domain/entity"
	"user_service/internal/feature/users/usecase"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
const pgUniqueViolation = "23505"

// userPostgres はUserRepositoryインターフェースのGORM実装です。
// 本番ではPostgreSQL、ローカル開発とテストではSQLiteで動作します。
type userPostgres struct {
	db *gorm.DB
}

// userPostgresがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userPostgres)(nil)

// NewUserPostgres は指定されたgorm.DB接続でuserPostgresの新しいインスタンスを生成します。
func NewUserPostgres(db *gorm.DB) *userPostgres {
	return &userPostgres{db: db}
}

// Create はユーザーを追加し、採番されたIDとCreatedAtをエンティティに反映します。
// メールアドレスの一意制約違反はdomain.ErrConflictとして返します。
func (r *userPostgres) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user must not be nil")
	}
	slog.Debug("saving user", "name", u.Name, "email", u.Email)

	model := UserModelFromEntity(u)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrConflict, u.Email)
		}
		slog.Error("failed to save user", "name", u.Name, "email", u.Email, "error", err)
		return err
	}
	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	return nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、domain.ErrNotFoundを返します。
func (r *userPostgres) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
		}
		slog.Error("failed to find user", "id", id, "error", err)
		return nil, err
	}
	return m.ToEntity(), nil
}

// FindAll はID昇順ですべてのユーザーを返します。
func (r *userPostgres) FindAll(ctx context.Context) ([]entity.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		slog.Error("failed to list users", "error", err)
		return nil, err
	}

	users := make([]entity.User, len(models))
	for i := range models {
		users[i] = *models[i].ToEntity()
	}
	return users, nil
}

// Update は名前・メールアドレス・年齢のみを更新します。IDとcreated_atは変更しません。
// 対象が存在しない場合はdomain.ErrNotFound、メールアドレス重複はdomain.ErrConflictを返します。
func (r *userPostgres) Update(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user must not be nil")
	}
	slog.Debug("updating user", "id", u.ID, "name", u.Name)

	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", u.ID).
		Select("name", "email", "age").
		Updates(map[string]any{
			"name":  u.Name,
			"email": u.Email,
			"age":   u.Age,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return fmt.Errorf("%w: %s", domain.ErrConflict, u.Email)
		}
		slog.Error("failed to update user", "id", u.ID, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, u.ID)
	}
	return nil
}

// Delete はIDでユーザーを物理削除します。
func (r *userPostgres) Delete(ctx context.Context, id int64) error {
	slog.Debug("deleting user", "id", id)

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{})
	if result.Error != nil {
		slog.Error("failed to delete user", "id", id, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return nil
}

// ExistsByEmail はexcludeID以外のユーザーが同じメールアドレスを使用しているかを返します。
// 比較は大文字小文字を区別する完全一致です。
func (r *userPostgres) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&UserModel{}).Where("email = ?", email)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Transaction はfnを単一のトランザクション内で実行します。
// fnがエラーを返すかpanicした場合はロールバックされます。
func (r *userPostgres) Transaction(ctx context.Context, fn func(repo usecase.UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&userPostgres{db: tx})
	})
}

// isUniqueViolation はerrがメールアドレスの一意制約違反かどうかを判定します。
// TranslateError有効時のgorm.ErrDuplicatedKeyと、PostgreSQLのpgconn.PgErrorの両方を扱います。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation || pgErr.ConstraintName == emailUniqueIndex
	}
	return false
}
