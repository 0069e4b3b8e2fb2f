package usecase

import (
	"context"

	"user_service/internal/feature/users/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
//
// 実装は行が存在しない場合に domain.ErrNotFound を、メールアドレスの一意制約違反で domain.ErrConflict を返します。
// それ以外のエラーは基盤エラーとして扱われます。
type UserRepository interface {
	// Create はユーザーを追加し、採番された ID と CreatedAt をエンティティに設定します。
	Create(ctx context.Context, user *entity.User) error

	// FindByID は指定 ID のユーザーを取得します。
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// FindAll は全ユーザーを ID 順に返します。
	FindAll(ctx context.Context) ([]entity.User, error)

	// Update は既存ユーザーの名前・メールアドレス・年齢を保存します。ID と CreatedAt は書き込みません。
	Update(ctx context.Context, user *entity.User) error

	// Delete は指定 ID のユーザーを物理削除します。
	Delete(ctx context.Context, id int64) error

	// ExistsByEmail は excludeID 以外のユーザーが email を使用しているかを返します。
	// excludeID に 0 を渡すと全ユーザーと照合します。
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)

	// Transaction は fn を単一のトランザクション内で実行します。
	// fn は引数で受け取ったリポジトリのみを使用してください。
	Transaction(ctx context.Context, fn func(repo UserRepository) error) error
}
