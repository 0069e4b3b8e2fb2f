package adapters

import (
	"time"

	"user_service/internal/feature/users/domain/entity"
)

// emailUniqueIndex は users.email の一意インデックス名です。
// PostgreSQL が "email UNIQUE" に対して生成する制約名と一致させています。
const emailUniqueIndex = "users_email_key"

// UserModel は users テーブルの GORM モデルです。
type UserModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"size:255;not null"`
	Email string `gorm:"size:255;not null;uniqueIndex:users_email_key"`
	Age   int    `gorm:"not null"`
	// created_at は登録時のみ書き込む
	CreatedAt time.Time `gorm:"not null;autoCreateTime;<-:create"`
}

// TableName は GORM が使用するテーブル名を返します。
func (UserModel) TableName() string {
	return "users"
}

// ToEntity は GORM モデルをドメインエンティティに変換します。
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Age:       m.Age,
		CreatedAt: m.CreatedAt,
	}
}

// UserModelFromEntity はドメインエンティティを GORM モデルに変換します。
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
	}
}
