package dto

import (
	"time"

	"user_service/internal/feature/users/domain/entity"
)

// UserResponse はユーザーのレスポンスDTOです。
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse はusersの全エンドポイントが返すエラーボディです。
type ErrorResponse struct {
	Message string `json:"message"`
}

// NewUserResponse はドメインのユーザーをレスポンスDTOに変換します。
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserListResponse はユーザー一覧をレスポンスDTOに変換します。戻り値が nil になることはありません。
func NewUserListResponse(users []entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
