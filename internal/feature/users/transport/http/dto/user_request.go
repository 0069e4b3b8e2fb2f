// Package dto はusersフィーチャーのHTTPトランスポート層で使うDTOを定義します。
package dto

// CreateUserReq は POST /users のリクエストボディです。
// 年齢の未指定を "required" で弾きつつ 0 を有効にするため Age はポインタです。
type CreateUserReq struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Age   *int   `json:"age" binding:"required,min=0,max=150"`
}

// UpdateUserReq は PATCH /users/{id} のリクエストボディです。
// 省略したフィールドは変更されず、明示的な空文字列は拒否されます。
type UpdateUserReq struct {
	Name  *string `json:"name" binding:"omitempty,min=1"`
	Email *string `json:"email" binding:"omitempty,email"`
	Age   *int    `json:"age" binding:"omitempty,min=0,max=150"`
}
