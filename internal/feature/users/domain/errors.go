// Package domain はusersフィーチャーのドメインエラーを定義します。
package domain

import "errors"

// ユーザー操作のエラー分類です。
// usecase 層が返すエラーは必ずこのいずれか1つをラップしているため、トランスポート層は errors.Is で判定できます。
var (
	// ErrValidation は入力が不正または範囲外であることを示します
	// （空の名前・メールアドレス、[0,150] 外の年齢、正でない ID）。
	// 永続化層へのアクセス前に必ず返されます。
	ErrValidation = errors.New("validation failed")

	// ErrNotFound は指定 ID のユーザーが存在しないことを示します。
	ErrNotFound = errors.New("user not found")

	// ErrConflict はメールアドレスが他のユーザーに使用されていることを示します。
	// 書き込み前のチェックと一意制約違反の両方で返されます。
	ErrConflict = errors.New("email already in use")

	// ErrInfrastructure はストアの障害（接続、トランザクション、想定外の SQL エラー）を示します。
	// 詳細はログ専用で、クライアントには返しません。
	ErrInfrastructure = errors.New("storage failure")
)
