// Package entity はusersフィーチャーのドメインエンティティを定義します。
package entity

import "time"

const (
	// User.Age の下限と上限（両端を含む）
	MinAge = 0
	MaxAge = 150
)

// User は管理対象のユーザーを表します。
type User struct {
	// ID は作成時にストアが採番し、以後変わりません。
	// 0 は未保存を意味します。
	ID int64

	// 前後の空白を除いても空にならない
	Name string

	// 空にならず、全ユーザーで一意（大文字小文字を区別した完全一致）
	Email string

	// [MinAge, MaxAge] の範囲
	Age int

	// 登録時にストアが一度だけ設定する
	CreatedAt time.Time
}

// IsPersisted はストアが ID を採番済みかどうかを返します。
func (u *User) IsPersisted() bool {
	return u.ID > 0
}
