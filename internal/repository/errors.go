package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	//ロック待ち・デッドロック・直列化失敗。呼び出し側で再送してよい
	ErrConflict = errors.New("conflict")

	//一意制約違反
	ErrDuplicate = errors.New("duplicate")
)
