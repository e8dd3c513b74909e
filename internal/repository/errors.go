package repository

import "errors"

var (
	// 対象行が無い（RowsAffected == 0 も含む）
	ErrNotFound = errors.New("not found")
	// 一意制約違反
	ErrDuplicate = errors.New("duplicate")
)
