package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// 一意制約違反（pg 23505）
	ErrDuplicate = errors.New("duplicate key")

	// versionが一致しない（他で更新済み）
	ErrStaleVersion = errors.New("stale version")
)
