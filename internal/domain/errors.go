package domain

import "errors"

// 错误分类：handler 层据此映射 HTTP 状态码
// ErrValidation -> 400, ErrConflict -> 409, ErrNotFound -> 404
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)
