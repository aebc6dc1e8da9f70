package httpapi

// Result 与前端约定的响应包： {"success": true, "data": ...}
// 出错时 success=false + error 文案，HTTP 状态码同步携带语义。
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func Fail(message string) Result[any] {
	return Result[any]{Success: false, Error: message}
}
