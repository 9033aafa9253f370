package serverutils

type Response[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type ErrorBody struct {
	Success   bool   `json:"success"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{Success: true, Code: 200, Message: message, Data: data}
}

func ErrorResponse(code int, message string) ErrorBody {
	return ErrorBody{Code: code, Message: message}
}
