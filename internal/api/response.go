package api

const (
	CodeInvalidCoordinates = "INVALID_COORDINATES"
	CodeNotFound           = "NOT_FOUND"
	CodeStorageError       = "STORAGE_ERROR"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

func ErrorResponse(message, code string) Response {
	return Response{
		Success: false,
		Error:   message,
		Code:    code,
	}
}
