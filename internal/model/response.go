package model

const (
	MessageSuccess = "Success"
	MessageError   = "Error"
)

// Response is the JSON envelope every endpoint writes.
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Error   *string     `json:"error,omitempty"`
	Message string      `json:"message"`
}

func NewDataResponse(data interface{}) Response {
	return Response{Data: data, Message: MessageSuccess}
}

func NewErrorResponse(errMsg, message string) Response {
	return Response{Error: &errMsg, Message: message}
}
