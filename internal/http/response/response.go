// Package response формирует JSON-ответы HTTP-обработчиков в едином формате.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Response — стандартный ответ сервера.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — тело ответа с ошибкой, используется в аннотациях @Failure.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// Значения поля Status.
const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает ответ с ошибкой msg.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError переводит ошибки валидатора в одну строку через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "alphanum":
			msgs = append(msgs, fmt.Sprintf("field %s can contain only numbers and letters", err.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return ErrorResponse{
		Status: StatusError,
		Error:  strings.Join(msgs, ", "),
	}
}
