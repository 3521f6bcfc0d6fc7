// Package sl содержит атрибуты slog, общие для всех сервисов.
package sl

import "log/slog"

// Err оборачивает ошибку в атрибут "error".
//
//	log.Error("failed to build unlock report", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}
