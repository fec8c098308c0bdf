// Package sl содержит общие атрибуты для логгера slog.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to refresh entitlement", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// UserID атрибут идентификатора пользователя. Пустой идентификатор пишется как "anonymous".
func UserID(id string) slog.Attr {
	if id == "" {
		id = "anonymous"
	}
	return slog.String("user_id", id)
}
