package domain

import "errors"

var (
	ErrEmptyText           = errors.New("text is empty")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrTranslationFailed   = errors.New("translation failed")
	ErrHistoryUnavailable  = errors.New("history unavailable")
	ErrSessionClosed       = errors.New("session is closed")
)
