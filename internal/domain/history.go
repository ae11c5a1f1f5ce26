package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryLimit caps the per-client history.
const DefaultHistoryLimit = 100

// HistoryEntry is one completed translation as shown in the history list.
type HistoryEntry struct {
	Timestamp        time.Time `json:"timestamp"`
	OriginalLanguage Language  `json:"originalLanguage"`
	OriginalText     string    `json:"originalText"`
	TranslatedText   string    `json:"translatedText"`
	TargetLanguage   Language  `json:"targetLanguage"`
}

// HistoryStore keeps a newest-first history per client, capped at a limit.
type HistoryStore interface {
	Add(ctx context.Context, clientID uuid.UUID, entry HistoryEntry) error
	List(ctx context.Context, clientID uuid.UUID, limit int) ([]HistoryEntry, error)
	Clear(ctx context.Context, clientID uuid.UUID) error
}
