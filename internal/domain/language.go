package domain

import "strings"

// Language is one of the two supported speech languages, or a session mode.
type Language string

const (
	LanguageNone       Language = "none"
	LanguageAuto       Language = "auto"
	LanguageJapanese   Language = "ja"
	LanguageVietnamese Language = "vi"
)

// ParseLanguage accepts short codes and BCP 47 recognition tags.
// Anything unknown maps to LanguageNone.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ja", "ja-jp":
		return LanguageJapanese
	case "vi", "vi-vn":
		return LanguageVietnamese
	case "auto":
		return LanguageAuto
	default:
		return LanguageNone
	}
}

// IsSpoken reports whether l is a concrete language (not a mode).
func (l Language) IsSpoken() bool {
	return l == LanguageJapanese || l == LanguageVietnamese
}

// Target returns the translation direction for a source language.
func (l Language) Target() Language {
	switch l {
	case LanguageJapanese:
		return LanguageVietnamese
	case LanguageVietnamese:
		return LanguageJapanese
	default:
		return LanguageNone
	}
}

// RecognitionTag is the tag handed to the speech recognizer.
func (l Language) RecognitionTag() string {
	switch l {
	case LanguageJapanese:
		return "ja-JP"
	case LanguageVietnamese:
		return "vi-VN"
	default:
		return ""
	}
}

// FailureText is the placeholder shown when both translation providers fail.
// It is written in the language of the text that could not be translated.
func (l Language) FailureText() string {
	if l == LanguageVietnamese {
		return "[Dịch thất bại]"
	}
	return "[翻訳失敗]"
}

// ErrorText is the user-facing failure message for a pane in language l.
func (l Language) ErrorText() string {
	if l == LanguageVietnamese {
		return "Dịch thất bại"
	}
	return "翻訳に失敗しました"
}

// ListeningText and IdleText are the pane status labels.
func (l Language) ListeningText() string {
	if l == LanguageVietnamese {
		return "Đang nghe..."
	}
	return "聞いています..."
}

func (l Language) IdleText() string {
	if l == LanguageVietnamese {
		return "Chờ"
	}
	return "待機中"
}

func (l Language) String() string {
	return string(l)
}
