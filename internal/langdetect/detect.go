package langdetect

import (
	"strings"
	"unicode"

	"github.com/pscheid92/lingobridge/internal/domain"
	"golang.org/x/text/unicode/norm"
)

const (
	kanaWeight        = 3.0
	ideographWeight   = 2.0
	punctuationWeight = 1.0
	diacriticWeight   = 3.0
	asciiLetterWeight = 0.5
	keywordWeight     = 5.0
)

// Result is the outcome of scoring one text.
type Result struct {
	Language        domain.Language `json:"language"`
	JapaneseScore   float64         `json:"japaneseScore"`
	VietnameseScore float64         `json:"vietnameseScore"`
	Confidence      float64         `json:"confidence"`
}

// Detect scores text for both languages. The higher score wins; a tie,
// including empty input, yields domain.LanguageNone with zero confidence.
func Detect(text string) Result {
	text = norm.NFC.String(text)
	lower := strings.ToLower(text)

	ja, vi := scoreRunes(lower)
	ja += keywordWeight * float64(countJapaneseKeywords(lower))
	vi += keywordWeight * float64(countVietnameseKeywords(lower))

	r := Result{JapaneseScore: ja, VietnameseScore: vi, Language: domain.LanguageNone}
	switch {
	case ja > vi:
		r.Language = domain.LanguageJapanese
		r.Confidence = ja / (ja + vi)
	case vi > ja:
		r.Language = domain.LanguageVietnamese
		r.Confidence = vi / (ja + vi)
	}
	return r
}

// DetectWithHint is Detect, except that an undecided result takes the hint
// language with zero confidence.
func DetectWithHint(text string, hint domain.Language) Result {
	r := Detect(text)
	if r.Language == domain.LanguageNone {
		r.Language = hint
	}
	return r
}

func scoreRunes(s string) (ja, vi float64) {
	for _, r := range s {
		switch {
		case strings.ContainsRune(japanesePunctuation, r):
			ja += punctuationWeight
		case isKana(r):
			ja += kanaWeight
		case unicode.Is(unicode.Han, r):
			ja += ideographWeight
		case strings.ContainsRune(vietnameseLetters, r):
			vi += diacriticWeight
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			vi += asciiLetterWeight
		}
	}
	return ja, vi
}

func isKana(r rune) bool {
	return unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r)
}

func countJapaneseKeywords(s string) int {
	n := 0
	for _, kw := range japaneseKeywords {
		n += strings.Count(s, kw)
	}
	return n
}

func countVietnameseKeywords(s string) int {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r)
	})
	if len(words) == 0 {
		return 0
	}

	n := 0
	for _, w := range words {
		for _, kw := range vietnameseKeywords {
			if w == kw {
				n++
			}
		}
	}

	joined := " " + strings.Join(words, " ") + " "
	for _, phrase := range vietnamesePhrases {
		n += strings.Count(joined, " "+phrase+" ")
	}
	return n
}
