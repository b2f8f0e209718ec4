package ingest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a raw token.
type Kind int

const (
	Word Kind = iota
	Number
	AlphaNumeric
	Punctuation
	Symbol
	URL
	Email
)

var kindNames = [...]string{"Word", "Number", "AlphaNumeric", "Punctuation", "Symbol", "URL", "Email"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Token is one classified piece of raw text.
type Token struct {
	Kind    Kind
	Content string
}

var (
	urlPattern   = regexp.MustCompile(`^(?i)(https?://|www\.)\S+$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// MinWordLength is the shortest word, in runes, kept by Clean.
const MinWordLength = 2

// Tokenizer splits Turkish text into classified tokens and produces the
// cleaned word sequence used for counting.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a tokenizer with the given stopword list
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[Lower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops}
}

// Lower lowercases with Turkish casing rules (İ→i, I→ı).
func Lower(s string) string {
	return strings.ToLowerSpecial(unicode.TurkishCase, s)
}

// Tokenize splits text into classified tokens. Whitespace separates chunks;
// URLs and e-mail addresses are kept whole, everything else is split at
// character-class boundaries.
func (t *Tokenizer) Tokenize(text string) []Token {
	var tokens []Token
	for _, chunk := range strings.Fields(text) {
		trimmed := strings.TrimRightFunc(chunk, unicode.IsPunct)
		switch {
		case urlPattern.MatchString(trimmed):
			tokens = append(tokens, Token{Kind: URL, Content: trimmed})
			tokens = appendTrailing(tokens, chunk[len(trimmed):])
			continue
		case emailPattern.MatchString(trimmed):
			tokens = append(tokens, Token{Kind: Email, Content: trimmed})
			tokens = appendTrailing(tokens, chunk[len(trimmed):])
			continue
		}
		tokens = splitChunk(tokens, chunk)
	}
	return tokens
}

// Clean returns lowercased words of at least MinWordLength runes, minus
// stopwords. Every other token kind is dropped.
func (t *Tokenizer) Clean(text string) []string {
	var words []string
	for _, tok := range t.Tokenize(text) {
		if tok.Kind != Word {
			continue
		}
		if utf8.RuneCountInString(tok.Content) < MinWordLength {
			continue
		}
		w := Lower(tok.Content)
		if t.isStopword(w) {
			continue
		}
		words = append(words, w)
	}
	return words
}

func appendTrailing(tokens []Token, rest string) []Token {
	for _, r := range rest {
		tokens = append(tokens, Token{Kind: Punctuation, Content: string(r)})
	}
	return tokens
}

// splitChunk breaks a whitespace-free chunk into word/number runs and single
// punctuation or symbol runes. An apostrophe followed by a letter stays inside
// the run together with its suffix ("Ankara'da", "2021'de"); the suffix does
// not change the run's kind. '.' or ',' between digits stays inside the number.
func splitChunk(tokens []Token, chunk string) []Token {
	runes := []rune(chunk)
	var current strings.Builder
	letters, digits := 0, 0
	suffix := false

	flush := func() {
		if current.Len() == 0 {
			return
		}
		kind := AlphaNumeric
		switch {
		case digits == 0:
			kind = Word
		case letters == 0:
			kind = Number
		}
		tokens = append(tokens, Token{Kind: kind, Content: current.String()})
		current.Reset()
		letters, digits = 0, 0
		suffix = false
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsMark(r):
			current.WriteRune(r)
			if !suffix {
				letters++
			}
		case unicode.IsDigit(r):
			current.WriteRune(r)
			digits++
		case isApostrophe(r) && current.Len() > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			current.WriteRune(r)
			suffix = true
		case (r == '.' || r == ',') && digits > 0 && letters == 0 && i+1 < len(runes) && unicode.IsDigit(runes[i+1]):
			current.WriteRune(r)
		default:
			flush()
			kind := Symbol
			if unicode.IsPunct(r) {
				kind = Punctuation
			}
			tokens = append(tokens, Token{Kind: kind, Content: string(r)})
		}
	}
	flush()
	return tokens
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

func (t *Tokenizer) isStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// AddStopword adds a word to the stopword list
func (t *Tokenizer) AddStopword(word string) {
	t.stopwords[Lower(word)] = struct{}{}
}

// RemoveStopword removes a word from the stopword list
func (t *Tokenizer) RemoveStopword(word string) {
	delete(t.stopwords, Lower(word))
}
