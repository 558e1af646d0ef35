// Package dialogue turns a cleaned message stream into (prompt, response)
// training pairs: consecutive messages from one author merge into a single
// turn, turns are paired with their immediate successor, and pairs over the
// length limit are filtered out.
package dialogue

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/slgero/talk-with-me/cleaner"
	"github.com/slgero/talk-with-me/model"
)

// ErrEmptyTurn reports a turn with zero whitespace-separated tokens inside
// the pair filter. The assembler never emits one, so hitting this means the
// caller fed the filter turns that skipped assembly.
var ErrEmptyTurn = errors.New("turn has no tokens")

// Separator joining messages merged into one turn.
const turnSeparator = " \n "

var (
	punctuationRe = regexp.MustCompile(`([.!?])`)
	nonLetterRe   = regexp.MustCompile(`[^а-яА-ЯёЁa-zA-Z.!?]+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Normalize lowercases the text, turns line breaks into sentence
// terminators, pads `.`, `!`, `?` with a leading space and drops everything
// that is not a Cyrillic or Latin letter. Idempotent; applied on top of the
// cleaning cascade in dialogue mode only.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "\n", ".")
	s = punctuationRe.ReplaceAllString(s, " $1")
	s = nonLetterRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// MergeTurns folds the raw message stream into dialogue turns. The tracked
// author seeds from the first message; a message whose author matches the
// tracked author extends the open turn, any other author starts a new one.
//
// The tracked author advances after every message, including those whose
// cleaned text came out empty, so attachment-only messages from the other
// party still break the current turn. See DESIGN.md for the trade-off.
func MergeTurns(raws []model.RawMessage) []string {
	if len(raws) == 0 {
		return nil
	}

	tracked := raws[0].Author
	var turns []string
	for _, raw := range raws {
		text := Normalize(cleaner.Clean(raw.Text))
		if text != "" {
			if raw.Author == tracked && len(turns) > 0 {
				turns[len(turns)-1] += turnSeparator + text
			} else {
				turns = append(turns, text)
			}
		}
		tracked = raw.Author
	}
	return turns
}

// EnsureTerminator appends an explicit sentence terminator to the last turn
// when it does not already end with a letter or digit.
func EnsureTerminator(turns []string) {
	if len(turns) == 0 {
		return
	}
	last := turns[len(turns)-1]
	if last == "" {
		return
	}
	r, _ := utf8.DecodeLastRuneInString(last)
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		turns[len(turns)-1] = last + " . "
	}
}

// BuildPairs pairs every turn with its immediate predecessor.
func BuildPairs(turns []string) []model.Pair {
	var pairs []model.Pair
	for i := 1; i < len(turns); i++ {
		pairs = append(pairs, model.Pair{Prompt: turns[i-1], Response: turns[i]})
	}
	return pairs
}

// FilterPairs keeps a pair only when both sides have strictly fewer than
// maxLength whitespace-separated tokens.
func FilterPairs(pairs []model.Pair, maxLength int) ([]model.Pair, error) {
	kept := make([]model.Pair, 0, len(pairs))
	for _, pair := range pairs {
		prompt, err := tokenCount(pair.Prompt)
		if err != nil {
			return nil, err
		}
		response, err := tokenCount(pair.Response)
		if err != nil {
			return nil, err
		}
		if prompt < maxLength && response < maxLength {
			kept = append(kept, pair)
		}
	}
	return kept, nil
}

func tokenCount(s string) (int, error) {
	n := len(strings.Fields(s))
	if n == 0 {
		return 0, ErrEmptyTurn
	}
	return n, nil
}
