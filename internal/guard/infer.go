package guard

import (
	"strings"

	"quorum-trading-bot/internal/types"
)

// InferDirection classifies which side a position holds, with fixed
// precedence: the structured Outcome field first (exact "Up"/"Down"),
// then a case-insensitive token search in the market title. Returns
// DirectionSkip when neither source is determinate; the guard cannot
// reason about such a record safely and skips it.
func InferDirection(p types.Position) types.Direction {
	switch p.Outcome {
	case "Up":
		return types.DirectionUp
	case "Down":
		return types.DirectionDown
	}

	return directionFromTitle(p.Title)
}

func directionFromTitle(title string) types.Direction {
	lower := strings.ToLower(title)
	hasUp := containsToken(lower, "up")
	hasDown := containsToken(lower, "down")

	switch {
	case hasUp && !hasDown:
		return types.DirectionUp
	case hasDown && !hasUp:
		return types.DirectionDown
	}
	return types.DirectionSkip
}

// containsToken reports whether word appears in s as a whole token
// rather than inside another word ("up" must not match "supply").
func containsToken(s, word string) bool {
	for i := 0; i+len(word) <= len(s); i++ {
		if s[i:i+len(word)] != word {
			continue
		}
		beforeOK := i == 0 || !isWordChar(s[i-1])
		afterOK := i+len(word) == len(s) || !isWordChar(s[i+len(word)])
		if beforeOK && afterOK {
			return true
		}
	}
	return false
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
