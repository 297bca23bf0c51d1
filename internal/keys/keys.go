// Package keys derives the human-readable identifiers for projects,
// release plans and user stories. Final keys are a pure function of an
// entity's numeric id, so they are collision-free by construction; only
// the placeholder written before the id exists needs entropy.
package keys

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	padWidth      = 3
	maxCodeLength = 10
	fallbackCode  = "PROJ"
)

// Placeholder returns a throwaway key used to satisfy the NOT NULL /
// unique constraint on the first insert, before the numeric id is known.
// It combines a monotonic clock reading with a random suffix so that two
// inserts in the same instant still get distinct values.
func Placeholder() string {
	var suffix [4]byte
	_, _ = rand.Read(suffix[:])
	return fmt.Sprintf("TMP-%d-%s", time.Now().UnixNano(), hex.EncodeToString(suffix[:]))
}

// Format builds the final key for a project or story: prefix, dash,
// zero-padded numeric id. Ids wider than the pad keep their full width.
func Format(prefix string, id uint) string {
	return fmt.Sprintf("%s-%0*d", prefix, padWidth, id)
}

// FormatRelease builds a release plan key scoped by its project key. The
// R marker keeps release keys distinct from story keys under the same
// project.
func FormatRelease(projectKey string, id uint) string {
	return fmt.Sprintf("%s-R%0*d", projectKey, padWidth, id)
}

// CodeFromName derives a short project code from a project name: first
// letters of a multi-word name, or the leading characters of a single
// word, uppercased and capped at ten characters. Only ASCII letters and
// digits survive the derivation, so the code is always safe to embed in
// a key regardless of the name's alphabet.
func CodeFromName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - ('a' - 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			return r
		case unicode.IsSpace(r):
			return r
		}
		return -1
	}, name)

	words := strings.Fields(cleaned)
	var b strings.Builder

	switch {
	case len(words) > 1:
		for _, word := range words {
			if b.Len() >= maxCodeLength {
				break
			}
			b.WriteByte(word[0])
		}
	case len(words) == 1:
		word := words[0]
		if len(word) > maxCodeLength {
			word = word[:maxCodeLength]
		}
		b.WriteString(word)
	}

	code := b.String()
	if code == "" {
		return fallbackCode
	}
	if len(code) < 2 {
		code += "X"
	}
	return code
}
