package matching

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Similarity is the normalized edit-distance similarity of two strings:
// 1 - distance/max(len(a), len(b)) counted in runes.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	score := 1 - float64(distance)/float64(longest)
	if score < 0 {
		return 0
	}
	return score
}

// NormalizeName lowercases, folds diacritics and reduces punctuation to
// single spaces, so "Atlético-Madrid" and "atletico madrid" compare equal.
func NormalizeName(raw string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), raw)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	space := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

var clubAffixes = map[string]struct{}{
	"fc": {}, "sc": {}, "afc": {}, "cf": {}, "ac": {}, "club": {}, "cd": {}, "fk": {},
	"sk": {}, "bk": {}, "sv": {}, "ud": {}, "ca": {}, "sd": {}, "nk": {}, "if": {},
}

// stripAffixes drops club-type tokens such as "fc" or "club". A name made only
// of affixes is returned unchanged.
func stripAffixes(normalized string) string {
	tokens := strings.Fields(normalized)
	kept := tokens[:0:0]
	for _, token := range tokens {
		if _, ok := clubAffixes[token]; ok {
			continue
		}
		kept = append(kept, token)
	}
	if len(kept) == 0 {
		return normalized
	}
	return strings.Join(kept, " ")
}

// tokenDice is 2|A∩B| / (|A|+|B|) over distinct tokens.
func tokenDice(a, b string) float64 {
	left := tokenSet(a)
	right := tokenSet(b)
	if len(left) == 0 && len(right) == 0 {
		return 1
	}
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	shared := 0
	for token := range left {
		if _, ok := right[token]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(left)+len(right))
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, token := range strings.Fields(s) {
		out[token] = struct{}{}
	}
	return out
}

// NameScore compares two display names after normalization. It is the best of
// the plain edit similarity, the similarity without club affixes and the token
// overlap, which keeps "Jeonbuk Hyundai Motors" close to "Jeonbuk Motors".
func NameScore(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		if na == nb {
			return 1
		}
		return 0
	}
	best := Similarity(na, nb)
	if s := Similarity(stripAffixes(na), stripAffixes(nb)); s > best {
		best = s
	}
	if s := tokenDice(stripAffixes(na), stripAffixes(nb)); s > best {
		best = s
	}
	return best
}

// bestNameScore takes the best NameScore over every name pair of two entities.
func bestNameScore(left, right []string) float64 {
	best := 0.0
	for _, a := range left {
		for _, b := range right {
			if s := NameScore(a, b); s > best {
				best = s
			}
		}
	}
	return best
}
