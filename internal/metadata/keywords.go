package metadata

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxHashtags caps the number of hashtags generated per image.
const MaxHashtags = 10

var (
	genericKeywords = map[string]struct{}{
		"photography": {},
		"photo":       {},
		"photos":      {},
		"image":       {},
		"images":      {},
		"picture":     {},
		"pictures":    {},
	}

	parentheticalRe = regexp.MustCompile(`\s*\(.*?\)`)
	punctuationRe   = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// Hashtags builds CamelCase hashtags from the weighted and plain keyword
// fields. Weighted keywords come first, plain keywords fill in what is left.
// The result has at most limit entries and no case-insensitive duplicates.
func Hashtags(weighted, plain any, limit int) []string {
	if limit <= 0 {
		return []string{}
	}

	candidates := make([]string, 0)
	seenRaw := map[string]struct{}{}
	for _, src := range [][]string{splitKeywords(weighted), splitKeywords(plain)} {
		for _, item := range src {
			key := strings.TrimSpace(item)
			if key == "" {
				continue
			}
			if _, ok := seenRaw[key]; ok {
				continue
			}
			seenRaw[key] = struct{}{}
			candidates = append(candidates, key)
		}
	}

	tags := make([]string, 0, min(len(candidates), limit))
	seenTags := map[string]struct{}{}
	for _, raw := range candidates {
		if len(tags) >= limit {
			break
		}
		keyword, ok := cleanKeyword(raw)
		if !ok {
			continue
		}
		tag := toHashtag(keyword)
		if tag == "" {
			continue
		}
		folded := strings.ToLower(tag)
		if _, ok := seenTags[folded]; ok {
			continue
		}
		seenTags[folded] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// splitKeywords flattens a raw keyword field. A single string is treated as
// a comma-separated list; list items are taken as already split.
func splitKeywords(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := scalarString(item); ok {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return parts
	case []string:
		parts := make([]string, 0, len(v))
		for _, s := range v {
			parts = append(parts, strings.TrimSpace(s))
		}
		return parts
	default:
		s, ok := scalarString(v)
		if !ok {
			return nil
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return parts
	}
}

// cleanKeyword strips parentheticals ("Saguaro cactus (Carnegiea gigantea)")
// and rejects generic words and single words of two characters or fewer.
func cleanKeyword(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	s = strings.TrimSpace(parentheticalRe.ReplaceAllString(s, ""))
	if s == "" {
		return "", false
	}
	if _, ok := genericKeywords[strings.ToLower(s)]; ok {
		return "", false
	}
	if !strings.Contains(s, " ") && utf8.RuneCountInString(s) <= 2 {
		return "", false
	}
	return s, true
}

// toHashtag turns "Mt. Rainier" into "#MtRainier". It returns "" when
// nothing but punctuation is left.
func toHashtag(keyword string) string {
	words := strings.Fields(punctuationRe.ReplaceAllString(keyword, " "))
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('#')
	for _, w := range words {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

func capitalize(word string) string {
	first, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
}
