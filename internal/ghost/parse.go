package ghost

import (
	"encoding/json"
	"regexp"
	"strings"
)

// MaxVariants is the number of answers a generation yields at most
const MaxVariants = 3

var (
	arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)
	itemSplit    = regexp.MustCompile(`",\s*"`)
)

// ParseVariants extracts answer variants from a model completion. Models are
// asked for a bare JSON array but often wrap it in markdown or forget to
// escape quotes, so a delimiter split is used when strict decoding fails.
func ParseVariants(text string) []string {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	if m := arrayPattern.FindString(clean); m != "" {
		clean = m
	}

	var list []string
	if err := json.Unmarshal([]byte(clean), &list); err == nil {
		return limit(nonEmpty(list))
	}

	content := strings.TrimPrefix(clean, "[")
	content = strings.TrimSuffix(content, "]")
	parts := itemSplit.Split(content, -1)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimPrefix(p, `"`)
		p = strings.TrimSuffix(p, `"`)
		parts[i] = p
	}
	return limit(nonEmpty(parts))
}

func nonEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func limit(in []string) []string {
	if len(in) > MaxVariants {
		return in[:MaxVariants]
	}
	return in
}
