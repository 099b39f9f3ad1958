package keywords

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/openhome-school/backend/internal/apperrors"
)

// MaxKeywords caps how many keywords are stored per event.
const MaxKeywords = 8

// maxKeywordLen drops runaway phrases; keywords are matched as substrings.
const maxKeywordLen = 40

// ParseKeywords extracts a clean keyword list from a model reply. The reply
// may be a comma or newline separated list, optionally bulleted or wrapped in
// a code fence, or a JSON array of strings.
func ParseKeywords(reply string) ([]string, error) {
	cleaned := stripCodeFences(reply)

	var raw []string
	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrAIRequestFailed, "failed to parse keyword array: %v", err)
		}
	} else {
		raw = strings.FieldsFunc(cleaned, func(r rune) bool {
			return r == ',' || r == '\n' || r == ';'
		})
	}

	seen := make(map[string]bool)
	var out []string
	for _, kw := range raw {
		kw = cleanKeyword(kw)
		key := strings.ToLower(kw)
		if kw == "" || len(kw) > maxKeywordLen || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
		if len(out) == MaxKeywords {
			break
		}
	}

	if len(out) == 0 {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrAIRequestFailed, "no keywords in reply %q", reply)
	}
	return out, nil
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)

func cleanKeyword(kw string) string {
	kw = listMarker.ReplaceAllString(strings.TrimSpace(kw), "")
	kw = strings.Trim(kw, "\"'`")
	return strings.TrimSpace(kw)
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// drop a language tag on the opening fence
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], ",[") {
			s = s[nl+1:]
		}
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
