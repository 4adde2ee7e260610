package draft

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"yt-seo-studio/types"
)

// Advisory bands for drafted copy. Violations are reported, never enforced.
const (
	TitleMinChars       = 55
	TitleMaxChars       = 70
	DescriptionMinWords = 130
	DescriptionMaxWords = 230
	TagsMin             = 15
	TagsMax             = 25
	HashtagsMin         = 3
	HashtagsMax         = 5
)

// Lint checks drafted copy against the advisory contracts
func Lint(result types.ContentResult, strategy types.Strategy) []string {
	var out []string
	keyword := strings.ToLower(strings.TrimSpace(strategy.PrimaryKeyword))

	if n := len(result.Titles); n != 3 {
		out = append(out, fmt.Sprintf("expected 3 titles, got %d", n))
	}
	for i, title := range result.Titles {
		n := utf8.RuneCountInString(title)
		if n < TitleMinChars || n > TitleMaxChars {
			out = append(out, fmt.Sprintf("title %d is %d characters (target %d-%d)", i+1, n, TitleMinChars, TitleMaxChars))
		}
		if keyword == "" {
			continue
		}
		lower := strings.ToLower(title)
		idx := strings.Index(lower, keyword)
		switch {
		case idx < 0:
			out = append(out, fmt.Sprintf("title %d does not contain the primary keyword", i+1))
		case utf8.RuneCountInString(lower[:idx]) > n/2:
			out = append(out, fmt.Sprintf("title %d places the primary keyword late", i+1))
		}
	}

	if n := len(result.Descriptions); n != 3 {
		out = append(out, fmt.Sprintf("expected 3 descriptions, got %d", n))
	}
	for i, desc := range result.Descriptions {
		words := len(strings.Fields(desc))
		if words < DescriptionMinWords || words > DescriptionMaxWords {
			out = append(out, fmt.Sprintf("description %d is %d words (target ~150-200)", i+1, words))
		}
		if keyword != "" && !strings.Contains(strings.ToLower(openingLines(desc, 2)), keyword) {
			out = append(out, fmt.Sprintf("description %d does not open with the primary keyword", i+1))
		}
	}

	if n := len(result.Tags); n < TagsMin || n > TagsMax {
		out = append(out, fmt.Sprintf("%d tags (target ~20)", n))
	}
	if n := len(result.Hashtags); n < HashtagsMin || n > HashtagsMax {
		out = append(out, fmt.Sprintf("%d hashtags (target %d-%d)", n, HashtagsMin, HashtagsMax))
	}
	return out
}

// openingLines returns the first n non-empty lines, or the first two
// sentences when the text has no line breaks
func openingLines(s string, n int) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
		if len(lines) == n {
			break
		}
	}
	if len(lines) > 1 {
		return strings.Join(lines, "\n")
	}

	text := strings.Join(lines, "")
	end := 0
	for i := 0; i < n; i++ {
		j := strings.IndexAny(text[end:], ".!?")
		if j < 0 {
			return text
		}
		end += j + 1
	}
	return text[:end]
}
