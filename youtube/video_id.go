package youtube

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	videoURLPattern = regexp.MustCompile(`^.*(youtu.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)
	bareIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ExtractVideoID finds the 11-character video ID in watch, short, embed and
// legacy URLs
func ExtractVideoID(url string) (string, bool) {
	m := videoURLPattern.FindStringSubmatch(url)
	if m == nil || len(m[2]) != 11 {
		return "", false
	}
	return m[2], true
}

// ResolveVideoID accepts either a video URL or a bare ID
func ResolveVideoID(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if id, ok := ExtractVideoID(ref); ok {
		return id, true
	}
	if bareIDPattern.MatchString(ref) {
		return ref, true
	}
	return "", false
}

// SeedInput prefixes input with the video title and description
func SeedInput(v *Video, input string) string {
	if v == nil {
		return input
	}
	return fmt.Sprintf("Video Title: %s\nDescription: %s\n\n%s", v.Title, v.Description, input)
}
