// Package captions turns downloaded caption tracks into transcript items.
package captions

import (
	"bufio"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"yt-seo-studio/types"
)

// ErrNoCues is returned when a track contains no timed cues
var ErrNoCues = errors.New("caption track has no cues")

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Parse dispatches on format ("vtt" or "srt")
func Parse(format, track string) ([]types.TranscriptItem, error) {
	switch strings.ToLower(format) {
	case "", "vtt":
		return ParseVTT(track)
	case "srt":
		return ParseSRT(track)
	}
	return nil, fmt.Errorf("unsupported caption format %q", format)
}

// ParseVTT parses a WebVTT track. Header, NOTE and STYLE blocks are skipped.
func ParseVTT(track string) ([]types.TranscriptItem, error) {
	if !strings.HasPrefix(strings.TrimPrefix(strings.TrimSpace(track), "\ufeff"), "WEBVTT") {
		return nil, errors.New("not a WebVTT track: missing WEBVTT header")
	}
	return parseCues(track)
}

// ParseSRT parses a SubRip track
func ParseSRT(track string) ([]types.TranscriptItem, error) {
	return parseCues(track)
}

// parseCues reads every "start --> end" block. Cue identifiers, SRT indices
// and header blocks never follow a timing line, so they are not collected.
func parseCues(track string) ([]types.TranscriptItem, error) {
	var items []types.TranscriptItem

	scanner := bufio.NewScanner(strings.NewReader(track))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		inCue      bool
		start, end float64
		lines      []string
		lineNo     int
	)
	flush := func() {
		if inCue {
			items = appendCue(items, start, end, lines)
		}
		inCue = false
		lines = nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.Contains(line, "-->"):
			flush()
			var err error
			start, end, err = parseTiming(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			inCue = true
		case line == "":
			flush()
		case inCue:
			if text := cleanText(line); text != "" {
				if len(lines) == 0 || lines[len(lines)-1] != text {
					lines = append(lines, text)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read caption track: %w", err)
	}
	flush()

	if len(items) == 0 {
		return nil, ErrNoCues
	}
	return items, nil
}

// appendCue adds a cue, extending the previous one when the text repeats
func appendCue(items []types.TranscriptItem, start, end float64, lines []string) []types.TranscriptItem {
	text := strings.Join(lines, " ")
	if text == "" {
		return items
	}
	if n := len(items); n > 0 && items[n-1].Text == text {
		prev := &items[n-1]
		if end > prev.Start+prev.Duration {
			prev.Duration = end - prev.Start
		}
		return items
	}
	return append(items, types.TranscriptItem{Text: text, Start: start, Duration: end - start})
}

func parseTiming(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	startField := strings.TrimSpace(parts[0])
	endFields := strings.Fields(parts[1])
	if startField == "" || len(endFields) == 0 {
		return 0, 0, fmt.Errorf("malformed timing %q", line)
	}

	start, err := parseTimestamp(startField)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseTimestamp(endFields[0])
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("cue ends before it starts: %q", line)
	}
	return start, end, nil
}

// parseTimestamp accepts hh:mm:ss.mmm, mm:ss.mmm and the SRT comma form
func parseTimestamp(s string) (float64, error) {
	s = strings.Replace(s, ",", ".", 1)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed timestamp %q", s)
	}

	var total float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("malformed timestamp %q", s)
		}
		if i < len(parts)-1 && strings.Contains(p, ".") {
			return 0, fmt.Errorf("malformed timestamp %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

func cleanText(line string) string {
	line = tagPattern.ReplaceAllString(line, "")
	line = html.UnescapeString(line)
	return strings.Join(strings.Fields(line), " ")
}

// PlainText joins transcript items into one block of input text
func PlainText(items []types.TranscriptItem) string {
	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(it.Text)
	}
	return sb.String()
}
