package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yt-seo-studio/report"
	"yt-seo-studio/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// runDir holds the files of one pipeline run
type runDir struct {
	path string
	log  *zap.SugaredLogger
}

func newRunDir(output string, logger *zap.SugaredLogger) (*runDir, string, error) {
	runID := uuid.NewString()[:8]
	path := filepath.Join(output, runID)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, "", fmt.Errorf("create run dir: %w", err)
	}
	return &runDir{path: path, log: logger}, runID, nil
}

func (d *runDir) file(name string) string {
	return filepath.Join(d.path, name)
}

// saveJSON writes v as indented JSON. Failures are logged, not fatal.
func (d *runDir) saveJSON(name string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		d.log.Warnf("Could not marshal JSON for %s: %v", name, err)
		return
	}
	if err := os.WriteFile(d.file(name), data, 0644); err != nil {
		d.log.Warnf("Could not save %s: %v", name, err)
	}
}

func (d *runDir) saveText(name, text string) {
	if err := os.WriteFile(d.file(name), []byte(text), 0644); err != nil {
		d.log.Warnf("Could not save %s: %v", name, err)
	}
}

// finish stamps the state and writes the report and pipeline_state.json
func (d *runDir) finish(state *types.RunState) {
	state.CompletedAt = time.Now().UTC().Format(time.RFC3339)

	markdown, err := report.Markdown(state)
	if err != nil {
		d.log.Warnf("Could not render report: %v", err)
	} else {
		d.saveText("report.md", markdown)
		page, err := report.HTML("SEO report "+state.RunID, markdown)
		if err != nil {
			d.log.Warnf("Could not render HTML report: %v", err)
		} else {
			d.saveText("report.html", page)
		}
	}
	d.saveJSON("pipeline_state.json", state)
}

// printResult writes a human summary of the drafted metadata
func printResult(w io.Writer, result *types.ContentResult) {
	if result.Strategy != nil {
		fmt.Fprintf(w, "\nPrimary keyword: %s\n", result.Strategy.PrimaryKeyword)
		fmt.Fprintf(w, "Search intent:   %s\n", result.Strategy.SearchIntent)
	}
	fmt.Fprintln(w, "\nTitles:")
	for i, t := range result.Titles {
		fmt.Fprintf(w, "  %d. %s\n", i+1, t)
	}
	fmt.Fprintf(w, "\nTags: %s\n", strings.Join(result.Tags, ", "))
	if len(result.Hashtags) > 0 {
		fmt.Fprintf(w, "Hashtags: %s\n", strings.Join(result.Hashtags, " "))
	}
	fmt.Fprintf(w, "\nThumbnail prompt: %s\n", result.ThumbnailPrompt)
	for _, a := range result.Advisories {
		fmt.Fprintf(w, "  ⚠️  %s\n", a)
	}
}
