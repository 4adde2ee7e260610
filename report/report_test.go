package report

import (
	"strings"
	"testing"

	"yt-seo-studio/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *types.RunState {
	strat := &types.Strategy{
		PrimaryKeyword:    "growing tomatoes in winter",
		SecondaryKeywords: []string{"winter tomatoes", "indoor tomatoes"},
		SearchIntent:      types.IntentInformational,
		Hooks:             []string{"Tomatoes in January?", "The grow light trick"},
	}
	return &types.RunState{
		RunID:     "ab12cd34",
		StartedAt: "2026-01-02T10:00:00Z",
		Request:   &types.PipelineRequest{RawInput: "idea", Mode: types.ModeIdea, ContextHint: "gardening channel"},
		Strategy:  strat,
		Result: &types.ContentResult{
			Titles:          []string{"Growing Tomatoes in Winter: The Complete Guide"},
			Descriptions:    []string{"Growing tomatoes in winter is easy."},
			Tags:            []string{"tomatoes", "winter garden"},
			Hashtags:        []string{"#tomatoes", "#garden"},
			ThumbnailPrompt: "A tomato on snow, 16:9",
			Strategy:        strat,
			Advisories:      []string{"expected 3 titles, got 1"},
		},
		Research: "Gap: short tutorials",
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown(sampleState())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# SEO Report ab12cd34"))
	assert.Contains(t, out, "- Mode: IDEA")
	assert.Contains(t, out, "- Context: gardening channel")
	assert.Contains(t, out, "- **Primary keyword:** growing tomatoes in winter")
	assert.Contains(t, out, "- **Secondary keywords:** winter tomatoes, indoor tomatoes")
	assert.Contains(t, out, "- The grow light trick")
	assert.Contains(t, out, "1. Growing Tomatoes in Winter: The Complete Guide (46 chars)")
	assert.Contains(t, out, "### Description 1")
	assert.Contains(t, out, "tomatoes, winter garden")
	assert.Contains(t, out, "#tomatoes #garden")
	assert.Contains(t, out, "> A tomato on snow, 16:9")
	assert.Contains(t, out, "- expected 3 titles, got 1")
	assert.Contains(t, out, "## Competitive research\n\nGap: short tutorials")
	assert.NotContains(t, out, "## Error")
}

func TestMarkdownFailedRun(t *testing.T) {
	out, err := Markdown(&types.RunState{RunID: "x", Error: "Failed to generate SEO strategy"})
	require.NoError(t, err)
	assert.Contains(t, out, "## Error\n\nFailed to generate SEO strategy")
	assert.NotContains(t, out, "## Titles")
	assert.NotContains(t, out, "## Strategy")

	_, err = Markdown(nil)
	assert.Error(t, err)
}

func TestHTML(t *testing.T) {
	md, err := Markdown(sampleState())
	require.NoError(t, err)

	page, err := HTML("Report <ab12cd34>", md)
	require.NoError(t, err)
	assert.Contains(t, page, "<title>Report &lt;ab12cd34&gt;</title>")
	assert.Contains(t, page, "<h1>SEO Report ab12cd34</h1>")
	assert.Contains(t, page, "<strong>Primary keyword:</strong>")
	assert.Contains(t, page, "<blockquote>")
}
