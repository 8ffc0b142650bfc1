package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// insightWindowDays is the length of the trailing window the insight covers.
const insightWindowDays = 7

// maxGenerateResponseBytes caps how much of the generation response is read.
const maxGenerateResponseBytes = 1 << 20

// fallbackSummary replaces the generated text whenever the generation call fails.
const fallbackSummary = "Unable to generate insight at this time."

// insightPromptTemplate wraps the indented JSON of the 7-day window.
const insightPromptTemplate = `Analyze the following 7-day mood and habit log and summarize any patterns or correlations.
Data:
%s

Provide a helpful insight on how habits might be affecting the mood.`

/* ─── Generation HTTP client ─────────────────────────────────────────── */

// generateRequest is the request body for an Ollama-style /api/generate endpoint.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateClient calls the text-generation endpoint. Each call is attempted
// exactly once and bounded by the client timeout.
type generateClient struct {
	url    string
	model  string
	client *http.Client
}

func newGenerateClient(url, model string, timeout time.Duration) *generateClient {
	return &generateClient{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// Generate sends prompt and returns the endpoint's "response" text. Every
// failure is wrapped in errUpstream.
func (g *generateClient) Generate(ctx context.Context, prompt string) (string, error) {
	bodyBytes, err := json.Marshal(generateRequest{Model: g.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", errUpstream, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", errUpstream, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: http request: %v", errUpstream, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxGenerateResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", errUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", errUpstream, resp.StatusCode, string(respBytes))
	}

	var result struct {
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", errUpstream, err)
	}
	if result.Response == nil {
		return "", fmt.Errorf("%w: no response field in body", errUpstream)
	}
	return *result.Response, nil
}

/* ─── Aggregation ────────────────────────────────────────────────────── */

// buildInsightDays merges moods and logs onto the given dates. Each day
// carries its mood label (nil if none) and the habit names logged that day.
func buildInsightDays(dates []DateOnly, moods []moodEntry, logs []habitLog) []insightDay {
	moodByDate := make(map[string]string, len(moods))
	for _, m := range moods {
		moodByDate[m.Date.String()] = m.Mood
	}
	habitsByDate := make(map[string][]string)
	for _, l := range logs {
		key := l.Date.String()
		habitsByDate[key] = append(habitsByDate[key], l.HabitName)
	}

	days := make([]insightDay, 0, len(dates))
	for _, d := range dates {
		day := insightDay{Date: d, Habits: habitsByDate[d.String()]}
		if day.Habits == nil {
			day.Habits = []string{}
		}
		if m, ok := moodByDate[d.String()]; ok {
			day.Mood = &m
		}
		days = append(days, day)
	}
	return days
}

// loadInsightWindow reads the trailing week of moods and logs.
func (h *Handler) loadInsightWindow(ctx context.Context) ([]insightDay, int, error) {
	dates := lastNDays(h.today(), insightWindowDays)
	start, end := dates[0], dates[len(dates)-1]

	moods, err := h.db.MoodsBetween(ctx, start, end)
	if err != nil {
		return nil, 0, err
	}
	logs, err := h.db.HabitLogsBetween(ctx, start, end)
	if err != nil {
		return nil, 0, err
	}
	return buildInsightDays(dates, moods, logs), len(moods), nil
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getWeeklyInsight summarizes the last 7 days through the generation endpoint.
// GET /insights/weekly. A failed generation call still answers 200 with the
// fallback summary.
func (h *Handler) getWeeklyInsight(c *gin.Context) {
	ctx := c.Request.Context()

	days, moodCount, err := h.loadInsightWindow(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	habits, err := h.db.ListHabits(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	names := make([]string, 0, len(habits))
	for _, hb := range habits {
		names = append(names, hb.Name)
	}

	summary := fallbackSummary
	data, err := json.MarshalIndent(days, "", "  ")
	if err != nil {
		h.log.Errorw("[insights] marshal window", "error", err)
	} else if text, err := h.insights.Generate(ctx, fmt.Sprintf(insightPromptTemplate, data)); err != nil {
		h.log.Warnw("[insights] generation failed, using fallback", "error", err)
	} else {
		summary = text
	}

	c.JSON(http.StatusOK, weeklyInsightResponse{
		Summary:             summary,
		MoodEntriesAnalyzed: moodCount,
		HabitsTracked:       names,
	})
}

// getRawInsightData returns the 7-day aggregation without calling the generator.
// GET /insights/raw.
func (h *Handler) getRawInsightData(c *gin.Context) {
	days, _, err := h.loadInsightWindow(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insight_data": days})
}
