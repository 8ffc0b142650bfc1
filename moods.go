package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// bindMood parses and validates a mood body shared by create and replace.
func bindMood(c *gin.Context) (DateOnly, moodRequest, bool) {
	var body moodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return DateOnly{}, body, false
	}
	if body.Date == "" {
		apiError(c, http.StatusBadRequest, "date is required")
		return DateOnly{}, body, false
	}
	date, err := parseDate(body.Date)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return DateOnly{}, body, false
	}
	body.Mood = strings.TrimSpace(body.Mood)
	if body.Mood == "" {
		apiError(c, http.StatusBadRequest, "mood is required")
		return DateOnly{}, body, false
	}
	return date, body, true
}

// logMood creates or updates the mood entry for the given date.
// POST /moods/. Body: { "date": "YYYY-MM-DD", "mood": "happy", "note"?: "..." }.
// Posting the same date again updates that entry in place.
func (h *Handler) logMood(c *gin.Context) {
	date, body, ok := bindMood(c)
	if !ok {
		return
	}

	entry, created, err := h.db.UpsertMood(c.Request.Context(), date, body.Mood, body.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := "Mood updated"
	if created {
		message = "Mood logged"
	}
	c.JSON(http.StatusCreated, gin.H{"message": message, "mood": entry})
}

// listMoods returns all mood entries in storage order.
// GET /moods/.
func (h *Handler) listMoods(c *gin.Context) {
	moods, err := h.db.ListMoods(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moods": moods})
}

// updateMood replaces date, mood and note of an existing entry.
// PUT /moods/:mood_id. Returns 409 if the new date belongs to another entry.
func (h *Handler) updateMood(c *gin.Context) {
	id, err := pathID(c, "mood_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	date, body, ok := bindMood(c)
	if !ok {
		return
	}

	entry, err := h.db.UpdateMood(c.Request.Context(), id, date, body.Mood, body.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mood entry updated", "mood": entry})
}

// deleteMood removes a mood entry by id.
// DELETE /moods/:mood_id.
func (h *Handler) deleteMood(c *gin.Context) {
	id, err := pathID(c, "mood_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.db.DeleteMood(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mood entry deleted successfully"})
}
