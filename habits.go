package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// defaultHabitGoal is the target count used when a habit is created without one.
const defaultHabitGoal = 20

// createHabit inserts a habit and logs it for today.
// POST /habits/. Name is required and must be unique.
func (h *Handler) createHabit(c *gin.Context) {
	var body createHabitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if body.Goal != nil && *body.Goal < 0 {
		apiError(c, http.StatusBadRequest, "goal must not be negative")
		return
	}

	created, err := h.db.CreateHabit(c.Request.Context(), body, h.today())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Habit logged for today", "habit": created})
}

// listHabits returns every habit ordered by id.
// GET /habits/.
func (h *Handler) listHabits(c *gin.Context) {
	habits, err := h.db.ListHabits(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

// updateHabit changes only the fields present in the body. An explicit
// null description clears it; name and goal cannot be null.
// PUT /habits/:habit_id.
func (h *Handler) updateHabit(c *gin.Context) {
	id, err := pathID(c, "habit_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body updateHabitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name.Set {
		if body.Name.Value == nil || strings.TrimSpace(*body.Name.Value) == "" {
			apiError(c, http.StatusBadRequest, "name must not be empty")
			return
		}
		trimmed := strings.TrimSpace(*body.Name.Value)
		body.Name.Value = &trimmed
	}
	if body.Goal != nil && *body.Goal < 0 {
		apiError(c, http.StatusBadRequest, "goal must not be negative")
		return
	}

	updated, err := h.db.UpdateHabit(c.Request.Context(), id, body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Habit updated successfully", "habit": updated})
}

// deleteHabit removes a habit together with all of its logs.
// DELETE /habits/:habit_id.
func (h *Handler) deleteHabit(c *gin.Context) {
	id, err := pathID(c, "habit_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.db.DeleteHabit(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Habit and all associated logs deleted successfully"})
}

// toggleHabitLog flips whether habit_id is logged on date.
// PATCH /habits/logs/toggle and POST /habits/toggle/. Body: { "habit_id": 1, "date": "YYYY-MM-DD" }.
func (h *Handler) toggleHabitLog(c *gin.Context) {
	var body toggleLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.HabitID == nil || *body.HabitID <= 0 || body.Date == "" {
		apiError(c, http.StatusBadRequest, "habit_id and date are required")
		return
	}
	date, err := parseDate(body.Date)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	checked, err := h.db.ToggleHabitLog(c.Request.Context(), *body.HabitID, date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := "Habit unchecked"
	if checked {
		message = "Habit checked"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "checked": checked})
}

// getHabitLogs returns the per-habit completion matrix for a week, month or year.
// GET /habits/logs?period=week|month|year&anchor_date=YYYY-MM-DD. Period defaults
// to week (unknown values too); anchor_date defaults to today.
func (h *Handler) getHabitLogs(c *gin.Context) {
	period := normalizePeriod(c.Query("period"))

	anchor := h.today()
	if s := c.Query("anchor_date"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid anchor_date, expected YYYY-MM-DD")
			return
		}
		anchor = d
	}

	ctx := c.Request.Context()
	dates := periodDates(period, anchor)
	start, end := dates[0], dates[len(dates)-1]

	habits, err := h.db.ListHabits(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	logs, err := h.db.HabitLogsBetween(ctx, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habitLogsResponse{
		Period: period,
		Dates:  dates,
		Habits: buildProgress(habits, logs, dates),
	})
}
