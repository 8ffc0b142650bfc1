package main

import (
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// dateLayout is the wire and query format for every calendar date.
const dateLayout = "2006-01-02"

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+dateLayout+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

// String returns the date as YYYY-MM-DD, which is also the form used in SQL args.
func (d DateOnly) String() string {
	return d.Time.Format(dateLayout)
}

// dateOf truncates t to its calendar date in t's own location, returned as
// midnight UTC so date arithmetic never crosses a DST boundary.
func dateOf(t time.Time) DateOnly {
	y, m, day := t.Date()
	return DateOnly{time.Date(y, m, day, 0, 0, 0, 0, time.UTC)}
}

// parseDate parses a YYYY-MM-DD string into a DateOnly.
func parseDate(s string) (DateOnly, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return DateOnly{}, err
	}
	return DateOnly{t}, nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// habit maps to the habits table.
type habit struct {
	ID          int        `json:"id"          db:"id"`
	Name        string     `json:"name"        db:"name"`
	Description *string    `json:"description" db:"description"`
	Goal        int        `json:"goal"        db:"goal"`
	CreatedAt   *time.Time `json:"-"           db:"created_at"`
}

// habitLog is a habit_logs row joined with its habit's name. Logs whose
// habit no longer exists never appear because every read is an inner join.
type habitLog struct {
	ID        int      `json:"id"         db:"id"`
	Date      DateOnly `json:"date"       db:"date"`
	HabitID   int      `json:"habit_id"   db:"habit_id"`
	HabitName string   `json:"habit_name" db:"habit_name"`
}

// moodEntry maps to the moods table. One row per calendar date.
type moodEntry struct {
	ID        int        `json:"id"   db:"id"`
	Date      DateOnly   `json:"date" db:"date"`
	Mood      string     `json:"mood" db:"mood"`
	Note      *string    `json:"note" db:"note"`
	CreatedAt *time.Time `json:"-"    db:"created_at"`
	UpdatedAt *time.Time `json:"-"    db:"updated_at"`
}

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id"         db:"id"`
	Name      string     `json:"name"       db:"name"`
	Email     string     `json:"email"      db:"email"`
	AuthToken string     `json:"-"          db:"auth_token"`
	Password  string     `json:"-"          db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

/* ─── Request bodies ─────────────────────────────────────────────────── */

// createHabitRequest is the request body for POST /habits/.
type createHabitRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Goal        *int    `json:"goal"`
}

// optional is a JSON field that records whether it was present in the body.
// An explicit null sets Set with a nil Value; an absent key leaves Set false.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// updateHabitRequest is the request body for PUT /habits/:habit_id.
// Only keys present in the body are written; "description": null clears it.
type updateHabitRequest struct {
	Name        optional[string] `json:"name"`
	Description optional[string] `json:"description"`
	Goal        *int             `json:"goal"`
}

// toggleLogRequest is the request body for both toggle routes.
type toggleLogRequest struct {
	HabitID *int   `json:"habit_id"`
	Date    string `json:"date"`
}

// moodRequest is the request body for POST /moods/ and PUT /moods/:mood_id.
type moodRequest struct {
	Date string  `json:"date"`
	Mood string  `json:"mood"`
	Note *string `json:"note"`
}

/* ─── Responses ──────────────────────────────────────────────────────── */

// habitProgress is one habit's row in the GET /habits/logs matrix.
// Logs is aligned index-for-index with the response's dates.
type habitProgress struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Goal     int    `json:"goal"`
	Logs     []bool `json:"logs"`
	Achieved int    `json:"achieved"`
}

// habitLogsResponse is the response shape for GET /habits/logs.
type habitLogsResponse struct {
	Period string          `json:"period"`
	Dates  []DateOnly      `json:"dates"`
	Habits []habitProgress `json:"habits"`
}

// insightDay is one day of the 7-day mood/habit window. Mood is nil when
// nothing was logged that day.
type insightDay struct {
	Date   DateOnly `json:"date"`
	Mood   *string  `json:"mood"`
	Habits []string `json:"habits"`
}

// weeklyInsightResponse is the response shape for GET /insights/weekly.
type weeklyInsightResponse struct {
	Summary             string   `json:"summary"`
	MoodEntriesAnalyzed int      `json:"mood_entries_analyzed"`
	HabitsTracked       []string `json:"habits_tracked"`
}
