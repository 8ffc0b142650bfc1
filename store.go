package main

import "context"

// dataStore is the persistence boundary used by every handler. Each method
// is one user-visible operation and runs in its own transaction when it
// touches more than one row. pgStore is the production implementation.
type dataStore interface {
	Ping(ctx context.Context) error

	// CreateHabit inserts the habit and logs it for today in one transaction.
	CreateHabit(ctx context.Context, req createHabitRequest, today DateOnly) (habit, error)
	ListHabits(ctx context.Context) ([]habit, error)
	UpdateHabit(ctx context.Context, id int, req updateHabitRequest) (habit, error)
	// DeleteHabit removes the habit's logs and then the habit itself.
	DeleteHabit(ctx context.Context, id int) error
	// ToggleHabitLog deletes the (habit, date) log if present, otherwise
	// creates it. checked reports whether a log exists afterwards.
	ToggleHabitLog(ctx context.Context, habitID int, date DateOnly) (checked bool, err error)
	// HabitLogsBetween returns logs in [start, end] joined with habit names.
	HabitLogsBetween(ctx context.Context, start, end DateOnly) ([]habitLog, error)

	// UpsertMood writes the mood for date, updating in place when the date
	// already has an entry. created is false for an in-place update.
	UpsertMood(ctx context.Context, date DateOnly, mood string, note *string) (entry moodEntry, created bool, err error)
	ListMoods(ctx context.Context) ([]moodEntry, error)
	MoodsBetween(ctx context.Context, start, end DateOnly) ([]moodEntry, error)
	UpdateMood(ctx context.Context, id int, date DateOnly, mood string, note *string) (moodEntry, error)
	DeleteMood(ctx context.Context, id int) error

	CreateUser(ctx context.Context, name, email, passwordHash, authToken string) (user, error)
	UserByEmail(ctx context.Context, email string) (user, error)
	UserIDByToken(ctx context.Context, token string) (int, error)
}
