package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the row helpers
// work inside and outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Returns pgx.ErrNoRows when the query matched nothing.
func queryOne[T any](ctx context.Context, q querier, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		var zero T
		return zero, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
// An empty result is a non-nil empty slice so JSON renders [] rather than null.
func queryMany[T any](ctx context.Context, q querier, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

/* ─── Store ───────────────────────────────────────────────────────────── */

// pgPool is the subset of *pgxpool.Pool the store uses.
type pgPool interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// pgStore implements dataStore on a pgx connection pool.
type pgStore struct {
	pool pgPool
}

// poolConfig parses dbURL into the pool settings every connection uses.
func poolConfig(dbURL string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Simple protocol avoids "cached plan must not change result type"
	// errors from server-side statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	return config, nil
}

// newDBPool creates a connection pool. A pool (not a single conn) because
// managed Postgres providers close idle connections.
func newDBPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := poolConfig(dbURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

/* ─── Habits ──────────────────────────────────────────────────────────── */

func (s *pgStore) CreateHabit(ctx context.Context, req createHabitRequest, today DateOnly) (habit, error) {
	goal := defaultHabitGoal
	if req.Goal != nil {
		goal = *req.Goal
	}

	var created habit
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		h, err := queryOne[habit](ctx, tx,
			`INSERT INTO habits (name, description, goal)
			 VALUES (@name, @description, @goal)
			 RETURNING *`,
			pgx.NamedArgs{"name": req.Name, "description": req.Description, "goal": goal})
		if err != nil {
			return classifyPgError(err, "", "a habit with that name already exists")
		}

		// Creating a habit counts as doing it today.
		if _, err := tx.Exec(ctx,
			`INSERT INTO habit_logs (habit_id, date) VALUES (@habitID, @date)
			 ON CONFLICT (habit_id, date) DO NOTHING`,
			pgx.NamedArgs{"habitID": h.ID, "date": today.String()}); err != nil {
			return fmt.Errorf("log new habit: %w", err)
		}
		created = h
		return nil
	})
	return created, err
}

func (s *pgStore) ListHabits(ctx context.Context) ([]habit, error) {
	return queryMany[habit](ctx, s.pool, "SELECT * FROM habits ORDER BY id", pgx.NamedArgs{})
}

// UpdateHabit uses COALESCE so omitted name and goal keep their current
// value. description is written whenever the key was sent, so null clears it.
func (s *pgStore) UpdateHabit(ctx context.Context, id int, req updateHabitRequest) (habit, error) {
	h, err := queryOne[habit](ctx, s.pool,
		`UPDATE habits SET
			name        = COALESCE(@name, name),
			description = CASE WHEN @setDescription THEN @description ELSE description END,
			goal        = COALESCE(@goal, goal)
		 WHERE id = @id
		 RETURNING *`,
		pgx.NamedArgs{
			"id":             id,
			"name":           req.Name.Value,
			"setDescription": req.Description.Set,
			"description":    req.Description.Value,
			"goal":           req.Goal,
		})
	return h, classifyPgError(err, "habit not found", "a habit with that name already exists")
}

func (s *pgStore) DeleteHabit(ctx context.Context, id int) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		args := pgx.NamedArgs{"id": id}
		if _, err := tx.Exec(ctx, "DELETE FROM habit_logs WHERE habit_id = @id", args); err != nil {
			return fmt.Errorf("delete habit logs: %w", err)
		}
		result, err := tx.Exec(ctx, "DELETE FROM habits WHERE id = @id", args)
		if err != nil {
			return fmt.Errorf("delete habit: %w", err)
		}
		if result.RowsAffected() == 0 {
			return notFoundError("habit not found")
		}
		return nil
	})
}

// ToggleHabitLog runs delete-else-insert in one transaction. The habit row
// is locked FOR SHARE so the habit cannot be deleted mid-toggle, and the
// UNIQUE(habit_id, date) constraint keeps concurrent toggles from
// producing duplicate logs.
func (s *pgStore) ToggleHabitLog(ctx context.Context, habitID int, date DateOnly) (bool, error) {
	var checked bool
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		args := pgx.NamedArgs{"habitID": habitID, "date": date.String()}

		var id int
		err := tx.QueryRow(ctx, "SELECT id FROM habits WHERE id = @habitID FOR SHARE", args).Scan(&id)
		if err != nil {
			return classifyPgError(err, "habit not found", "")
		}

		result, err := tx.Exec(ctx,
			"DELETE FROM habit_logs WHERE habit_id = @habitID AND date = @date", args)
		if err != nil {
			return fmt.Errorf("delete habit log: %w", err)
		}
		if result.RowsAffected() > 0 {
			checked = false
			return nil
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO habit_logs (habit_id, date) VALUES (@habitID, @date)
			 ON CONFLICT (habit_id, date) DO NOTHING`, args); err != nil {
			return fmt.Errorf("insert habit log: %w", err)
		}
		checked = true
		return nil
	})
	return checked, err
}

func (s *pgStore) HabitLogsBetween(ctx context.Context, start, end DateOnly) ([]habitLog, error) {
	return queryMany[habitLog](ctx, s.pool,
		`SELECT l.id, l.date, l.habit_id, h.name AS habit_name
		 FROM habit_logs l
		 JOIN habits h ON h.id = l.habit_id
		 WHERE l.date >= @start AND l.date <= @end
		 ORDER BY l.date, h.id`,
		pgx.NamedArgs{"start": start.String(), "end": end.String()})
}

/* ─── Moods ───────────────────────────────────────────────────────────── */

// UpsertMood relies on UNIQUE(date): posting the same date updates in place
// and keeps the row's id. xmax is 0 only on a freshly inserted row, which
// reports created from the same statement that wrote it.
func (s *pgStore) UpsertMood(ctx context.Context, date DateOnly, mood string, note *string) (moodEntry, bool, error) {
	row, err := queryOne[struct {
		moodEntry
		Inserted bool `db:"inserted"`
	}](ctx, s.pool,
		`INSERT INTO moods (date, mood, note)
		 VALUES (@date, @mood, @note)
		 ON CONFLICT (date) DO UPDATE SET
			mood       = EXCLUDED.mood,
			note       = EXCLUDED.note,
			updated_at = now()
		 RETURNING id, date, mood, note, created_at, updated_at, (xmax = 0) AS inserted`,
		pgx.NamedArgs{"date": date.String(), "mood": mood, "note": note})
	if err != nil {
		return moodEntry{}, false, fmt.Errorf("upsert mood: %w", err)
	}
	return row.moodEntry, row.Inserted, nil
}

func (s *pgStore) ListMoods(ctx context.Context) ([]moodEntry, error) {
	return queryMany[moodEntry](ctx, s.pool, "SELECT * FROM moods ORDER BY id", pgx.NamedArgs{})
}

func (s *pgStore) MoodsBetween(ctx context.Context, start, end DateOnly) ([]moodEntry, error) {
	return queryMany[moodEntry](ctx, s.pool,
		`SELECT * FROM moods
		 WHERE date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"start": start.String(), "end": end.String()})
}

// UpdateMood replaces every field. Moving an entry onto a date that already
// has another entry violates UNIQUE(date) and is reported as a conflict.
func (s *pgStore) UpdateMood(ctx context.Context, id int, date DateOnly, mood string, note *string) (moodEntry, error) {
	e, err := queryOne[moodEntry](ctx, s.pool,
		`UPDATE moods SET
			date       = @date,
			mood       = @mood,
			note       = @note,
			updated_at = now()
		 WHERE id = @id
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "date": date.String(), "mood": mood, "note": note})
	return e, classifyPgError(err, "mood entry not found", "another mood entry already exists for that date")
}

func (s *pgStore) DeleteMood(ctx context.Context, id int) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM moods WHERE id = @id", pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete mood: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFoundError("mood entry not found")
	}
	return nil
}

/* ─── Users ───────────────────────────────────────────────────────────── */

func (s *pgStore) CreateUser(ctx context.Context, name, email, passwordHash, authToken string) (user, error) {
	u, err := queryOne[user](ctx, s.pool,
		`INSERT INTO users (name, email, password, auth_token)
		 VALUES (@name, @email, @password, @authToken)
		 RETURNING *`,
		pgx.NamedArgs{"name": name, "email": email, "password": passwordHash, "authToken": authToken})
	return u, classifyPgError(err, "", "email already registered")
}

func (s *pgStore) UserByEmail(ctx context.Context, email string) (user, error) {
	u, err := queryOne[user](ctx, s.pool,
		"SELECT * FROM users WHERE email = @email",
		pgx.NamedArgs{"email": email})
	return u, classifyPgError(err, "user not found", "")
}

func (s *pgStore) UserIDByToken(ctx context.Context, token string) (int, error) {
	var userID int
	err := s.pool.QueryRow(ctx, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
	return userID, classifyPgError(err, "invalid token", "")
}
