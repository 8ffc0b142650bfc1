package main

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// memStore is an in-memory dataStore with the same constraint behaviour as
// the Postgres schema: unique habit names, unique (habit_id, date) logs,
// unique mood dates and unique user emails.
type memStore struct {
	mu      sync.Mutex
	nextID  int
	habits  map[int]habit
	logs    map[int]habitLog
	moods   map[int]moodEntry
	users   map[int]user
	pingErr error
	failAll error // returned by the habit read/create methods when set
}

func newMemStore() *memStore {
	return &memStore{
		habits: map[int]habit{},
		logs:   map[int]habitLog{},
		moods:  map[int]moodEntry{},
		users:  map[int]user{},
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *memStore) Ping(ctx context.Context) error { return m.pingErr }

func (m *memStore) CreateHabit(ctx context.Context, req createHabitRequest, today DateOnly) (habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return habit{}, m.failAll
	}
	for _, h := range m.habits {
		if h.Name == req.Name {
			return habit{}, conflictError("a habit with that name already exists")
		}
	}
	goal := defaultHabitGoal
	if req.Goal != nil {
		goal = *req.Goal
	}
	h := habit{ID: m.id(), Name: req.Name, Description: req.Description, Goal: goal}
	m.habits[h.ID] = h
	if m.findLog(h.ID, today) == 0 {
		m.insertLog(h.ID, today)
	}
	return h, nil
}

func (m *memStore) ListHabits(ctx context.Context) ([]habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	out := []habit{}
	for _, h := range m.habits {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateHabit(ctx context.Context, id int, req updateHabitRequest) (habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.habits[id]
	if !ok {
		return habit{}, notFoundError("habit not found")
	}
	if req.Name.Set && req.Name.Value != nil {
		for _, other := range m.habits {
			if other.ID != id && other.Name == *req.Name.Value {
				return habit{}, conflictError("a habit with that name already exists")
			}
		}
		h.Name = *req.Name.Value
	}
	if req.Description.Set {
		h.Description = req.Description.Value
	}
	if req.Goal != nil {
		h.Goal = *req.Goal
	}
	m.habits[id] = h
	return h, nil
}

func (m *memStore) DeleteHabit(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.habits[id]; !ok {
		return notFoundError("habit not found")
	}
	for logID, l := range m.logs {
		if l.HabitID == id {
			delete(m.logs, logID)
		}
	}
	delete(m.habits, id)
	return nil
}

func (m *memStore) ToggleHabitLog(ctx context.Context, habitID int, date DateOnly) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.habits[habitID]; !ok {
		return false, notFoundError("habit not found")
	}
	if logID := m.findLog(habitID, date); logID != 0 {
		delete(m.logs, logID)
		return false, nil
	}
	m.insertLog(habitID, date)
	return true, nil
}

func (m *memStore) HabitLogsBetween(ctx context.Context, start, end DateOnly) ([]habitLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	out := []habitLog{}
	for _, l := range m.logs {
		h, ok := m.habits[l.HabitID]
		if !ok || l.Date.Before(start.Time) || l.Date.After(end.Time) {
			continue
		}
		l.HabitName = h.Name
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].HabitID < out[j].HabitID
	})
	return out, nil
}

// findLog returns the id of the (habitID, date) log, or 0. Caller holds mu.
func (m *memStore) findLog(habitID int, date DateOnly) int {
	for id, l := range m.logs {
		if l.HabitID == habitID && l.Date.Equal(date.Time) {
			return id
		}
	}
	return 0
}

// insertLog adds a log without checking for duplicates. Caller holds mu.
func (m *memStore) insertLog(habitID int, date DateOnly) {
	id := m.id()
	m.logs[id] = habitLog{ID: id, HabitID: habitID, Date: date}
}

// logCount returns how many logs exist for habitID.
func (m *memStore) logCount(habitID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.logs {
		if l.HabitID == habitID {
			n++
		}
	}
	return n
}

// addOrphanLog inserts a log whose habit does not exist, as a dangling
// reference would look in a database without the foreign key.
func (m *memStore) addOrphanLog(habitID int, date DateOnly) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertLog(habitID, date)
}

func (m *memStore) UpsertMood(ctx context.Context, date DateOnly, mood string, note *string) (moodEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, e := range m.moods {
		if e.Date.Equal(date.Time) {
			e.Mood, e.Note, e.UpdatedAt = mood, note, &now
			m.moods[id] = e
			return e, false, nil
		}
	}
	e := moodEntry{ID: m.id(), Date: date, Mood: mood, Note: note, CreatedAt: &now, UpdatedAt: &now}
	m.moods[e.ID] = e
	return e, true, nil
}

func (m *memStore) ListMoods(ctx context.Context) ([]moodEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []moodEntry{}
	for _, e := range m.moods {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) MoodsBetween(ctx context.Context, start, end DateOnly) ([]moodEntry, error) {
	all, _ := m.ListMoods(ctx)
	out := []moodEntry{}
	for _, e := range all {
		if !e.Date.Before(start.Time) && !e.Date.After(end.Time) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (m *memStore) UpdateMood(ctx context.Context, id int, date DateOnly, mood string, note *string) (moodEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.moods[id]
	if !ok {
		return moodEntry{}, notFoundError("mood entry not found")
	}
	for otherID, other := range m.moods {
		if otherID != id && other.Date.Equal(date.Time) {
			return moodEntry{}, conflictError("another mood entry already exists for that date")
		}
	}
	e.Date, e.Mood, e.Note = date, mood, note
	m.moods[id] = e
	return e, nil
}

func (m *memStore) DeleteMood(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.moods[id]; !ok {
		return notFoundError("mood entry not found")
	}
	delete(m.moods, id)
	return nil
}

func (m *memStore) CreateUser(ctx context.Context, name, email, passwordHash, authToken string) (user, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return user{}, conflictError("email already registered")
		}
	}
	u := user{ID: m.id(), Name: name, Email: email, Password: passwordHash, AuthToken: authToken}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) UserByEmail(ctx context.Context, email string) (user, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user{}, notFoundError("user not found")
}

func (m *memStore) UserIDByToken(ctx context.Context, token string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.AuthToken == token {
			return u.ID, nil
		}
	}
	return 0, notFoundError("invalid token")
}

var _ dataStore = (*memStore)(nil)

// errBoom is a storage failure that is none of the known error kinds.
var errBoom = errors.New("connection reset")

// fixedNow is the clock used by handler tests: Thursday 2024-03-14, 10:30 local.
var fixedNow = time.Date(2024, time.March, 14, 10, 30, 0, 0, time.UTC)

// newTestHandler wires a Handler around a fresh memStore with a fixed clock.
func newTestHandler(generateURL string) (*Handler, *memStore) {
	store := newMemStore()
	h := &Handler{
		db:       store,
		insights: newGenerateClient(generateURL, "test-model", 2*time.Second),
		log:      zap.NewNop().Sugar(),
		now:      func() time.Time { return fixedNow },
	}
	return h, store
}
