package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moodEnvelope struct {
	Message string    `json:"message"`
	Mood    moodEntry `json:"mood"`
}

func TestLogMood_UpsertByDate(t *testing.T) {
	router, store := setupHabitTest(t)

	w := doRequest(router, http.MethodPost, "/moods/", `{"date":"2024-03-14","mood":"happy","note":"sunny"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[moodEnvelope](t, w)
	assert.Equal(t, "Mood logged", first.Message)
	assert.Equal(t, "2024-03-14", first.Mood.Date.String())

	w = doRequest(router, http.MethodPost, "/moods/", `{"date":"2024-03-14","mood":"tired"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[moodEnvelope](t, w)
	assert.Equal(t, "Mood updated", second.Message)
	assert.Equal(t, first.Mood.ID, second.Mood.ID)
	assert.Equal(t, "tired", second.Mood.Mood)
	assert.Nil(t, second.Mood.Note, "note is overwritten, not merged")

	moods, _ := store.ListMoods(t.Context())
	assert.Len(t, moods, 1)

	w = doRequest(router, http.MethodPost, "/moods/", `{"date":"2024-03-15","mood":"calm"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	moods, _ = store.ListMoods(t.Context())
	assert.Len(t, moods, 2)
}

func TestLogMood_Validation(t *testing.T) {
	router, _ := setupHabitTest(t)

	for _, body := range []string{
		`{"mood":"happy"}`,
		`{"date":"2024-13-01","mood":"happy"}`,
		`{"date":"2024-03-14"}`,
		`{"date":"2024-03-14","mood":"  "}`,
	} {
		w := doRequest(router, http.MethodPost, "/moods/", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestListMoods_StorageOrder(t *testing.T) {
	router, _ := setupHabitTest(t)

	w := doRequest(router, http.MethodGet, "/moods/", "")
	assert.JSONEq(t, `{"moods":[]}`, w.Body.String())

	doRequest(router, http.MethodPost, "/moods/", `{"date":"2024-03-20","mood":"a"}`)
	doRequest(router, http.MethodPost, "/moods/", `{"date":"2024-03-01","mood":"b"}`)

	w = doRequest(router, http.MethodGet, "/moods/", "")
	resp := decode[struct {
		Moods []moodEntry `json:"moods"`
	}](t, w)
	require.Len(t, resp.Moods, 2)
	assert.Equal(t, "a", resp.Moods[0].Mood)
	assert.Equal(t, "b", resp.Moods[1].Mood)
}

func TestUpdateMood(t *testing.T) {
	router, _ := setupHabitTest(t)
	w := doRequest(router, http.MethodPost, "/moods/", `{"date":"2024-03-01","mood":"ok","note":"x"}`)
	a := decode[moodEnvelope](t, w).Mood
	w = doRequest(router, http.MethodPost, "/moods/", `{"date":"2024-03-02","mood":"meh"}`)
	b := decode[moodEnvelope](t, w).Mood

	// Wholesale replace, including moving to a free date.
	w = doRequest(router, http.MethodPut, fmt.Sprintf("/moods/%d", a.ID), `{"date":"2024-03-05","mood":"great"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[moodEnvelope](t, w).Mood
	assert.Equal(t, a.ID, updated.ID)
	assert.Equal(t, "2024-03-05", updated.Date.String())
	assert.Equal(t, "great", updated.Mood)
	assert.Nil(t, updated.Note)

	// Moving onto another entry's date is rejected.
	w = doRequest(router, http.MethodPut, fmt.Sprintf("/moods/%d", a.ID), `{"date":"2024-03-02","mood":"great"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Keeping its own date is fine.
	w = doRequest(router, http.MethodPut, fmt.Sprintf("/moods/%d", b.ID), `{"date":"2024-03-02","mood":"better"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPut, "/moods/999", `{"date":"2024-03-09","mood":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteMood(t *testing.T) {
	router, store := setupHabitTest(t)
	w := doRequest(router, http.MethodPost, "/moods/", `{"date":"2024-03-01","mood":"ok"}`)
	m := decode[moodEnvelope](t, w).Mood

	w = doRequest(router, http.MethodDelete, fmt.Sprintf("/moods/%d", m.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	moods, _ := store.ListMoods(t.Context())
	assert.Empty(t, moods)

	w = doRequest(router, http.MethodDelete, fmt.Sprintf("/moods/%d", m.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
