package draft

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer wires the HTTP layer to a real App over the in-memory
// store, so requests exercise routing, decoding, and error mapping.
func newTestServer(t *testing.T) (*httptest.Server, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))
	app := NewApp(repo, &fakeOutbox{}, clock, rand.New(rand.NewSource(1)))

	srv := httptest.NewServer(NewService(app).Routes())
	t.Cleanup(srv.Close)
	return srv, repo
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func createTestDraft(t *testing.T, srv *httptest.Server, participants []uuid.UUID, rounds int) uuid.UUID {
	t.Helper()
	resources := make([]string, len(participants)*rounds)
	for i := range resources {
		resources[i] = fmt.Sprintf("res-%d", i+1)
	}

	resp := postJSON(t, srv.URL+"/", CreateDraftRequest{
		PoolID:         uuid.New(),
		TotalRounds:    rounds,
		ParticipantIDs: participants,
		ResourceIDs:    resources,
		CreatedBy:      participants[0],
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Draft struct {
			ID uuid.UUID `json:"id"`
		} `json:"draft"`
	}
	decodeBody(t, resp, &out)
	return out.Draft.ID
}

func TestService_CreateAndStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	participants := []uuid.UUID{uuid.New(), uuid.New()}
	id := createTestDraft(t, srv, participants, 1)

	resp, err := http.Get(fmt.Sprintf("%s/%s", srv.URL, id))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status Status
	decodeBody(t, resp, &status)
	assert.Equal(t, id, status.Draft.ID)
	assert.Len(t, status.AvailableResources, 2)
	assert.Nil(t, status.CurrentPicker)
}

func TestService_CreateValidationFails(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/", CreateDraftRequest{
		PoolID:      uuid.New(),
		TotalRounds: 1,
		CreatedBy:   uuid.New(),
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestService_ErrorMapping(t *testing.T) {
	srv, repo := newTestServer(t)
	participants := []uuid.UUID{uuid.New(), uuid.New()}
	id := createTestDraft(t, srv, participants, 1)

	// Unknown draft id -> 404.
	resp := postJSON(t, fmt.Sprintf("%s/%s/start", srv.URL, uuid.New()), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Malformed id -> 400.
	resp = postJSON(t, srv.URL+"/not-a-uuid/start", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Pause before start -> 409 invalid state.
	resp = postJSON(t, fmt.Sprintf("%s/%s/pause", srv.URL, id), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postJSON(t, fmt.Sprintf("%s/%s/start", srv.URL, id), nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Out-of-turn pick -> 403.
	draft, err := repo.GetDraft(t.Context(), id)
	require.NoError(t, err)
	resp = postJSON(t, fmt.Sprintf("%s/%s/picks", srv.URL, id), map[string]any{
		"participant_id": draft.DraftOrder[1],
		"resource_id":    "res-1",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Reserved resource id -> 400.
	resp = postJSON(t, fmt.Sprintf("%s/%s/picks", srv.URL, id), map[string]any{
		"participant_id": draft.DraftOrder[0],
		"resource_id":    "skipped",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Taken resource -> 409.
	resp = postJSON(t, fmt.Sprintf("%s/%s/picks", srv.URL, id), map[string]any{
		"participant_id": draft.DraftOrder[0],
		"resource_id":    "res-1",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = postJSON(t, fmt.Sprintf("%s/%s/picks", srv.URL, id), map[string]any{
		"participant_id": draft.DraftOrder[1],
		"resource_id":    "res-1",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestService_ForceSkipAndTimeoutCheck(t *testing.T) {
	srv, repo := newTestServer(t)
	participants := []uuid.UUID{uuid.New(), uuid.New()}
	id := createTestDraft(t, srv, participants, 1)

	resp := postJSON(t, fmt.Sprintf("%s/%s/start", srv.URL, id), nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, fmt.Sprintf("%s/%s/force-skip", srv.URL, id), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var skipOut struct {
		Pick struct {
			ResourceID string `json:"resource_id"`
		} `json:"pick"`
	}
	decodeBody(t, resp, &skipOut)
	assert.Equal(t, "skipped", skipOut.Pick.ResourceID)

	// Deadline far in the future: the check is a no-op.
	resp = postJSON(t, fmt.Sprintf("%s/%s/check-timeout", srv.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result TimeoutResult
	decodeBody(t, resp, &result)
	assert.False(t, result.Skipped)

	picks, err := repo.ListPicks(t.Context(), id)
	require.NoError(t, err)
	assert.Len(t, picks, 1)
}

func TestService_UpdateSettings(t *testing.T) {
	srv, _ := newTestServer(t)
	participants := []uuid.UUID{uuid.New(), uuid.New()}
	id := createTestDraft(t, srv, participants, 1)

	body, err := json.Marshal(map[string]any{"time_per_pick_sec": 300})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/%s/settings", srv.URL, id), bytes.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Settings struct {
			TimePerPickSec int `json:"time_per_pick_sec"`
		} `json:"settings"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, 300, out.Settings.TimePerPickSec)
}
