package outbox

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	inserted []string
}

func (r *recordingRepo) InsertDraftEvent(_ context.Context, _ uuid.UUID, eventType string, _ []byte) error {
	r.inserted = append(r.inserted, eventType)
	return nil
}

func TestInsertDraftEvent(t *testing.T) {
	repo := &recordingRepo{}
	app := NewApp(repo)
	ctx := context.Background()

	err := app.InsertDraftEvent(ctx, uuid.New(), "PickMade", []byte(`{"pick_number":3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"PickMade"}, repo.inserted)
}

func TestInsertDraftEvent_RejectsBadInput(t *testing.T) {
	repo := &recordingRepo{}
	app := NewApp(repo)
	ctx := context.Background()

	err := app.InsertDraftEvent(ctx, uuid.New(), "", []byte(`{}`))
	assert.Error(t, err)

	err = app.InsertDraftEvent(ctx, uuid.New(), "PickMade", nil)
	assert.Error(t, err)

	err = app.InsertDraftEvent(ctx, uuid.New(), "PickMade", []byte(`{not json`))
	assert.Error(t, err)

	assert.Empty(t, repo.inserted)
}
