package models_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/opsx/collab/server/internal/database"
	"github.com/opsx/collab/server/internal/models"
	"github.com/stretchr/testify/require"
)

func openQueries(t *testing.T) *models.Queries {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "opsx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	q := models.New(db.DB)
	require.NoError(t, q.EnsureProject(context.Background(), models.EnsureProjectParams{
		ID: "p1", CreatedAt: models.FormatTime(time.Unix(0, 0)),
	}))
	return q
}

func TestEnsureProject_Idempotent(t *testing.T) {
	t.Parallel()

	q := openQueries(t)
	ctx := context.Background()

	require.NoError(t, q.EnsureProject(ctx, models.EnsureProjectParams{
		ID: "p1", Name: "renamed", CreatedAt: models.FormatTime(time.Now()),
	}))
	p, err := q.GetProject(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, p.Name)

	_, err = q.GetProject(ctx, "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListChatMessages_TailOldestFirst(t *testing.T) {
	t.Parallel()

	q := openQueries(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"m1", "m2", "m3", "m4"} {
		require.NoError(t, q.CreateChatMessage(ctx, models.ChatMessage{
			ID:        id,
			ProjectID: "p1",
			Text:      id,
			IsAI:      i == 2,
			CreatedAt: models.FormatTime(base.Add(time.Duration(i) * time.Second)),
		}))
	}

	msgs, err := q.ListChatMessages(ctx, models.ListChatMessagesParams{ProjectID: "p1", Limit: 3})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, "m2", msgs[0].ID)
	require.Equal(t, "m3", msgs[1].ID)
	require.Equal(t, "m4", msgs[2].ID)
	require.True(t, msgs[1].IsAI)

	msgs, err = q.ListChatMessages(ctx, models.ListChatMessagesParams{ProjectID: "other", Limit: 10})
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestUpsertAgent_KeepsIdentityOnStatusOnlyUpdate(t *testing.T) {
	t.Parallel()

	q := openQueries(t)
	ctx := context.Background()

	require.NoError(t, q.UpsertAgent(ctx, models.Agent{
		ID: "a1", ProjectID: "p1", Type: "planner", Name: "Planner",
		Status: "idle", UpdatedAt: models.FormatTime(time.Now()),
	}))
	require.NoError(t, q.UpsertAgent(ctx, models.Agent{
		ID: "a1", ProjectID: "p1", Status: "thinking", CurrentTask: "draft roadmap",
		UpdatedAt: models.FormatTime(time.Now()),
	}))

	a, err := q.GetAgent(ctx, models.GetAgentParams{ProjectID: "p1", ID: "a1"})
	require.NoError(t, err)
	require.Equal(t, "planner", a.Type)
	require.Equal(t, "Planner", a.Name)
	require.Equal(t, "thinking", a.Status)
	require.Equal(t, "draft roadmap", a.CurrentTask)

	agents, err := q.ListAgents(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, agents, 1)
}

func TestStakeholders_ListInJoinOrder(t *testing.T) {
	t.Parallel()

	q := openQueries(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, q.CreateStakeholder(ctx, models.Stakeholder{
		ID: "s2", ProjectID: "p1", Name: "Grace", Role: "Backend",
		CreatedAt: models.FormatTime(base.Add(time.Minute)),
	}))
	require.NoError(t, q.CreateStakeholder(ctx, models.Stakeholder{
		ID: "s1", ProjectID: "p1", Name: "Ada", Role: "Founder",
		CreatedAt: models.FormatTime(base),
	}))

	items, err := q.ListStakeholders(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Ada", items[0].Name)

	s, err := q.GetStakeholder(ctx, models.GetStakeholderParams{ProjectID: "p1", ID: "s2"})
	require.NoError(t, err)
	require.Equal(t, "Backend", s.Role)
}
