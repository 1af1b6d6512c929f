package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusware/advisor/internal/core/domain"
)

func TestSessionsListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := executeCommand("sessions", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No saved sessions.")
}

func TestSessionsCmds_RoundTrip(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()
	sess, err := sessionStore.Create(ctx)
	require.NoError(t, err)
	sess.Turns = []domain.Turn{
		{Role: domain.RoleUser, Content: "what are the fees?", Language: "en"},
		{Role: domain.RoleAssistant, Content: "There are no tuition fees.", Language: "en"},
	}
	require.NoError(t, sessionStore.Save(ctx, sess))

	out, err := executeCommand("sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, sess.ID)
	assert.Contains(t, out, "what are the fees?")

	out, err = executeCommand("sessions", "show", sess.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "You: what are the fees?")
	assert.Contains(t, out, "Advisor: There are no tuition fees.")

	out, err = executeCommand("sessions", "delete", sess.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted session")

	_, err = executeCommand("sessions", "show", sess.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
