package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/internal/output"
)

type reply struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Sender  string `json:"sender"`
	HTML    string `json:"html"`
}

func TestChatReply(t *testing.T) {
	e := newTestEnv(t)

	env := e.runJSON(t, "chat", "who", "is", "free", "tomorrow?")
	got := dataAs[reply](t, env)
	assert.Equal(t, "You asked: who is free tomorrow?", got.Message)
	assert.Equal(t, "bot", got.Sender)
	assert.Empty(t, got.HTML)
	assert.Equal(t, "Assistant replied", env.Summary)
}

func TestChatHTML(t *testing.T) {
	e := newTestEnv(t)

	got := dataAs[reply](t, e.runJSON(t, "chat", "--html", "**hello**"))
	assert.Contains(t, got.HTML, "<strong>")
}

func TestChatFailureFallsBackToApology(t *testing.T) {
	e := newTestEnv(t)
	e.backend.failChat = true

	got := dataAs[reply](t, e.runJSON(t, "chat", "hello"))
	assert.Equal(t, "Sorry, I encountered an error. Please try again later.", got.Message)
	assert.Equal(t, "bot", got.Sender)
	assert.Equal(t, 1, e.backend.sent("POST /api/chat"))
}

func TestChatNeedsMessage(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run(t, "chat", "--json")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}
