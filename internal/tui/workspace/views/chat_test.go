package views

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui/workspace"
)

func testChat(t *testing.T) (*Chat, *harness) {
	t.Helper()
	h := newHarness(t, fixtureState())
	v := NewChat(h.session)
	v.SetSize(80, 20)
	return v, h
}

func TestChatShowsGreeting(t *testing.T) {
	v, _ := testChat(t)
	view := ansi.Strip(v.View())

	assert.Contains(t, view, "Assistant")
	assert.Contains(t, view, "How can I help you?")
	assert.True(t, v.InputActive(), "compose line starts focused")
}

func TestChatSendsMessage(t *testing.T) {
	v, h := testChat(t)

	typeText(v, "Who is free on Friday?")
	_, cmd := v.Update(press("enter"))
	collect(cmd)

	a := h.rec.waitFor(t, state.KindSendBotMessage).(state.SendBotMessage)
	assert.Equal(t, "Who is free on Friday?", a.Message.Message)
	assert.Equal(t, models.SenderUser, a.Message.Sender)
	assert.WithinDuration(t, time.Now(), a.Message.Timestamp, time.Minute)
	assert.Empty(t, v.input.Value())
}

func TestChatIgnoresBlankInput(t *testing.T) {
	v, _ := testChat(t)

	typeText(v, "   ")
	_, cmd := v.Update(press("enter"))
	assert.Nil(t, cmd)
}

func TestChatWaitingForReply(t *testing.T) {
	v, h := testChat(t)

	waiting := fixtureState()
	waiting.Messages = append(waiting.Messages, models.ChatMessage{
		Message: "Who is free?", Sender: models.SenderUser, Timestamp: time.Now(),
	})
	waiting.IsWaitingForMessageResponse = true

	_, cmd := v.Update(workspace.StoreChangedMsg{State: waiting})
	require.NotNil(t, cmd)
	_, isTick := cmd().(spinner.TickMsg)
	assert.True(t, isTick)

	view := ansi.Strip(v.View())
	assert.Contains(t, view, "Who is free?")
	assert.Contains(t, view, "typing")

	typeText(v, "hello?")
	_, cmd = v.Update(press("enter"))
	status, ok := findMsg[workspace.StatusMsg](collect(cmd))
	require.True(t, ok)
	assert.True(t, status.IsError)

	h.flush(t)
	assert.False(t, h.has(state.KindSendBotMessage))
}

func TestChatRendersReply(t *testing.T) {
	v, _ := testChat(t)

	done := fixtureState()
	done.Messages = append(done.Messages,
		models.ChatMessage{Message: "Plan?", Sender: models.SenderUser, Timestamp: time.Now()},
		models.ChatMessage{Message: "Ada is on **Apollo** all week.", Sender: models.SenderBot, Timestamp: time.Now()},
	)
	v.Update(workspace.StoreChangedMsg{State: done})

	view := ansi.Strip(v.View())
	assert.Contains(t, view, "You")
	assert.Contains(t, view, "Apollo")
	assert.NotContains(t, view, "typing")
}

func TestChatEscReleasesInput(t *testing.T) {
	v, _ := testChat(t)

	require.True(t, v.IsModal())
	v.Update(press("esc"))
	assert.False(t, v.InputActive())
	assert.False(t, v.IsModal())

	v.Update(press("i"))
	assert.True(t, v.InputActive())
	assert.Empty(t, v.input.Value(), "i only refocuses")
}
