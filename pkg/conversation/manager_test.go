package conversation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageRejectsUnknownRole(t *testing.T) {
	_, err := NewMessage(Role("tool"), "nope")
	require.Error(t, err)

	_, err = NewMessage(Role(""), "nope")
	require.Error(t, err)
}

func TestAppendPreservesOrder(t *testing.T) {
	manager := NewManager(WithMessages(
		MustNewMessage(RoleSystem, "you are an interviewer"),
	))
	manager.AppendMessages(MustNewMessage(RoleUser, "hi, I'm Ada"))
	manager.AppendMessages(MustNewMessage(RoleAssistant, "welcome Ada"))

	messages := manager.GetConversation()
	require.Len(t, messages, 3)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Equal(t, RoleUser, messages[1].Role)
	assert.Equal(t, RoleAssistant, messages[2].Role)
}

func TestRenderStartsWithSystemLine(t *testing.T) {
	manager := NewManager(WithMessages(
		MustNewMessage(RoleSystem, "you are an interviewer"),
		MustNewMessage(RoleUser, "hi"),
		MustNewMessage(RoleAssistant, "hello"),
	))

	rendered := manager.GetConversation().Render()
	assert.Equal(t, "system: you are an interviewer\nuser: hi\nassistant: hello", rendered)
}

func TestUserMessageCount(t *testing.T) {
	manager := NewManager()
	assert.Equal(t, 0, manager.UserMessageCount())

	manager.AppendMessages(MustNewMessage(RoleSystem, "sys"))
	assert.Equal(t, 0, manager.UserMessageCount())

	manager.AppendMessages(MustNewMessage(RoleUser, "one"))
	manager.AppendMessages(MustNewMessage(RoleAssistant, "reply"))
	manager.AppendMessages(MustNewMessage(RoleUser, "two"))
	assert.Equal(t, 2, manager.UserMessageCount())
}

func TestWithoutSystem(t *testing.T) {
	conv := Conversation{
		MustNewMessage(RoleSystem, "sys"),
		MustNewMessage(RoleUser, "hi"),
	}

	visible := conv.WithoutSystem()
	require.Len(t, visible, 1)
	assert.Equal(t, RoleUser, visible[0].Role)
}

func TestSaveToFile(t *testing.T) {
	manager := NewManager(WithMessages(
		MustNewMessage(RoleSystem, "sys"),
		MustNewMessage(RoleUser, "hi"),
	))

	path := filepath.Join(t.TempDir(), "interview_transcript.txt")
	require.NoError(t, manager.SaveToFile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "system: sys\nuser: hi", string(content))
}
