package prompt

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/eduverse-backend/internal/chat/conversation"
	"github.com/yungbote/eduverse-backend/internal/chat/curriculum"
	"github.com/yungbote/eduverse-backend/internal/chat/llm"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

func fixtureProject() *curriculum.Project {
	return &curriculum.Project{
		ProjectID:   "todo",
		ProjectName: "Todo App",
		Description: "Build a todo list",
		Difficulty:  "beginner",
		Tasks: []*curriculum.Task{{
			TaskID:      "setup",
			TaskName:    "Setup",
			Description: "Scaffold",
			Steps: []*curriculum.Step{{
				StepID:      "init",
				StepName:    "Init",
				Description: "Run vite",
				Guidelines:  []string{"npm create vite", "pick react"},
				Why:         curriculum.Lines{"fast"},
			}},
		}},
	}
}

func newBuilder(t *testing.T) (*Builder, *conversation.Store) {
	t.Helper()
	projects := curriculum.NewStatic(logger.Nop(), fixtureProject())
	store, err := conversation.NewStore(t.TempDir(), logger.Nop(), projects)
	require.NoError(t, err)
	return NewBuilder(logger.Nop(), store, projects), store
}

func TestBuildPromptWithProjectContext(t *testing.T) {
	b, store := newBuilder(t)
	c, err := store.Create(uuid.New(), "t", conversation.ProjectContext{ProjectID: "todo", TaskID: "setup", StepID: "init"})
	require.NoError(t, err)
	_, err = store.SaveMessage(c.ConversationID, conversation.RoleUser, "earlier question")
	require.NoError(t, err)
	_, err = store.SaveMessage(c.ConversationID, conversation.RoleEdura, "earlier answer")
	require.NoError(t, err)
	_, err = store.SaveMessage(c.ConversationID, conversation.RoleUser, "new question")
	require.NoError(t, err)

	msgs := b.BuildPrompt(c.ConversationID, "new question", 50)
	require.Len(t, msgs, 4, "just-saved input is not repeated")

	want := systemInstruction + "\n\nProject Context:\n" +
		"Project: Todo App (beginner)\n" +
		"Task: Setup\n" +
		"Step: Init\n" +
		"Step Description: Run vite\n" +
		"Guidelines:\n- npm create vite\n- pick react"
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: want}, msgs[0])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "earlier question"}, msgs[1])
	assert.Equal(t, llm.Message{Role: llm.RoleModel, Content: "earlier answer"}, msgs[2])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "new question"}, msgs[3])
}

func TestBuildPromptWithoutContextOrHistory(t *testing.T) {
	b, store := newBuilder(t)
	c, err := store.Create(uuid.New(), "t", conversation.ProjectContext{})
	require.NoError(t, err)

	msgs := b.BuildPrompt(c.ConversationID, "hi", 50)
	require.Len(t, msgs, 2)
	assert.Equal(t, systemInstruction, msgs[0].Content)

	// a missing conversation still yields a prompt
	msgs = b.BuildPrompt(uuid.New(), "hi", 50)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[1].Content)
}

func TestPrepareMemoryKeepsLastMessages(t *testing.T) {
	b, store := newBuilder(t)
	c, err := store.Create(uuid.New(), "t", conversation.ProjectContext{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := store.SaveMessage(c.ConversationID, conversation.RoleUser, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	mem, err := b.PrepareMemory(c.ConversationID, 2)
	require.NoError(t, err)
	require.Len(t, mem, 2)
	assert.Equal(t, "m3", mem[0].Content)
	assert.Equal(t, "m4", mem[1].Content)
}

func TestSingleShotPrompts(t *testing.T) {
	t.Parallel()
	p := fixtureProject()

	msgs := BuildProjectPrompt(&curriculum.Match{Kind: curriculum.MatchStep, Project: p, Task: p.Tasks[0], Step: p.Tasks[0].Steps[0]}, ProjectQuestion{Question: "stuck on init"})
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "Step: Init")
	assert.Contains(t, msgs[0].Content, "Guidelines: npm create vite; pick react")
	assert.Contains(t, msgs[0].Content, "User Question: stuck on init")
	assert.Contains(t, msgs[0].Content, "User Profile: N/A")

	msgs = BuildProjectPrompt(nil, ProjectQuestion{Question: "q", Project: "Custom"})
	assert.Contains(t, msgs[0].Content, "Project: Custom\nTask: N/A")

	msgs = BuildCasualPrompt("hey")
	assert.Contains(t, msgs[0].Content, "\nUser: hey\nResponse:")
}
