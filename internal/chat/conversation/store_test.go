package conversation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/eduverse-backend/internal/chat/curriculum"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

func testProject() *curriculum.Project {
	return &curriculum.Project{
		ProjectID:   "todo",
		ProjectName: "Todo App",
		Description: "Build a todo list",
		Difficulty:  "beginner",
		Tasks: []*curriculum.Task{
			{
				TaskID:      "setup",
				TaskName:    "Setup",
				Description: "Scaffold",
				Steps: []*curriculum.Step{
					{StepID: "init", StepName: "Init", Description: "Run vite", Guidelines: []string{"npm create vite"}, Why: curriculum.Lines{"fast"}, StartingCode: "// start"},
					{StepID: "clean", StepName: "Clean", Description: "Remove demo"},
				},
			},
			{
				TaskID:      "state",
				TaskName:    "State",
				Description: "Hooks",
				Steps: []*curriculum.Step{
					{StepID: "usestate", StepName: "useState", Description: "Add a hook"},
				},
			},
		},
	}
}

// newTestStore uses a fake clock that advances one second per call.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), logger.Nop(), curriculum.NewStatic(logger.Nop(), testProject()))
	require.NoError(t, err)
	var mu sync.Mutex
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestCreateLoadAndMessages(t *testing.T) {
	s := newTestStore(t)
	user := uuid.New()

	c, err := s.Create(user, "Default Conversation", ProjectContext{ProjectID: "todo"})
	require.NoError(t, err)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)

	_, err = s.SaveMessage(c.ConversationID, RoleUser, "hello")
	require.NoError(t, err)
	_, err = s.SaveMessage(c.ConversationID, RoleAssistant, "hi there")
	require.NoError(t, err)

	loaded, err := s.Load(c.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Default Conversation", loaded.Title)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, "hi there", loaded.Messages[1].Content)
	assert.True(t, loaded.UpdatedAt.After(loaded.CreatedAt))
	assert.Equal(t, time.UTC, loaded.UpdatedAt.Location())

	raw, err := os.ReadFile(filepath.Join(s.dir, c.ConversationID.String()+".json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"conversation_id", "user_id", "title", "created_at", "updated_at", "project_context", "messages"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, "2026-01-01T00:00:01Z", doc["created_at"])

	_, err = s.Load(uuid.New())
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestRenameDeleteAndList(t *testing.T) {
	s := newTestStore(t)
	user, other := uuid.New(), uuid.New()

	first, err := s.Create(user, "first", ProjectContext{})
	require.NoError(t, err)
	second, err := s.Create(user, "second", ProjectContext{})
	require.NoError(t, err)
	_, err = s.Create(other, "not mine", ProjectContext{})
	require.NoError(t, err)

	require.NoError(t, s.Rename(first.ConversationID, "renamed"))

	list, err := s.List(user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ConversationID, list[0].ConversationID, "renamed conversation is newest")
	assert.Equal(t, "renamed", list[0].Title)
	assert.Equal(t, second.ConversationID, list[1].ConversationID)

	n, err := s.CountByUser(user)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Delete(second.ConversationID))
	require.ErrorIs(t, s.Delete(second.ConversationID), pkgerrors.ErrNotFound)
	require.ErrorIs(t, s.Rename(second.ConversationID, "x"), pkgerrors.ErrNotFound)

	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "no temp files left behind")
	}
}

func TestProjectContextRoundTrip(t *testing.T) {
	s := newTestStore(t)
	c, err := s.Create(uuid.New(), "t", ProjectContext{})
	require.NoError(t, err)

	pc, err := s.ProjectContext(c.ConversationID)
	require.NoError(t, err)
	assert.True(t, pc.IsZero())

	require.NoError(t, s.UpdateProjectContext(c.ConversationID, ProjectContext{ProjectID: "todo", TaskID: "setup"}))
	pc, err = s.ProjectContext(c.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, ProjectContext{ProjectID: "todo", TaskID: "setup"}, pc)
}

func TestProjectConversationLifecycle(t *testing.T) {
	s := newTestStore(t)
	user := uuid.New()

	c, err := s.CreateProjectConversation(user, "todo", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Todo App - Setup - Init", c.Title)
	assert.Equal(t, "setup", c.ProjectContext.TaskID)
	assert.Equal(t, "init", c.ProjectContext.StepID)

	info, err := s.CurrentStepInfo(c.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, StepInfo{
		ProjectName:      "Todo App",
		TaskName:         "Setup",
		TaskDescription:  "Scaffold",
		StepName:         "Init",
		StepDescription:  "Run vite",
		Guidelines:       []string{"npm create vite"},
		Why:              []string{"fast"},
		StarterCode:      "// start",
		TaskIndex:        0,
		StepIndex:        0,
		TotalTasks:       2,
		TotalStepsInTask: 2,
	}, *info)

	ok, err := s.AdvanceToNextStep(c.ConversationID)
	require.NoError(t, err)
	assert.True(t, ok)
	loaded, err := s.Load(c.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Todo App - Setup - Clean", loaded.Title)

	ok, err = s.AdvanceToNextStep(c.ConversationID)
	require.NoError(t, err)
	assert.True(t, ok)
	info, err = s.CurrentStepInfo(c.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 1, info.TaskIndex)
	assert.Equal(t, 0, info.StepIndex)
	assert.Equal(t, []string{}, info.Guidelines)

	ok, err = s.AdvanceToNextStep(c.ConversationID)
	require.NoError(t, err)
	assert.False(t, ok, "end of project")
}

func TestProjectConversationErrors(t *testing.T) {
	s := newTestStore(t)
	user := uuid.New()

	_, err := s.CreateProjectConversation(user, "missing", 0, 0)
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
	_, err = s.CreateProjectConversation(user, "todo", 5, 0)
	require.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)
	_, err = s.CreateProjectConversation(user, "todo", 0, 9)
	require.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)

	plain, err := s.Create(user, "plain", ProjectContext{})
	require.NoError(t, err)
	ok, err := s.AdvanceToNextStep(plain.ConversationID)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = s.CurrentStepInfo(plain.ConversationID)
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)

	_, err = s.AdvanceToNextStep(uuid.New())
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestIDContextResolvesForStepInfo(t *testing.T) {
	s := newTestStore(t)
	c, err := s.Create(uuid.New(), "Default Conversation", ProjectContext{ProjectID: "todo", TaskID: "state", StepID: "usestate"})
	require.NoError(t, err)

	info, err := s.CurrentStepInfo(c.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "useState", info.StepName)
	assert.Equal(t, 1, info.TaskIndex)
}

func TestCreateLimitedIsRaceFree(t *testing.T) {
	s := newTestStore(t)
	user := uuid.New()
	const limit = 3

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, rejected := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateLimited(user, limit, func() (*Conversation, error) {
				return s.Create(user, "c", ProjectContext{})
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, pkgerrors.ErrLimitExceeded)
				rejected++
				return
			}
			created++
		}()
	}
	wg.Wait()
	assert.Equal(t, limit, created)
	assert.Equal(t, 7, rejected)
}

func TestConcurrentSaveMessageKeepsEveryTurn(t *testing.T) {
	s := newTestStore(t)
	c, err := s.Create(uuid.New(), "busy", ProjectContext{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.SaveMessage(c.ConversationID, RoleUser, "ping")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	msgs, err := s.Messages(c.ConversationID)
	require.NoError(t, err)
	assert.Len(t, msgs, 20)
}
