package curriculum

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const todoProjectJSON = `{
  "projects": [
    {
      "project_id": "react-todo",
      "project_name": "Todo App",
      "description": "Build a todo list with React",
      "difficulty": "beginner",
      "tasks": [
        {
          "task_id": "setup",
          "task_name": "Project Setup",
          "description": "Create the React scaffold",
          "steps": [
            {
              "step_id": "init",
              "step_name": "Initialize Vite",
              "description": "Run the Vite generator",
              "guidelines": ["Use npm create vite", "Pick the React template"],
              "why": "A fast dev server",
              "starting_code": "// empty"
            },
            {
              "step_id": "clean",
              "step_name": "Remove Boilerplate",
              "description": "Delete the demo component",
              "guidelines": [],
              "why": ["Start clean"]
            }
          ]
        },
        {
          "task_id": "state",
          "task_name": "Manage State",
          "description": "Store todos in component state",
          "steps": [
            {
              "step_id": "usestate",
              "step_name": "Add useState",
              "description": "Keep the list in a hook",
              "guidelines": ["Import useState"],
              "why": "Re-render on change"
            }
          ]
        }
      ]
    },
    {
      "project_id": "broken",
      "project_name": "Broken",
      "description": "Missing difficulty"
    }
  ]
}`

const apiProjectYAML = `projects:
  - project_id: node-api
    project_name: Notes API
    description: REST service for notes
    difficulty: intermediate
    tasks:
      - task_id: routes
        task_name: Express Routes
        description: Wire CRUD endpoints
        steps:
          - step_id: get
            step_name: List Notes
            description: Return all notes as JSON
            guidelines: ["Use router.get"]
            why: Reads come first
  - project_id: react-todo
    project_name: Duplicate
    description: Should be dropped
    difficulty: beginner
`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func newTestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "a_react.json", todoProjectJSON)
	writeFile(t, dir, "b_node.yaml", apiProjectYAML)
	writeFile(t, dir, "c_bad.json", `{"projects": [`)
	writeFile(t, dir, "d_nokey.json", `{"items": []}`)
	writeFile(t, dir, "notes.txt", "ignored")
	return dir
}

func TestOpenLoadsValidProjects(t *testing.T) {
	store, err := Open(newTestDir(t), logger.Nop())
	require.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, 2, stats.TotalProjects)
	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, 4, stats.TotalSteps)
	assert.False(t, stats.LoadedAt.IsZero())

	p, ok := store.Project("react-todo")
	require.True(t, ok)
	assert.Equal(t, "Todo App", p.ProjectName, "first occurrence wins")

	_, ok = store.Project("broken")
	assert.False(t, ok)

	step, ok := store.Step("react-todo", "setup", "init")
	require.True(t, ok)
	assert.Equal(t, Lines{"A fast dev server"}, step.Why)
	assert.Equal(t, "// empty", step.StartingCode)

	step, ok = store.Step("node-api", "routes", "get")
	require.True(t, ok)
	assert.Equal(t, "Reads come first", step.Why.String())

	_, ok = store.Task("react-todo", "missing")
	assert.False(t, ok)
	_, ok = store.Step("nope", "setup", "init")
	assert.False(t, ok)

	summaries := store.Summaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, Summary{ProjectID: "react-todo", ProjectName: "Todo App", Difficulty: "beginner", Description: "Build a todo list with React"}, summaries[0])
}

func TestOpenFailsWithoutProjects(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.json", `{"projects": []}`)
	_, err := Open(dir, logger.Nop())
	require.ErrorIs(t, err, ErrNoProjects)

	_, err = Open(filepath.Join(dir, "missing"), logger.Nop())
	require.Error(t, err)
}

func TestRefreshKeepsSnapshotOnFailure(t *testing.T) {
	dir := newTestDir(t)
	store, err := Open(dir, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "a_react.json")))
	require.NoError(t, os.Remove(filepath.Join(dir, "b_node.yaml")))
	require.ErrorIs(t, store.Refresh(), ErrNoProjects)
	assert.Equal(t, 2, store.Stats().TotalProjects)

	writeFile(t, dir, "b_sql.yaml", `projects:
  - project_id: sql
    project_name: SQL Basics
    description: Queries
    difficulty: beginner
`)
	require.NoError(t, store.Refresh())
	assert.Equal(t, 1, store.Stats().TotalProjects)
	_, ok := store.Project("sql")
	assert.True(t, ok)
	_, ok = store.Project("react-todo")
	assert.False(t, ok, "the old snapshot is replaced once a refresh succeeds")
}

func TestNewStatic(t *testing.T) {
	store := NewStatic(logger.Nop(), &Project{ProjectID: "p", ProjectName: "P", Tasks: []*Task{{TaskID: "t", Steps: []*Step{{StepID: "s"}}}}})
	assert.Equal(t, Stats{TotalProjects: 1, TotalTasks: 1, TotalSteps: 1, LoadedAt: store.Stats().LoadedAt}, store.Stats())
	assert.Error(t, store.Refresh())
	_, ok := store.Step("p", "t", "s")
	assert.True(t, ok)
}

func TestWatcherReloadsAfterChange(t *testing.T) {
	dir := newTestDir(t)
	store, err := Open(dir, logger.Nop())
	require.NoError(t, err)

	w, err := NewWatcher(store, logger.Nop())
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, dir, "e_extra.json", `{"projects": [{"project_id": "sql", "project_name": "SQL Basics", "description": "Queries", "difficulty": "beginner"}]}`)

	assert.Eventually(t, func() bool {
		_, ok := store.Project("sql")
		return ok
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
