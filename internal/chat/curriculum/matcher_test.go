package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsProjectQuestion(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		"How to add a route?":        true,
		"I found a BUG":              true,
		"can you help with my setup": true,
		"hey edura":                  false,
		"good morning!":              false,
	}
	for msg, want := range cases {
		assert.Equal(t, want, IsProjectQuestion(msg), msg)
	}
}

func matcherFixture() []*Project {
	return []*Project{
		{
			ProjectID:   "todo",
			ProjectName: "Todo App",
			Description: "Build a todo list with React",
			Tasks: []*Task{
				{
					TaskID:      "setup",
					TaskName:    "Project Setup",
					Description: "Create the scaffold",
					Steps: []*Step{
						{StepID: "init", StepName: "Initialize Vite", Description: "Run the generator"},
					},
				},
				{
					TaskID:      "state",
					TaskName:    "Manage State",
					Description: "Keep todos in state",
				},
			},
		},
	}
}

func TestFindRelevant(t *testing.T) {
	t.Parallel()
	projects := matcherFixture()

	t.Run("project name wins outright", func(t *testing.T) {
		m := findRelevant(projects, "Help me with the TODO APP please")
		require.NotNil(t, m)
		assert.Equal(t, MatchProject, m.Kind)
		assert.Equal(t, "todo", m.Project.ProjectID)
	})

	t.Run("step name beats task name", func(t *testing.T) {
		m := findRelevant(projects, "project setup: initialize vite fails")
		require.NotNil(t, m)
		assert.Equal(t, MatchStep, m.Kind)
		assert.Equal(t, "init", m.Step.StepID)
		assert.Equal(t, "setup", m.Task.TaskID)
	})

	t.Run("task match", func(t *testing.T) {
		m := findRelevant(projects, "how do I manage state here")
		require.NotNil(t, m)
		assert.Equal(t, MatchTask, m.Kind)
		assert.Equal(t, "state", m.Task.TaskID)
	})

	t.Run("tie keeps the earlier candidate", func(t *testing.T) {
		m := findRelevant(projects, "create the scaffold and keep todos in state")
		require.NotNil(t, m)
		assert.Equal(t, "setup", m.Task.TaskID)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, findRelevant(projects, "what is the weather"))
	})
}
