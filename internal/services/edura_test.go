package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/eduverse-backend/internal/chat/conversation"
	"github.com/yungbote/eduverse-backend/internal/chat/curriculum"
	"github.com/yungbote/eduverse-backend/internal/chat/llm"
	"github.com/yungbote/eduverse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/apierr"
)

type scriptedEngine struct {
	mu    sync.Mutex
	reply string
	err   error
	seen  [][]llm.Message
}

func (e *scriptedEngine) Generate(_ context.Context, msgs []llm.Message) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, msgs)
	return e.reply, e.err
}

func (e *scriptedEngine) Available() bool { return e.err == nil }

func (e *scriptedEngine) last() []llm.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seen[len(e.seen)-1]
}

func eduraProjects() *curriculum.Store {
	return curriculum.NewStatic(logger.Nop(),
		&curriculum.Project{
			ProjectID:   "todo",
			ProjectName: "Todo App",
			Description: "Build a todo list",
			Difficulty:  "beginner",
			Tasks: []*curriculum.Task{{
				TaskID: "setup", TaskName: "Project Setup", Description: "Scaffold",
				Steps: []*curriculum.Step{
					{StepID: "init", StepName: "Initialize Vite", Description: "Run vite", Guidelines: []string{"npm create vite"}},
					{StepID: "clean", StepName: "Remove Boilerplate", Description: "Delete demo"},
				},
			}},
		},
		&curriculum.Project{ProjectID: "api", ProjectName: "Notes API", Description: "REST notes", Difficulty: "intermediate"},
	)
}

func newEduraFixture(t *testing.T, cfg EduraConfig) (EduraService, *scriptedEngine, *conversation.Store) {
	t.Helper()
	projects := eduraProjects()
	store, err := conversation.NewStore(t.TempDir(), logger.Nop(), projects)
	require.NoError(t, err)
	engine := &scriptedEngine{reply: "Here's how to start."}
	return NewEduraService(logger.Nop(), cfg, projects, store, engine, nil), engine, store
}

func userCtx(id uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: id})
}

func requireAPIErr(t *testing.T, err error, status int, code string) {
	t.Helper()
	ae, ok := apierr.As(err)
	require.True(t, ok, "expected apierr, got %v", err)
	assert.Equal(t, status, ae.Status)
	assert.Equal(t, code, ae.Code)
}

func TestEduraConversationLimit(t *testing.T) {
	svc, _, _ := newEduraFixture(t, EduraConfig{MaxConversations: 2})
	ctx := userCtx(uuid.New())

	c, err := svc.StartConversation(ctx, StartConversationInput{})
	require.NoError(t, err)
	assert.Equal(t, DefaultConversationTitle, c.Title)
	_, err = svc.StartProjectConversation(ctx, "todo", 0, 1)
	require.NoError(t, err)

	_, err = svc.StartConversation(ctx, StartConversationInput{Title: "third"})
	requireAPIErr(t, err, http.StatusForbidden, "conversation_limit")
	assert.EqualError(t, err, "Maximum 2 conversations allowed")

	list, err := svc.ListConversations(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestEduraStartProjectConversationErrors(t *testing.T) {
	svc, _, _ := newEduraFixture(t, EduraConfig{})
	ctx := userCtx(uuid.New())

	_, err := svc.StartProjectConversation(ctx, "nope", 0, 0)
	requireAPIErr(t, err, http.StatusNotFound, "project_not_found")
	_, err = svc.StartProjectConversation(ctx, "todo", 3, 0)
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_position")
	_, err = svc.StartProjectConversation(ctx, "", 0, 0)
	requireAPIErr(t, err, http.StatusBadRequest, "validation_error")
}

func TestEduraOwnershipChecks(t *testing.T) {
	svc, _, _ := newEduraFixture(t, EduraConfig{})
	owner, intruder := userCtx(uuid.New()), userCtx(uuid.New())

	c, err := svc.StartConversation(owner, StartConversationInput{Title: "mine"})
	require.NoError(t, err)
	id := c.ConversationID.String()

	_, err = svc.GetMessages(intruder, id)
	requireAPIErr(t, err, http.StatusNotFound, "conversation_not_found")
	requireAPIErr(t, svc.RenameConversation(intruder, id, "stolen"), http.StatusNotFound, "conversation_not_found")
	requireAPIErr(t, svc.DeleteConversation(intruder, id), http.StatusNotFound, "conversation_not_found")
	_, err = svc.GetMessages(owner, "not-a-uuid")
	requireAPIErr(t, err, http.StatusNotFound, "conversation_not_found")
	_, err = svc.GetMessages(owner, "")
	requireAPIErr(t, err, http.StatusBadRequest, "validation_error")

	require.NoError(t, svc.RenameConversation(owner, id, "renamed"))
	require.NoError(t, svc.DeleteConversation(owner, id))
	_, err = svc.GetMessages(owner, id)
	requireAPIErr(t, err, http.StatusNotFound, "conversation_not_found")
}

func TestEduraSendMessage(t *testing.T) {
	svc, engine, _ := newEduraFixture(t, EduraConfig{})
	ctx := userCtx(uuid.New())

	c, err := svc.StartProjectConversation(ctx, "todo", 0, 0)
	require.NoError(t, err)

	reply, err := svc.SendMessage(ctx, c.ConversationID.String(), "how do I start?")
	require.NoError(t, err)
	assert.Equal(t, "Here's how to start.", reply)

	sent := engine.last()
	require.Len(t, sent, 3, "system prompt, step focus, then the new input with no duplicate")
	assert.Contains(t, sent[0].Content, "Project: Todo App (beginner)")
	assert.Contains(t, sent[0].Content, "Step: Initialize Vite")
	assert.Contains(t, sent[1].Content, "Only provide guidance related to the current project step")
	assert.Equal(t, "how do I start?", sent[2].Content)

	msgs, err := svc.GetMessages(ctx, c.ConversationID.String())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, conversation.RoleUser, msgs[0].Role)
	assert.Equal(t, conversation.RoleAssistant, msgs[1].Role)

	_, err = svc.SendMessage(ctx, c.ConversationID.String(), "   ")
	requireAPIErr(t, err, http.StatusBadRequest, "validation_error")
}

func TestEduraSendMessageRateLimited(t *testing.T) {
	svc, _, _ := newEduraFixture(t, EduraConfig{RatePerMinute: 1})
	ctx := userCtx(uuid.New())
	c, err := svc.StartConversation(ctx, StartConversationInput{})
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, c.ConversationID.String(), "one")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, c.ConversationID.String(), "two")
	requireAPIErr(t, err, http.StatusTooManyRequests, "rate_limited")
}

func TestUserLimiterEvictsIdleUsers(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newUserLimiter(1)
	l.now = func() time.Time { return clock }
	a, b := uuid.New(), uuid.New()

	require.NoError(t, l.allow(a))
	requireAPIErr(t, l.allow(a), http.StatusTooManyRequests, "rate_limited")

	clock = clock.Add(30 * time.Second)
	require.NoError(t, l.allow(b))
	assert.Len(t, l.limiters, 2)

	clock = clock.Add(limiterIdle)
	require.NoError(t, l.allow(b))
	assert.Len(t, l.limiters, 1)
	assert.NotContains(t, l.limiters, a)
}

func TestEduraSendMessagePropagatesEngineErrors(t *testing.T) {
	svc, engine, _ := newEduraFixture(t, EduraConfig{})
	engine.err = llm.ErrUnavailable
	ctx := userCtx(uuid.New())
	c, err := svc.StartConversation(ctx, StartConversationInput{})
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, c.ConversationID.String(), "hello")
	requireAPIErr(t, err, http.StatusServiceUnavailable, "llm_unavailable")
	assert.False(t, svc.Health().LLM)
}

func TestEduraBotAttachesMatchedContext(t *testing.T) {
	svc, engine, store := newEduraFixture(t, EduraConfig{})
	userID := uuid.New()
	ctx := userCtx(userID)

	reply, err := svc.Bot(ctx, BotInput{UserQuestion: "I need help with the initialize vite step"})
	require.NoError(t, err)
	assert.Equal(t, "success", reply.Status)
	assert.Len(t, reply.Suggestions, 3)

	list, err := store.List(userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	c, err := store.Load(list[0].ConversationID)
	require.NoError(t, err)
	assert.Equal(t, DefaultConversationTitle, c.Title)
	assert.Equal(t, conversation.ProjectContext{ProjectID: "todo", TaskID: "setup", StepID: "init"}, c.ProjectContext)
	require.Len(t, c.Messages, 2)
	assert.Equal(t, conversation.RoleEdura, c.Messages[1].Role)

	sent := engine.last()
	require.Len(t, sent, 3)
	assert.Contains(t, sent[0].Content, "Step: Initialize Vite")
	assert.Contains(t, sent[1].Content, "Only provide guidance related to the current project step")
	assert.Contains(t, sent[2].Content, "Guidelines: npm create vite")
	assert.Contains(t, sent[2].Content, "User Question: I need help with the initialize vite step")

	// the next call reuses the same conversation and carries history
	_, err = svc.Bot(ctx, BotInput{UserQuestion: "and then?"})
	require.NoError(t, err)
	sent = engine.last()
	require.Len(t, sent, 5)
	assert.Equal(t, "I need help with the initialize vite step", sent[2].Content)
	assert.Equal(t, "and then?", sent[4].Content)
	list, err = store.List(userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEduraBotCasualAndUnmatched(t *testing.T) {
	svc, engine, _ := newEduraFixture(t, EduraConfig{})
	ctx := userCtx(uuid.New())

	_, err := svc.Bot(ctx, BotInput{UserQuestion: "hey edura"})
	require.NoError(t, err)
	require.Len(t, engine.last(), 1)
	assert.Contains(t, engine.last()[0].Content, "User: hey edura\nResponse:")

	_, err = svc.Bot(ctx, BotInput{UserQuestion: "how to write a sorting function", Project: "My side thing", UserProfile: `{"level":"new"}`})
	require.NoError(t, err)
	require.Len(t, engine.last(), 1)
	assert.Contains(t, engine.last()[0].Content, "Project: My side thing")
	assert.Contains(t, engine.last()[0].Content, `User Profile: {"level":"new"}`)

	_, err = svc.Bot(ctx, BotInput{})
	requireAPIErr(t, err, http.StatusBadRequest, "validation_error")
}

func TestEduraAnalyze(t *testing.T) {
	svc, engine, store := newEduraFixture(t, EduraConfig{})
	userID := uuid.New()
	ctx := userCtx(userID)
	c, err := svc.StartConversation(ctx, StartConversationInput{})
	require.NoError(t, err)

	_, err = svc.Analyze(ctx, AnalysisInput{})
	requireAPIErr(t, err, http.StatusBadRequest, "validation_error")
	assert.EqualError(t, err, "Code is required for analysis")

	out, err := svc.Analyze(ctx, AnalysisInput{Code: `fetch("/api")`, ConversationID: c.ConversationID.String()})
	require.NoError(t, err)
	assert.Equal(t, "success", out.Status)
	assert.Contains(t, out.FormattedResponse, "**Edura's Analysis**")
	assert.Equal(t, "Current Step", out.EduraResponse.Context.StepTitle)

	msgs, err := store.Messages(c.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Can you help me improve this?", msgs[0].Content)
	assert.Equal(t, out.FormattedResponse, msgs[1].Content)

	require.NotNil(t, out.ModelReview)
	assert.Equal(t, "Here's how to start.", out.ModelReview.Analysis)
	assert.Contains(t, engine.last()[0].Content, "fetch(\"/api\")")
	assert.Contains(t, engine.last()[0].Content, "Initial Analysis: Your code works")
}

func TestEduraAnalyzeWithoutModel(t *testing.T) {
	svc, engine, _ := newEduraFixture(t, EduraConfig{})
	engine.err = llm.ErrUnavailable

	out, err := svc.Analyze(userCtx(uuid.New()), AnalysisInput{Code: "const a = 1"})
	require.NoError(t, err)
	assert.Nil(t, out.ModelReview)
	assert.Empty(t, engine.seen)
}

func TestEduraAdvanceAndCurrentStep(t *testing.T) {
	svc, _, _ := newEduraFixture(t, EduraConfig{})
	ctx := userCtx(uuid.New())
	c, err := svc.StartProjectConversation(ctx, "todo", 0, 0)
	require.NoError(t, err)
	id := c.ConversationID.String()

	advanced, info, err := svc.AdvanceStep(ctx, id)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, "Remove Boilerplate", info.StepName)

	advanced, info, err = svc.AdvanceStep(ctx, id)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, 1, info.StepIndex)

	plain, err := svc.StartConversation(ctx, StartConversationInput{})
	require.NoError(t, err)
	_, err = svc.CurrentStep(ctx, plain.ConversationID.String())
	requireAPIErr(t, err, http.StatusNotFound, "no_current_step")
}

func TestEduraCatalogAndTrending(t *testing.T) {
	svc, _, _ := newEduraFixture(t, EduraConfig{})
	a, b := userCtx(uuid.New()), userCtx(uuid.New())

	_, err := svc.StartProjectConversation(a, "api", 0, 0)
	require.NoError(t, err)
	_, err = svc.StartProjectConversation(b, "api", 0, 0)
	require.NoError(t, err)
	_, err = svc.StartProjectConversation(b, "todo", 0, 0)
	require.NoError(t, err)

	trending, err := svc.Trending(a)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, "api", trending[0].ProjectID)
	assert.Equal(t, 2, trending[0].Conversations)
	assert.Equal(t, 1, trending[1].Conversations)

	assert.Len(t, svc.Projects(), 2)
	assert.Equal(t, 2, svc.Stats().TotalProjects)
	_, err = svc.Project("missing")
	requireAPIErr(t, err, http.StatusNotFound, "project_not_found")
	p, err := svc.Project("todo")
	require.NoError(t, err)
	assert.Equal(t, "Todo App", p.ProjectName)

	h := svc.Health()
	assert.Equal(t, "healthy", h.Status)
	assert.True(t, h.LLM)
}
