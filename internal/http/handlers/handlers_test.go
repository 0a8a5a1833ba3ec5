package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/eduverse-backend/internal/chat/conversation"
	"github.com/yungbote/eduverse-backend/internal/chat/curriculum"
	"github.com/yungbote/eduverse-backend/internal/chat/llm"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser injects request data the way the auth middleware would.
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	inner, ok := env["error"].(map[string]any)
	require.True(t, ok, w.Body.String())
	code, _ := inner["code"].(string)
	return code
}

type echoEngine struct{}

func (echoEngine) Generate(_ context.Context, msgs []llm.Message) (string, error) {
	return "echo: " + msgs[len(msgs)-1].Content, nil
}

func (echoEngine) Available() bool { return true }

func newEduraRouter(t *testing.T, userID uuid.UUID) *gin.Engine {
	t.Helper()
	projects := curriculum.NewStatic(logger.Nop(), &curriculum.Project{
		ProjectID: "todo", ProjectName: "Todo App", Description: "Build a todo list", Difficulty: "beginner",
		Tasks: []*curriculum.Task{{
			TaskID: "setup", TaskName: "Setup", Description: "Scaffold",
			Steps: []*curriculum.Step{
				{StepID: "init", StepName: "Init", Description: "Run vite", Guidelines: []string{"npm create vite"}},
				{StepID: "clean", StepName: "Clean", Description: "Delete demo"},
			},
		}},
	})
	store, err := conversation.NewStore(t.TempDir(), logger.Nop(), projects)
	require.NoError(t, err)
	svc := services.NewEduraService(logger.Nop(), services.EduraConfig{MaxConversations: 2, RatePerMinute: 100}, projects, store, echoEngine{}, nil)
	h := NewEduraHandler(svc)

	r := gin.New()
	r.GET("/ai/health", h.Health)
	ai := r.Group("/ai", asUser(userID))
	ai.GET("/list_conversations", h.ListConversations)
	ai.POST("/start_conversation", h.StartConversation)
	ai.POST("/start_project_conversation", h.StartProjectConversation)
	ai.POST("/rename_conversation", h.RenameConversation)
	ai.DELETE("/delete_conversation", h.DeleteConversation)
	ai.GET("/get_messages", h.GetMessages)
	ai.POST("/send_message", h.SendMessage)
	ai.POST("/advance_step", h.AdvanceStep)
	ai.GET("/current_step", h.CurrentStep)
	ai.GET("/projects/:id", h.Project)
	ai.POST("/edura_analysis", h.Analyze)
	ai.POST("/bot", h.Bot)
	return r
}

func TestEduraConversationLifecycle(t *testing.T) {
	r := newEduraRouter(t, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/ai/start_conversation", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	conv := decode(t, w)["conversation"].(map[string]any)
	assert.Equal(t, "Default Conversation", conv["title"])
	id := conv["conversation_id"].(string)

	w = doJSON(t, r, http.MethodPost, "/ai/send_message", gin.H{"conversation_id": id, "user_input": "hello"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "echo: hello", decode(t, w)["response"])

	w = doJSON(t, r, http.MethodGet, "/ai/get_messages?conversation_id="+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decode(t, w)["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])

	w = doJSON(t, r, http.MethodPost, "/ai/rename_conversation", gin.H{"conversation_id": id, "new_title": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/ai/delete_conversation?conversation_id="+id, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/ai/get_messages?conversation_id="+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "conversation_not_found", errorCode(t, w))
}

func TestEduraConversationLimitAndValidation(t *testing.T) {
	r := newEduraRouter(t, uuid.New())

	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodPost, "/ai/start_conversation", gin.H{"title": "c"})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(t, r, http.MethodPost, "/ai/start_conversation", gin.H{"title": "c"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/ai/get_messages", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/ai/edura_analysis", gin.H{"code": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/ai/projects/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEduraProjectConversationSteps(t *testing.T) {
	r := newEduraRouter(t, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/ai/start_project_conversation", gin.H{"project_id": "todo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id := decode(t, w)["conversation"].(map[string]any)["conversation_id"].(string)

	w = doJSON(t, r, http.MethodGet, "/ai/current_step?conversation_id="+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Init", decode(t, w)["step_name"])

	w = doJSON(t, r, http.MethodPost, "/ai/advance_step", gin.H{"conversation_id": id})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["advanced"])
	assert.Equal(t, "Clean", body["current_step"].(map[string]any)["step_name"])

	w = doJSON(t, r, http.MethodPost, "/ai/start_project_conversation", gin.H{"project_id": "todo", "task_index": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEduraBotAcceptsProfileObject(t *testing.T) {
	r := newEduraRouter(t, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/ai/bot", gin.H{
		"user_question": "how to build the api",
		"user_profile":  gin.H{"id": "u1", "skills": []string{"go"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "success", body["status"])
	assert.Contains(t, body["response"], `User Profile: {"id":"u1","skills":["go"]}`)

	w = doJSON(t, r, http.MethodPost, "/ai/bot", gin.H{"user_question": "how to build the api", "user_profile": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestEduraBotRejectsNonObjectProfile(t *testing.T) {
	r := newEduraRouter(t, uuid.New())

	for _, profile := range []any{"u1", []string{"go"}, 42} {
		w := doJSON(t, r, http.MethodPost, "/ai/bot", gin.H{"user_question": "how to build the api", "user_profile": profile})
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Equal(t, "invalid_request", errorCode(t, w))
		assert.Contains(t, w.Body.String(), "user_profile must be an object")
	}
}

func TestEduraHealthIsPublic(t *testing.T) {
	r := newEduraRouter(t, uuid.New())
	w := doJSON(t, r, http.MethodGet, "/ai/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["llm"])
}

type loginAuth struct {
	services.AuthService
	gotIdentifier string
}

func (a *loginAuth) Login(_ context.Context, identifier, password string) (*services.AuthResult, error) {
	a.gotIdentifier = identifier
	if password != "secret123" {
		return nil, errors.New("boom")
	}
	return &services.AuthResult{AccessToken: "a", RefreshToken: "r", ExpiresIn: 3600}, nil
}

func TestLoginAcceptsAnyIdentifierField(t *testing.T) {
	auth := &loginAuth{}
	h := NewAuthHandler(auth)
	r := gin.New()
	r.POST("/login", h.Login)

	w := doJSON(t, r, http.MethodPost, "/login", gin.H{"email": " Ada@Example.com ", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada@Example.com", auth.gotIdentifier)
	assert.Equal(t, "a", decode(t, w)["access_token"])

	w = doJSON(t, r, http.MethodPost, "/login", gin.H{"password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/login", gin.H{"username": "ada", "password": "nope"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type capturingPosts struct {
	services.PostService
	got services.CreatePostInput
}

func (p *capturingPosts) CreatePost(_ dbctx.Context, in services.CreatePostInput) (*services.PostView, error) {
	p.got = in
	return &services.PostView{Post: &types.Post{Content: in.Content}}, nil
}

func TestCreatePostMultipartCollectsImages(t *testing.T) {
	posts := &capturingPosts{}
	h := NewPostHandler(posts, &testBucketService{})
	r := gin.New()
	r.POST("/posts", h.CreatePost)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("content", "hi"))
	require.NoError(t, mw.WriteField("visibility", "Public"))
	for _, name := range []string{"a.png", "b.png"} {
		fw, err := mw.CreateFormFile("images[]", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "hi", posts.got.Content)
	assert.Equal(t, "Public", posts.got.Visibility)
	require.Len(t, posts.got.Images, 2)
	assert.Equal(t, "a.png", posts.got.Images[0].Filename)
	assert.Equal(t, []byte("png-b.png"), posts.got.Images[1].Data)
}

func TestPostHandlerRejectsBadID(t *testing.T) {
	h := NewPostHandler(&capturingPosts{}, nil)
	r := gin.New()
	r.GET("/posts/:id", h.GetPost)

	w := doJSON(t, r, http.MethodGet, "/posts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_id", errorCode(t, w))
}

func TestHealthCheckReportsProbes(t *testing.T) {
	r := gin.New()
	ok := NewHealthHandler(logger.Nop(), map[string]HealthProbe{
		"db": func(context.Context) error { return nil },
	})
	bad := NewHealthHandler(logger.Nop(), map[string]HealthProbe{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	r.GET("/ok", ok.HealthCheck)
	r.GET("/bad", bad.HealthCheck)

	w := doJSON(t, r, http.MethodGet, "/ok", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = doJSON(t, r, http.MethodGet, "/bad", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "connection refused", body["checks"].(map[string]any)["redis"])
}

func TestRecordKindRejectsUnknownList(t *testing.T) {
	h := NewProfileHandler(nil)
	r := gin.New()
	r.GET("/records/:kind", h.ListRecords)

	w := doJSON(t, r, http.MethodGet, "/records/hobbies", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "unknown_record_kind"))
}
