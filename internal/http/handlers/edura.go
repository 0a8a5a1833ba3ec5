package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/eduverse-backend/internal/chat/conversation"
	"github.com/yungbote/eduverse-backend/internal/http/response"
	"github.com/yungbote/eduverse-backend/internal/services"
)

type EduraHandler struct {
	edura services.EduraService
}

func NewEduraHandler(edura services.EduraService) *EduraHandler {
	return &EduraHandler{edura: edura}
}

// GET /ai/health
func (eh *EduraHandler) Health(c *gin.Context) {
	response.RespondOK(c, eh.edura.Health())
}

// GET /ai/list_conversations
func (eh *EduraHandler) ListConversations(c *gin.Context) {
	convs, err := eh.edura.ListConversations(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "success", "conversations": convs})
}

// POST /ai/start_conversation
// body: { "title"?: "...", "project_context"?: {...} }
func (eh *EduraHandler) StartConversation(c *gin.Context) {
	var req struct {
		Title          string                      `json:"title"`
		ProjectContext conversation.ProjectContext `json:"project_context"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}
	conv, err := eh.edura.StartConversation(c.Request.Context(), services.StartConversationInput{
		Title:          req.Title,
		ProjectContext: req.ProjectContext,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "success", "conversation": conv})
}

// POST /ai/start_project_conversation
// body: { "project_id": "...", "task_index"?: 0, "step_index"?: 0 }
func (eh *EduraHandler) StartProjectConversation(c *gin.Context) {
	var req struct {
		ProjectID string `json:"project_id"`
		TaskIndex int    `json:"task_index"`
		StepIndex int    `json:"step_index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	conv, err := eh.edura.StartProjectConversation(c.Request.Context(), req.ProjectID, req.TaskIndex, req.StepIndex)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "success", "conversation": conv})
}

// POST /ai/rename_conversation
// body: { "conversation_id": "...", "new_title": "..." }
func (eh *EduraHandler) RenameConversation(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversation_id"`
		NewTitle       string `json:"new_title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := eh.edura.RenameConversation(c.Request.Context(), req.ConversationID, req.NewTitle); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "success", "message": "Conversation renamed successfully"})
}

// DELETE /ai/delete_conversation
// conversation_id comes from the JSON body or the query string.
func (eh *EduraHandler) DeleteConversation(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversation_id"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}
	id := firstNonEmpty(req.ConversationID, c.Query("conversation_id"))
	if err := eh.edura.DeleteConversation(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "success", "message": "Conversation deleted successfully"})
}

// GET /ai/get_messages?conversation_id=
func (eh *EduraHandler) GetMessages(c *gin.Context) {
	msgs, err := eh.edura.GetMessages(c.Request.Context(), c.Query("conversation_id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "success", "messages": msgs})
}

// POST /ai/send_message
// body: { "conversation_id": "...", "user_input": "..." }
func (eh *EduraHandler) SendMessage(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversation_id"`
		UserInput      string `json:"user_input"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	reply, err := eh.edura.SendMessage(c.Request.Context(), req.ConversationID, req.UserInput)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"response": reply})
}

// POST /ai/bot
// body: { "user_question": "...", "project"?, "task"?, "step"?, "user_profile"?: {...} }
func (eh *EduraHandler) Bot(c *gin.Context) {
	var req struct {
		UserQuestion string          `json:"user_question"`
		Project      string          `json:"project"`
		Task         string          `json:"task"`
		Step         string          `json:"step"`
		UserProfile  json.RawMessage `json:"user_profile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	profile, err := profileObject(req.UserProfile)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	reply, err := eh.edura.Bot(c.Request.Context(), services.BotInput{
		UserQuestion: req.UserQuestion,
		Project:      req.Project,
		Task:         req.Task,
		Step:         req.Step,
		UserProfile:  profile,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, reply)
}

var errProfileNotObject = errors.New("user_profile must be an object")

// profileObject re-encodes a user_profile object compactly for the prompt.
// Absent, null and empty objects yield "" so the stored profile is used.
func profileObject(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	var obj map[string]any
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &obj) != nil {
		return "", errProfileNotObject
	}
	if len(obj) == 0 {
		return "", nil
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return "", errProfileNotObject
	}
	return string(out), nil
}

// POST /ai/edura_analysis
func (eh *EduraHandler) Analyze(c *gin.Context) {
	var req struct {
		Code           string `json:"code"`
		StepTitle      string `json:"step_title"`
		UserMessage    string `json:"user_message"`
		ProjectID      string `json:"project_id"`
		TaskID         string `json:"task_id"`
		ConversationID string `json:"conversation_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := eh.edura.Analyze(c.Request.Context(), services.AnalysisInput{
		Code:           req.Code,
		StepTitle:      req.StepTitle,
		UserMessage:    req.UserMessage,
		ProjectID:      req.ProjectID,
		TaskID:         req.TaskID,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /ai/advance_step
// body: { "conversation_id": "..." }
func (eh *EduraHandler) AdvanceStep(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	advanced, info, err := eh.edura.AdvanceStep(c.Request.Context(), req.ConversationID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"advanced": advanced, "current_step": info})
}

// GET /ai/current_step?conversation_id=
func (eh *EduraHandler) CurrentStep(c *gin.Context) {
	info, err := eh.edura.CurrentStep(c.Request.Context(), c.Query("conversation_id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, info)
}

// GET /ai/projects
func (eh *EduraHandler) Projects(c *gin.Context) {
	response.RespondOK(c, gin.H{"projects": eh.edura.Projects()})
}

// GET /ai/projects/:id
func (eh *EduraHandler) Project(c *gin.Context) {
	p, err := eh.edura.Project(c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, p)
}

// GET /ai/stats
func (eh *EduraHandler) Stats(c *gin.Context) {
	response.RespondOK(c, eh.edura.Stats())
}

// GET /ai/trending
func (eh *EduraHandler) Trending(c *gin.Context) {
	projects, err := eh.edura.Trending(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": projects})
}

// bindOptionalJSON decodes the body when there is one. An empty body leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}
