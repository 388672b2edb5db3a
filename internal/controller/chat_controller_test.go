package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"prompt-builder-bot/internal/dto"
	"prompt-builder-bot/internal/pkg/serverutils"
	"prompt-builder-bot/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type stubDialogue struct {
	userID  string
	text    string
	action  dto.Action
	reply   *dto.Reply
	archive error
}

func (s *stubDialogue) HandleMessage(_ context.Context, userID, text string) *dto.Reply {
	s.userID, s.text = userID, text
	return s.reply
}

func (s *stubDialogue) HandleAction(_ context.Context, userID string, action dto.Action) *dto.Reply {
	s.userID, s.action = userID, action
	return s.reply
}

func (s *stubDialogue) Snapshot(_ context.Context, userID string) *dto.SessionResponse {
	return &dto.SessionResponse{UserID: userID, State: "AWAITING_TASK_DESCRIPTION"}
}

func (s *stubDialogue) Archive(context.Context, string) ([]*dto.ArchiveResponse, error) {
	return nil, s.archive
}

type recordingNotifier struct {
	replies []*dto.Reply
}

func (n *recordingNotifier) Send(_ context.Context, _ string, reply *dto.Reply) {
	n.replies = append(n.replies, reply)
}

func newApp(d service.IDialogueService, n ReplyNotifier) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewChatController(d, n, nil, secret).RegisterRoutes(app.Group("/api"))
	return app
}

func token(t *testing.T, userID string) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, app *fiber.App, method, path, body, tok string) (int, []byte) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestChatController_SendMessage(t *testing.T) {
	d := &stubDialogue{reply: &dto.Reply{Kind: dto.ReplyOK, Text: "questions", State: "AWAITING_CLARIFICATION_ANSWERS"}}
	n := &recordingNotifier{}
	app := newApp(d, n)

	status, raw := do(t, app, "POST", "/api/chat/v1/message", `{"text":"Build a todo API"}`, token(t, "42"))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "42", d.userID)
	assert.Equal(t, "Build a todo API", d.text)
	require.Len(t, n.replies, 1)

	var resp struct {
		Success bool      `json:"success"`
		Data    dto.Reply `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "questions", resp.Data.Text)
}

func TestChatController_EmptyMessageReachesDialogue(t *testing.T) {
	d := &stubDialogue{text: "unset", reply: &dto.Reply{
		Kind:  dto.ReplyValidationError,
		Text:  "too short",
		State: "AWAITING_TASK_DESCRIPTION",
	}}
	app := newApp(d, nil)

	status, raw := do(t, app, "POST", "/api/chat/v1/message", `{"text":""}`, token(t, "42"))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "", d.text)

	var resp struct {
		Data dto.Reply `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, dto.ReplyValidationError, resp.Data.Kind)
	assert.Equal(t, "AWAITING_TASK_DESCRIPTION", resp.Data.State)
}

func TestChatController_Validation(t *testing.T) {
	app := newApp(&stubDialogue{}, nil)
	tok := token(t, "42")

	status, raw := do(t, app, "POST", "/api/chat/v1/message", `{"text":"`+strings.Repeat("x", 16385)+`"}`, tok)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(raw), "text failed on max")

	status, _ = do(t, app, "POST", "/api/chat/v1/action", `{"action":"launch"}`, tok)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, "POST", "/api/chat/v1/action", `not json`, tok)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestChatController_RequiresToken(t *testing.T) {
	app := newApp(&stubDialogue{}, nil)

	status, _ := do(t, app, "GET", "/api/chat/v1/session", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = do(t, app, "GET", "/api/chat/v1/session", "", "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, raw := do(t, app, "GET", "/api/chat/v1/session", "", token(t, "42"))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), `"user_id":"42"`)
}

func TestChatController_Action(t *testing.T) {
	d := &stubDialogue{reply: &dto.Reply{Kind: dto.ReplyOK}}
	app := newApp(d, nil)

	status, _ := do(t, app, "POST", "/api/chat/v1/action", `{"action":"accept"}`, token(t, "42"))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, dto.ActionAccept, d.action)
}

func TestChatController_Export(t *testing.T) {
	d := &stubDialogue{reply: &dto.Reply{Kind: dto.ReplyOK, File: &dto.FileAttachment{
		Filename: "prompt_42_20250301_120000.txt",
		Content:  []byte("# TASK\nBuild it"),
	}}}
	app := newApp(d, nil)

	req := httptest.NewRequest("GET", "/api/chat/v1/export", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "42"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "# TASK\nBuild it", string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "prompt_42_20250301_120000.txt")
	assert.Equal(t, dto.ActionExport, d.action)
}

func TestChatController_ExportWithoutPrompt(t *testing.T) {
	d := &stubDialogue{reply: &dto.Reply{Kind: dto.ReplyMissingData, Text: "There is no prompt yet."}}
	app := newApp(d, nil)

	status, raw := do(t, app, "GET", "/api/chat/v1/export", "", token(t, "42"))

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, string(raw), "There is no prompt yet.")
}

func TestChatController_ArchiveDisabled(t *testing.T) {
	app := newApp(&stubDialogue{archive: service.ErrArchiveDisabled}, nil)

	status, _ := do(t, app, "GET", "/api/chat/v1/archive", "", token(t, "42"))

	assert.Equal(t, fiber.StatusNotFound, status)
}
