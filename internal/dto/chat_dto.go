package dto

import (
	"time"

	"prompt-builder-bot/pkg/store"
)

// Action is a menu button or slash command
type Action string

const (
	ActionStart             Action = "start"
	ActionHelp              Action = "help"
	ActionRestart           Action = "restart"
	ActionAccept            Action = "accept"
	ActionRethink           Action = "rethink"
	ActionEditTask          Action = "edit_task"
	ActionSave              Action = "save"
	ActionExport            Action = "export"
	ActionEditSection       Action = "edit_section"
	ActionAddRequirement    Action = "add_requirement"
	ActionRemoveRequirement Action = "remove_requirement"
)

// Action menus offered with a reply
var (
	RecommendationActions = []Action{ActionAccept, ActionRethink, ActionEditTask}
	PromptActions         = []Action{ActionSave, ActionExport, ActionEditSection, ActionAddRequirement, ActionRemoveRequirement, ActionRestart}
)

// commands maps slash commands to actions; "/edit" is the task edit
var commands = map[string]Action{
	"/start":              ActionStart,
	"/help":               ActionHelp,
	"/restart":            ActionRestart,
	"/accept":             ActionAccept,
	"/rethink":            ActionRethink,
	"/edit":               ActionEditTask,
	"/save":               ActionSave,
	"/export":             ActionExport,
	"/edit_section":       ActionEditSection,
	"/add_requirement":    ActionAddRequirement,
	"/remove_requirement": ActionRemoveRequirement,
}

// ParseCommand maps "/cmd" (optionally "/cmd@bot args") to an action
func ParseCommand(text string) (Action, bool) {
	if len(text) == 0 || text[0] != '/' {
		return "", false
	}
	cmd := text
	for i, r := range text {
		if r == ' ' || r == '\n' || r == '@' {
			cmd = text[:i]
			break
		}
	}
	a, ok := commands[cmd]
	return a, ok
}

type ReplyKind string

const (
	ReplyOK               ReplyKind = "ok"
	ReplyValidationError  ReplyKind = "validation_error"
	ReplyGenerationFailed ReplyKind = "generation_failed"
	ReplyMissingData      ReplyKind = "missing_data"
	ReplyUnrecognized     ReplyKind = "unrecognized"
	ReplyInternalError    ReplyKind = "internal_error"
)

// FileAttachment is a document sent back to the user. Content is base64 in JSON.
type FileAttachment struct {
	Filename string `json:"filename"`
	Caption  string `json:"caption"`
	Content  []byte `json:"content"`
}

// Reply is what the dialogue sends back for one inbound event
type Reply struct {
	Kind    ReplyKind       `json:"kind"`
	Text    string          `json:"text,omitempty"`
	State   string          `json:"state"`
	Actions []Action        `json:"actions,omitempty"`
	File    *FileAttachment `json:"file,omitempty"`
}

// SendMessageRequest carries any text, empty included: rejecting input is
// the dialogue's job
type SendMessageRequest struct {
	Text string `json:"text" validate:"max=16384"`
}

type SendActionRequest struct {
	Action Action `json:"action" validate:"required,oneof=start help restart accept rethink edit_task save export edit_section add_requirement remove_requirement"`
}

// SocketFrame is an inbound WebSocket or NATS message: either text or an action
type SocketFrame struct {
	UserID string `json:"user_id,omitempty"`
	Text   string `json:"text,omitempty"`
	Action Action `json:"action,omitempty"`
}

type SessionResponse struct {
	UserID          string               `json:"user_id"`
	State           string               `json:"state"`
	TaskDescription string               `json:"task_description"`
	Questions       []string             `json:"clarification_questions"`
	Answers         []store.Answer       `json:"answers"`
	Recommendations store.Recommendation `json:"recommendations"`
	CurrentPrompt   string               `json:"current_prompt"`
	Sections        []string             `json:"sections,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	EditedCount     int                  `json:"edited_count"`
	SavedAt         *time.Time           `json:"saved_at,omitempty"`
}

type ArchiveResponse struct {
	Id              string               `json:"id"`
	TaskDescription string               `json:"task_description"`
	Answers         []store.Answer       `json:"answers"`
	Recommendations store.Recommendation `json:"recommendations"`
	Prompt          string               `json:"prompt"`
	EditedCount     int                  `json:"edited_count"`
	SavedAt         time.Time            `json:"saved_at"`
}
