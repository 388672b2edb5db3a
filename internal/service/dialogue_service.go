package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"prompt-builder-bot/internal/constant"
	"prompt-builder-bot/internal/dto"
	"prompt-builder-bot/internal/entity"
	"prompt-builder-bot/internal/pkg/logger"
	"prompt-builder-bot/internal/repository/contract"
	"prompt-builder-bot/internal/repository/memory"
	"prompt-builder-bot/internal/repository/specification"
	"prompt-builder-bot/pkg/ai/completion"
	"prompt-builder-bot/pkg/dialogue/state"
	"prompt-builder-bot/pkg/document"
	"prompt-builder-bot/pkg/events"
	"prompt-builder-bot/pkg/export"
	"prompt-builder-bot/pkg/recommendation"
	"prompt-builder-bot/pkg/store"
)

const (
	dialogueModule = "DialogueService"

	// MinTaskLength is the shortest accepted task description, in characters
	MinTaskLength = 10
)

var (
	ErrMissingPrerequisite = errors.New("missing prerequisite")
	ErrArchiveDisabled     = errors.New("prompt archive is not configured")
)

// ValidationError is user input that cannot be accepted in the current state
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PrerequisiteError is an action that needs data the session does not have yet
type PrerequisiteError struct {
	Message string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingPrerequisite, e.Message)
}

func (e *PrerequisiteError) Is(target error) bool {
	return target == ErrMissingPrerequisite
}

// PromptGenerator produces the three model outputs of a dialogue
type PromptGenerator interface {
	GenerateClarificationQuestions(ctx context.Context, task string) ([]string, error)
	GenerateRecommendations(ctx context.Context, task string, answers []store.Answer) (store.Recommendation, error)
	GenerateFinalDocument(ctx context.Context, task string, rec store.Recommendation) (string, error)
}

type PromptExporter interface {
	Export(userID, content string) (*export.File, error)
}

type IDialogueService interface {
	HandleMessage(ctx context.Context, userID, text string) *dto.Reply
	HandleAction(ctx context.Context, userID string, action dto.Action) *dto.Reply
	Snapshot(ctx context.Context, userID string) *dto.SessionResponse
	Archive(ctx context.Context, userID string) ([]*dto.ArchiveResponse, error)
}

type dialogueService struct {
	sessionRepo  *memory.SessionRepository
	stateManager *state.Manager
	generator    PromptGenerator
	exporter     PromptExporter
	archiveRepo  contract.PromptArchiveRepository
	publisher    IPublisherService
	logger       logger.ILogger
}

// NewDialogueService wires the dialogue. archiveRepo may be nil when no
// database is configured; publisher may be nil when events are not wanted.
func NewDialogueService(
	sessionRepo *memory.SessionRepository,
	generator PromptGenerator,
	exporter PromptExporter,
	archiveRepo contract.PromptArchiveRepository,
	publisher IPublisherService,
	logger logger.ILogger,
) IDialogueService {
	if publisher == nil {
		publisher = NewNoopPublisherService()
	}
	return &dialogueService{
		sessionRepo:  sessionRepo,
		stateManager: state.NewManager(sessionRepo, logger),
		generator:    generator,
		exporter:     exporter,
		archiveRepo:  archiveRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// HandleMessage processes one text message. Known slash commands are handled
// as actions; anything else is input for the current state.
func (ds *dialogueService) HandleMessage(ctx context.Context, userID, text string) *dto.Reply {
	unlock := ds.sessionRepo.Lock(userID)
	defer unlock()

	trimmed := strings.TrimSpace(text)
	if action, isCommand := dto.ParseCommand(trimmed); isCommand {
		reply, err := ds.dispatch(ctx, userID, action)
		return ds.finish(userID, string(action), reply, err)
	}

	var (
		reply *dto.Reply
		err   error
	)
	switch st := ds.stateManager.Current(userID).(type) {
	case store.AwaitingTaskDescription:
		reply, err = ds.handleTaskDescription(ctx, userID, trimmed)
	case store.AwaitingClarificationAnswers:
		reply, err = ds.handleAnswer(ctx, userID, st.Next, trimmed)
	case store.EditingSection:
		reply, err = ds.handleSectionEdit(ctx, userID, st.Sections, trimmed)
	case store.AddingRequirement:
		reply, err = ds.handleAddRequirement(ctx, userID, trimmed)
	case store.RemovingRequirement:
		reply, err = ds.handleRemoveRequirement(ctx, userID, trimmed)
	default:
		err = errUnrecognized
	}
	return ds.finish(userID, "message", reply, err)
}

// HandleAction processes a menu action
func (ds *dialogueService) HandleAction(ctx context.Context, userID string, action dto.Action) *dto.Reply {
	unlock := ds.sessionRepo.Lock(userID)
	defer unlock()

	reply, err := ds.dispatch(ctx, userID, action)
	return ds.finish(userID, string(action), reply, err)
}

var errUnrecognized = errors.New("unrecognized input")

func (ds *dialogueService) dispatch(ctx context.Context, userID string, action dto.Action) (*dto.Reply, error) {
	switch action {
	case dto.ActionStart:
		return ds.reset(ctx, userID, constant.WelcomeMessage), nil
	case dto.ActionRestart:
		return ds.reset(ctx, userID, constant.RestartMessage), nil
	case dto.ActionHelp:
		return okReply(constant.HelpMessage), nil
	case dto.ActionEditTask:
		ds.stateManager.Reset(userID)
		return okReply(constant.EditTaskMessage), nil
	case dto.ActionAccept:
		return ds.acceptRecommendations(ctx, userID)
	case dto.ActionRethink:
		return ds.rethinkRecommendations(ctx, userID)
	case dto.ActionSave:
		return ds.savePrompt(ctx, userID)
	case dto.ActionExport:
		return ds.exportPrompt(ctx, userID)
	case dto.ActionEditSection:
		return ds.beginSectionEdit(userID)
	case dto.ActionAddRequirement:
		return ds.beginDocumentInput(userID, ds.stateManager.ToAddingRequirement, constant.AddRequirementMessage)
	case dto.ActionRemoveRequirement:
		return ds.beginDocumentInput(userID, ds.stateManager.ToRemovingRequirement, constant.RemoveRequirementMessage)
	}
	return nil, errUnrecognized
}

// finish turns a handler result into the reply sent to the user. Errors never
// leave the service.
func (ds *dialogueService) finish(userID, event string, reply *dto.Reply, err error) *dto.Reply {
	if err != nil {
		reply = ds.errorReply(userID, event, err)
	}
	reply.State = string(ds.stateManager.Current(userID).Name())
	return reply
}

func (ds *dialogueService) errorReply(userID, event string, err error) *dto.Reply {
	var (
		validationErr   *ValidationError
		prerequisiteErr *PrerequisiteError
	)
	switch {
	case errors.As(err, &validationErr):
		return &dto.Reply{Kind: dto.ReplyValidationError, Text: validationErr.Message}
	case errors.As(err, &prerequisiteErr):
		return &dto.Reply{Kind: dto.ReplyMissingData, Text: prerequisiteErr.Message}
	case errors.Is(err, errUnrecognized), errors.Is(err, state.ErrInvalidTransition):
		return &dto.Reply{Kind: dto.ReplyUnrecognized, Text: constant.UnrecognizedMessage}
	case errors.Is(err, completion.ErrGenerationFailed):
		ds.logger.Error(dialogueModule, "Generation failed", map[string]interface{}{
			"user_id": userID,
			"event":   event,
			"error":   err.Error(),
		})
		return &dto.Reply{Kind: dto.ReplyGenerationFailed, Text: constant.GenerationFailedMessage}
	}

	ds.logger.Error(dialogueModule, "Event failed", map[string]interface{}{
		"user_id": userID,
		"event":   event,
		"error":   err.Error(),
	})
	return &dto.Reply{Kind: dto.ReplyInternalError, Text: constant.InternalErrorMessage}
}

func okReply(text string, actions ...dto.Action) *dto.Reply {
	return &dto.Reply{Kind: dto.ReplyOK, Text: text, Actions: actions}
}

func (ds *dialogueService) publish(ctx context.Context, eventType, userID string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["user_id"] = userID
	if err := ds.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		ds.logger.Warn(dialogueModule, "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func (ds *dialogueService) reset(ctx context.Context, userID, text string) *dto.Reply {
	ds.sessionRepo.Clear(userID)
	ds.publish(ctx, events.SessionReset, userID, nil)
	return okReply(text)
}

func (ds *dialogueService) handleTaskDescription(ctx context.Context, userID, task string) (*dto.Reply, error) {
	if utf8.RuneCountInString(task) < MinTaskLength {
		return nil, &ValidationError{Message: constant.TaskTooShortMessage}
	}

	ds.logger.Info(dialogueModule, "Task description received", map[string]interface{}{
		"user_id": userID,
		"length":  utf8.RuneCountInString(task),
	})
	ds.sessionRepo.SetTaskDescription(userID, task)

	questions, err := ds.generator.GenerateClarificationQuestions(ctx, task)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: questions: none extracted", completion.ErrGenerationFailed)
	}

	ds.sessionRepo.SetQuestions(userID, questions)
	if err := ds.stateManager.ToAwaitingAnswers(userID, 0); err != nil {
		return nil, err
	}
	ds.publish(ctx, events.QuestionsGenerated, userID, map[string]interface{}{"count": len(questions)})

	return okReply(fmt.Sprintf(constant.QuestionsTemplate, numbered(questions), questions[0])), nil
}

// handleAnswer records text as the answer to question next. Once every
// question is answered recommendations are generated; if that fails the state
// keeps next == len(questions) and the following message retries.
func (ds *dialogueService) handleAnswer(ctx context.Context, userID string, next int, text string) (*dto.Reply, error) {
	session := ds.sessionRepo.Get(userID)
	questions := session.ClarificationQuestions
	if len(questions) == 0 {
		return nil, &PrerequisiteError{Message: constant.QuestionsMissingMessage}
	}

	if next < len(questions) {
		ds.sessionRepo.AddAnswer(userID, questions[next], text)
		next++
		if err := ds.stateManager.ToAwaitingAnswers(userID, next); err != nil {
			return nil, err
		}
		if next < len(questions) {
			return okReply(fmt.Sprintf(constant.AnswerAcceptedTemplate,
				next, len(questions), questions[next], len(questions)-next)), nil
		}
	}

	return ds.generateRecommendations(ctx, userID)
}

func (ds *dialogueService) generateRecommendations(ctx context.Context, userID string) (*dto.Reply, error) {
	session := ds.sessionRepo.Get(userID)
	if strings.TrimSpace(session.TaskDescription) == "" {
		return nil, &PrerequisiteError{Message: constant.MissingTaskMessage}
	}
	if len(session.Answers) == 0 {
		return nil, &PrerequisiteError{Message: constant.MissingAnswersMessage}
	}

	rec, err := ds.generator.GenerateRecommendations(ctx, session.TaskDescription, session.Answers)
	if err != nil {
		return nil, err
	}

	ds.sessionRepo.SetRecommendations(userID, rec)
	if err := ds.stateManager.ToShowingRecommendations(userID); err != nil {
		return nil, err
	}
	ds.publish(ctx, events.RecommendationsGenerated, userID, map[string]interface{}{"answers": len(session.Answers)})

	return okReply(fmt.Sprintf(constant.RecommendationsTemplate, recommendation.Format(rec)), dto.RecommendationActions...), nil
}

func (ds *dialogueService) requireRecommendationsShown(userID string) error {
	if ds.stateManager.Current(userID).Name() != store.StateShowingRecommendations {
		return &PrerequisiteError{Message: constant.MissingRecommendationsMessage}
	}
	return nil
}

func (ds *dialogueService) acceptRecommendations(ctx context.Context, userID string) (*dto.Reply, error) {
	if err := ds.requireRecommendationsShown(userID); err != nil {
		return nil, err
	}

	session := ds.sessionRepo.Get(userID)
	if strings.TrimSpace(session.TaskDescription) == "" {
		return nil, &PrerequisiteError{Message: constant.MissingTaskMessage}
	}
	if session.Recommendations.IsZero() {
		return nil, &PrerequisiteError{Message: constant.MissingRecommendationsMessage}
	}

	doc, err := ds.generator.GenerateFinalDocument(ctx, session.TaskDescription, session.Recommendations)
	if err != nil {
		return nil, err
	}

	ds.sessionRepo.SetDocument(userID, doc)
	if err := ds.stateManager.ToPromptGenerated(userID); err != nil {
		return nil, err
	}
	ds.publish(ctx, events.PromptGenerated, userID, map[string]interface{}{
		"sections": len(document.SectionList(doc)),
	})

	return okReply(fmt.Sprintf(constant.PromptReadyTemplate, doc), dto.PromptActions...), nil
}

func (ds *dialogueService) rethinkRecommendations(ctx context.Context, userID string) (*dto.Reply, error) {
	if err := ds.requireRecommendationsShown(userID); err != nil {
		return nil, err
	}
	return ds.generateRecommendations(ctx, userID)
}

func (ds *dialogueService) requirePrompt(userID string) (*store.Session, error) {
	session := ds.sessionRepo.Get(userID)
	if strings.TrimSpace(session.CurrentPrompt) == "" {
		return nil, &PrerequisiteError{Message: constant.NoPromptMessage}
	}
	return session, nil
}

func (ds *dialogueService) savePrompt(ctx context.Context, userID string) (*dto.Reply, error) {
	session, err := ds.requirePrompt(userID)
	if err != nil {
		return nil, err
	}

	savedAt := ds.sessionRepo.MarkSaved(userID)
	if ds.archiveRepo != nil {
		archive := &entity.PromptArchive{
			UserId:          userID,
			TaskDescription: session.TaskDescription,
			Answers:         session.Answers,
			Recommendations: session.Recommendations,
			Prompt:          session.CurrentPrompt,
			EditedCount:     session.EditedCount,
			SavedAt:         savedAt,
		}
		if err := ds.archiveRepo.Create(ctx, archive); err != nil {
			return nil, fmt.Errorf("archive prompt: %w", err)
		}
	}
	ds.publish(ctx, events.PromptSaved, userID, map[string]interface{}{
		"edited_count": session.EditedCount,
		"archived":     ds.archiveRepo != nil,
	})

	return okReply(constant.PromptSavedMessage), nil
}

func (ds *dialogueService) exportPrompt(ctx context.Context, userID string) (*dto.Reply, error) {
	session, err := ds.requirePrompt(userID)
	if err != nil {
		return nil, err
	}

	file, err := ds.exporter.Export(userID, session.CurrentPrompt)
	if err != nil {
		return nil, fmt.Errorf("export prompt: %w", err)
	}
	ds.logger.Info(dialogueModule, "Prompt exported", map[string]interface{}{
		"user_id": userID,
		"path":    file.Path,
	})
	ds.publish(ctx, events.PromptExported, userID, map[string]interface{}{"filename": file.Filename})

	reply := okReply(constant.PromptExportedCaption)
	reply.File = &dto.FileAttachment{
		Filename: file.Filename,
		Caption:  constant.PromptExportedCaption,
		Content:  file.Content,
	}
	return reply, nil
}

func (ds *dialogueService) beginSectionEdit(userID string) (*dto.Reply, error) {
	session, err := ds.requirePrompt(userID)
	if err != nil {
		return nil, err
	}

	sections := document.SectionList(session.CurrentPrompt)
	if err := ds.stateManager.ToEditingSection(userID, sections); err != nil {
		return nil, err
	}
	return okReply(fmt.Sprintf(constant.SectionListTemplate, numbered(sections))), nil
}

func (ds *dialogueService) beginDocumentInput(userID string, transition func(userID string) error, text string) (*dto.Reply, error) {
	if _, err := ds.requirePrompt(userID); err != nil {
		return nil, err
	}
	if err := transition(userID); err != nil {
		return nil, err
	}
	return okReply(text), nil
}

// ParseSectionEdit splits "number: new text" and resolves the 1-based number
// against sections.
func ParseSectionEdit(input string, sections []string) (string, string, error) {
	rawIndex, body, found := strings.Cut(input, ":")
	if !found {
		return "", "", &ValidationError{Message: constant.SectionFormatMessage}
	}

	index, err := strconv.Atoi(strings.TrimSpace(rawIndex))
	if err != nil {
		return "", "", &ValidationError{Message: constant.SectionNumberMessage}
	}
	if index < 1 || index > len(sections) {
		return "", "", &ValidationError{Message: fmt.Sprintf(constant.SectionRangeTemplate, len(sections))}
	}
	return sections[index-1], strings.TrimSpace(body), nil
}

func (ds *dialogueService) handleSectionEdit(ctx context.Context, userID string, sections []string, text string) (*dto.Reply, error) {
	session, err := ds.requirePrompt(userID)
	if err != nil {
		ds.stateManager.Reset(userID)
		return nil, err
	}

	heading, body, err := ParseSectionEdit(text, sections)
	if err != nil {
		return nil, err
	}

	return ds.replaceDocument(ctx, userID, document.UpdateSection(session.CurrentPrompt, heading, body),
		constant.SectionUpdatedTemplate, "update_section")
}

func (ds *dialogueService) handleAddRequirement(ctx context.Context, userID, text string) (*dto.Reply, error) {
	session, err := ds.requirePrompt(userID)
	if err != nil {
		ds.stateManager.Reset(userID)
		return nil, err
	}
	return ds.replaceDocument(ctx, userID, document.AppendRequirement(session.CurrentPrompt, text),
		constant.RequirementAddedTemplate, "add_requirement")
}

func (ds *dialogueService) handleRemoveRequirement(ctx context.Context, userID, text string) (*dto.Reply, error) {
	session, err := ds.requirePrompt(userID)
	if err != nil {
		ds.stateManager.Reset(userID)
		return nil, err
	}
	return ds.replaceDocument(ctx, userID, document.RemoveRequirementLines(session.CurrentPrompt, text),
		constant.RequirementRemovedTemplate, "remove_requirement")
}

func (ds *dialogueService) replaceDocument(ctx context.Context, userID, doc, template, edit string) (*dto.Reply, error) {
	ds.sessionRepo.ReplaceDocument(userID, doc)
	if err := ds.stateManager.ToPromptGenerated(userID); err != nil {
		return nil, err
	}
	ds.publish(ctx, events.PromptEdited, userID, map[string]interface{}{
		"edit":         edit,
		"edited_count": ds.sessionRepo.Get(userID).EditedCount,
	})
	return okReply(fmt.Sprintf(template, doc), dto.PromptActions...), nil
}

// Snapshot returns a read-only view of the session of userID
func (ds *dialogueService) Snapshot(_ context.Context, userID string) *dto.SessionResponse {
	unlock := ds.sessionRepo.Lock(userID)
	defer unlock()

	session := ds.sessionRepo.Get(userID)
	current := ds.stateManager.Current(userID)

	resp := &dto.SessionResponse{
		UserID:          userID,
		State:           string(current.Name()),
		TaskDescription: session.TaskDescription,
		Questions:       append([]string{}, session.ClarificationQuestions...),
		Answers:         append([]store.Answer{}, session.Answers...),
		Recommendations: session.Recommendations,
		CurrentPrompt:   session.CurrentPrompt,
		CreatedAt:       session.CreatedAt,
		EditedCount:     session.EditedCount,
		SavedAt:         session.SavedAt,
	}
	if editing, isEditing := current.(store.EditingSection); isEditing {
		resp.Sections = editing.Sections
	} else if session.CurrentPrompt != "" {
		resp.Sections = document.SectionList(session.CurrentPrompt)
	}
	return resp
}

// Archive lists the saved prompts of userID, newest first
func (ds *dialogueService) Archive(ctx context.Context, userID string) ([]*dto.ArchiveResponse, error) {
	if ds.archiveRepo == nil {
		return nil, ErrArchiveDisabled
	}

	archives, err := ds.archiveRepo.FindAll(ctx,
		specification.ByUserID{UserID: userID},
		specification.OrderBy{Field: "saved_at", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}

	out := make([]*dto.ArchiveResponse, 0, len(archives))
	for _, a := range archives {
		out = append(out, &dto.ArchiveResponse{
			Id:              a.Id.String(),
			TaskDescription: a.TaskDescription,
			Answers:         a.Answers,
			Recommendations: a.Recommendations,
			Prompt:          a.Prompt,
			EditedCount:     a.EditedCount,
			SavedAt:         a.SavedAt,
		})
	}
	return out, nil
}

func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}
