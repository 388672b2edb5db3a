package state

import (
	"errors"
	"fmt"

	"prompt-builder-bot/internal/pkg/logger"
	"prompt-builder-bot/pkg/store"
)

const moduleName = "StateManager"

var ErrInvalidTransition = errors.New("invalid state transition")

// Store is where the per-user dialogue state lives
type Store interface {
	State(userID string) store.State
	SetState(userID string, state store.State)
}

// documentPhase are the states in which a generated prompt is being worked on
var documentPhase = []store.StateName{
	store.StatePromptGenerated,
	store.StateEditingSection,
	store.StateAddingRequirement,
	store.StateRemovingRequirement,
}

// transitions lists the allowed targets per state. Returning to
// AwaitingTaskDescription is always allowed.
var transitions = map[store.StateName][]store.StateName{
	store.StateAwaitingTaskDescription: {
		store.StateAwaitingClarificationAnswers,
	},
	store.StateAwaitingClarificationAnswers: {
		store.StateAwaitingClarificationAnswers,
		store.StateShowingRecommendations,
	},
	store.StateShowingRecommendations: {
		store.StateShowingRecommendations,
		store.StatePromptGenerated,
	},
	store.StatePromptGenerated:     documentPhase,
	store.StateEditingSection:      documentPhase,
	store.StateAddingRequirement:   documentPhase,
	store.StateRemovingRequirement: documentPhase,
}

// Manager handles session state transitions
type Manager struct {
	store  Store
	logger logger.ILogger
}

// NewManager creates a new state manager
func NewManager(store Store, logger logger.ILogger) *Manager {
	return &Manager{store: store, logger: logger}
}

// Current returns the state of userID
func (m *Manager) Current(userID string) store.State {
	return m.store.State(userID)
}

// CanTransition reports whether from may move to to
func CanTransition(from, to store.StateName) bool {
	if to == store.StateAwaitingTaskDescription {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionTo moves userID to next
func (m *Manager) TransitionTo(userID string, next store.State) error {
	from := m.store.State(userID).Name()
	if !CanTransition(from, next.Name()) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next.Name())
	}

	m.store.SetState(userID, next)
	m.logger.Debug(moduleName, "State transition", map[string]interface{}{
		"user_id": userID,
		"from":    string(from),
		"to":      string(next.Name()),
	})
	return nil
}

// Reset puts userID back at the start of the dialogue
func (m *Manager) Reset(userID string) {
	m.store.SetState(userID, store.InitialState())
}

func (m *Manager) ToAwaitingAnswers(userID string, next int) error {
	return m.TransitionTo(userID, store.AwaitingClarificationAnswers{Next: next})
}

func (m *Manager) ToShowingRecommendations(userID string) error {
	return m.TransitionTo(userID, store.ShowingRecommendations{})
}

func (m *Manager) ToPromptGenerated(userID string) error {
	return m.TransitionTo(userID, store.PromptGenerated{})
}

// ToEditingSection keeps the numbered section list offered to the user
func (m *Manager) ToEditingSection(userID string, sections []string) error {
	return m.TransitionTo(userID, store.EditingSection{Sections: sections})
}

func (m *Manager) ToAddingRequirement(userID string) error {
	return m.TransitionTo(userID, store.AddingRequirement{})
}

func (m *Manager) ToRemovingRequirement(userID string) error {
	return m.TransitionTo(userID, store.RemovingRequirement{})
}
