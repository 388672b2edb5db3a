package store

// StateName identifies a dialogue phase
type StateName string

const (
	StateAwaitingTaskDescription      StateName = "AWAITING_TASK_DESCRIPTION"
	StateAwaitingClarificationAnswers StateName = "AWAITING_CLARIFICATION_ANSWERS"
	StateShowingRecommendations       StateName = "SHOWING_RECOMMENDATIONS"
	StatePromptGenerated              StateName = "PROMPT_GENERATED"
	StateEditingSection               StateName = "EDITING_SECTION"
	StateAddingRequirement            StateName = "ADDING_REQUIREMENT"
	StateRemovingRequirement          StateName = "REMOVING_REQUIREMENT"
)

// State is the dialogue phase of a session. Each phase is its own type so
// phase-specific data travels with it.
type State interface {
	Name() StateName
}

type AwaitingTaskDescription struct{}

// AwaitingClarificationAnswers waits for the answer to question Next
type AwaitingClarificationAnswers struct {
	Next int
}

type ShowingRecommendations struct{}

type PromptGenerated struct{}

// EditingSection keeps the numbered section list that was offered to the user
type EditingSection struct {
	Sections []string
}

type AddingRequirement struct{}

type RemovingRequirement struct{}

func (AwaitingTaskDescription) Name() StateName      { return StateAwaitingTaskDescription }
func (AwaitingClarificationAnswers) Name() StateName { return StateAwaitingClarificationAnswers }
func (ShowingRecommendations) Name() StateName       { return StateShowingRecommendations }
func (PromptGenerated) Name() StateName              { return StatePromptGenerated }
func (EditingSection) Name() StateName               { return StateEditingSection }
func (AddingRequirement) Name() StateName            { return StateAddingRequirement }
func (RemovingRequirement) Name() StateName          { return StateRemovingRequirement }

// InitialState is the phase of a freshly created session
func InitialState() State {
	return AwaitingTaskDescription{}
}
