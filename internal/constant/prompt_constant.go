package constant

const (
	// Completion system prompts, one per generation phase

	ClarificationSystemPrompt = `You are a senior software architect helping a user prepare a task for an AI coding assistant.

Read the task description and ask the clarifying questions that matter most for choosing a technical solution:
- target users and expected load
- data that must be stored and its sensitivity
- integrations with external systems
- deployment environment and constraints
- non-functional requirements (security, compliance, performance)

Rules:
- Ask between 3 and 7 questions
- One question per line, numbered "1.", "2.", ...
- Every question ends with "?"
- No introduction, no summary, questions only`

	RecommendationSystemPrompt = `You are a senior software architect. Using the task description and the user's answers, recommend a technical solution.

Respond with a single JSON object and nothing else:
{
  "tech_stack": "languages, frameworks, storage, infrastructure",
  "architecture": "architecture style and main components",
  "key_features": ["feature", "..."],
  "scalability": "how the solution scales",
  "compliance": "security and regulatory considerations",
  "risks": ["risk", "..."],
  "recommendation_summary": "two or three sentences"
}`

	FinalDocumentSystemPrompt = `You write implementation prompts for an AI coding assistant such as Cursor.

Turn the task and the accepted recommendations into a complete, self-contained prompt. Use exactly these Markdown sections, in this order:

# TASK
# GOAL
# REQUIREMENTS
# TECH STACK
# ARCHITECTURE
# ADDITIONAL
# OUTPUT FORMAT

Rules:
- Requirements are a bulleted list, one requirement per line starting with "- "
- Be concrete and testable, no filler
- Output the prompt only`

	// Completion user messages

	ClarificationUserMessageTemplate = "Task description:\n%s"

	RecommendationUserMessageTemplate = "Original task:\n%s\n\nAnswers to clarifying questions:\n%s"

	AnswerTemplate = "Question: %s\nAnswer: %s\n"

	FinalDocumentUserMessageTemplate = "Original task:\n%s\n\nAccepted recommendations:\n%s"

	RecommendationBlockTemplate = `Tech stack: %s
Architecture: %s
Key features: %s
Scalability: %s
Compliance: %s
Risks: %s
Summary: %s`

	NotSpecified = "Not specified"
)

const (
	// Replies sent to the user

	WelcomeMessage = `Hi! I turn a short task description into a detailed prompt for an AI coding assistant.

1. Describe your task
2. Answer a few clarifying questions
3. Review the recommendations
4. Get a prompt you can edit, save and export

Describe your task to begin.`

	HelpMessage = `Commands:
/start - start over
/restart - drop the current session
/accept - accept the recommendations
/rethink - regenerate the recommendations
/edit - change the task description
/save - save the prompt
/export - download the prompt as a file
/edit_section - replace a section of the prompt
/add_requirement - add a requirement
/remove_requirement - remove requirements containing a phrase`

	RestartMessage                = "Session cleared. Describe your task to begin."
	TaskTooShortMessage           = "The task description is too short. Please describe the task in more detail."
	QuestionsTemplate             = "Please answer the following questions, one message per answer:\n\n%s\n\nQuestion 1:\n%s"
	AnswerAcceptedTemplate        = "Answer accepted (%d/%d).\n\nNext question:\n%s\n\nQuestions left: %d"
	QuestionsMissingMessage       = "No questions found. Use /restart to start over."
	RecommendationsTemplate       = "Recommendations are ready.\n\n%s"
	PromptReadyTemplate           = "Your prompt is ready.\n\n%s"
	EditTaskMessage               = "Send the new task description."
	PromptSavedMessage            = "Prompt saved."
	PromptExportedCaption         = "Your prompt"
	SectionListTemplate           = "Sections:\n\n%s\n\nSend `number: new text` to replace a section."
	SectionFormatMessage          = "Wrong format. Use `number: new text`."
	SectionNumberMessage          = "The section number must be a number."
	SectionRangeTemplate          = "Wrong section number. Choose from 1 to %d."
	SectionUpdatedTemplate        = "Section updated.\n\n%s"
	AddRequirementMessage         = "Send the requirement to add."
	RequirementAddedTemplate      = "Requirement added.\n\n%s"
	RemoveRequirementMessage      = "Send a phrase; every requirement containing it will be removed."
	RequirementRemovedTemplate    = "Requirement removed.\n\n%s"
	NoPromptMessage               = "There is no prompt yet. Describe your task and accept the recommendations first."
	MissingTaskMessage            = "The task description is missing. Use /restart to start over."
	MissingAnswersMessage         = "There are no answers to build recommendations from. Use /restart to start over."
	MissingRecommendationsMessage = "There are no active recommendations right now."
	GenerationFailedMessage       = "Something went wrong while talking to the model. Please try again in a moment."
	InternalErrorMessage          = "Something went wrong. Please try again."
	ArchiveDisabledMessage        = "Prompt archive is not configured."
	UnrecognizedMessage           = "I did not understand that. Use /help for the command list or /start to begin."
)
