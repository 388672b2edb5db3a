package store

import "time"

// Answer is a single clarification question paired with the user's reply
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Recommendation is the structured summary of technical recommendations
type Recommendation struct {
	TechStack    string   `json:"tech_stack"`
	Architecture string   `json:"architecture"`
	KeyFeatures  []string `json:"key_features"`
	Scalability  string   `json:"scalability"`
	Compliance   string   `json:"compliance"`
	Risks        []string `json:"risks"`
	Summary      string   `json:"recommendation_summary"`
}

// IsZero reports whether no recommendation has been generated yet
func (r Recommendation) IsZero() bool {
	return r.TechStack == "" && r.Architecture == "" && len(r.KeyFeatures) == 0 &&
		r.Scalability == "" && r.Compliance == "" && len(r.Risks) == 0 && r.Summary == ""
}

// Session represents the active user conversation in memory
type Session struct {
	UserID string `json:"user_id"`

	TaskDescription        string   `json:"task_description"`
	ClarificationQuestions []string `json:"clarification_questions"`
	Answers                []Answer `json:"answers"`

	Recommendations Recommendation `json:"recommendations"`

	// THE DOCUMENT (generated prompt, edited in place)
	CurrentPrompt string `json:"current_prompt"`

	CreatedAt   time.Time  `json:"created_at"`
	EditedCount int        `json:"edited_count"`
	SavedAt     *time.Time `json:"saved_at,omitempty"`
}

// NewSession creates an empty session for the user
func NewSession(userID string, now time.Time) *Session {
	return &Session{
		UserID:                 userID,
		ClarificationQuestions: []string{},
		Answers:                []Answer{},
		CreatedAt:              now,
	}
}
