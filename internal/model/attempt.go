package model

// Phase is the attempt session lifecycle phase. Once a session reaches
// PhaseTerminal it is inert; no further transitions are defined.
type Phase string

const (
	PhaseLoading      Phase = "LOADING"
	PhaseResumePrompt Phase = "RESUME_PROMPT"
	PhaseInProgress   Phase = "IN_PROGRESS"
	PhasePausing      Phase = "PAUSING"
	PhaseSubmitting   Phase = "SUBMITTING"
	PhaseTerminal     Phase = "TERMINAL"
)

// AttemptAnswer is one recorded answer in a pause or submit payload.
type AttemptAnswer struct {
	QuestionID string `json:"questionId"`
	UserAnswer string `json:"userAnswer"`
}

// PauseReceipt is what the server acknowledges a pause with.
type PauseReceipt struct {
	AttemptID         string     `json:"attemptId"`
	Status            QuizStatus `json:"status"`
	ElapsedTime       int64      `json:"elapsedTime"`
	AnsweredQuestions int        `json:"answeredQuestions"`
	TotalQuestions    int        `json:"totalQuestions"`
}
