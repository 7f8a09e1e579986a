package model

// QuizStatus is the server-side lifecycle status of a quiz.
type QuizStatus string

const (
	QuizStatusActive    QuizStatus = "ACTIVE"
	QuizStatusPaused    QuizStatus = "PAUSED"
	QuizStatusCompleted QuizStatus = "COMPLETED"
)

// Question identity is the ID; the options order is the canonical order shown
// to the user and answers reference options by value, never by index.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

// Quiz is immutable for the duration of an attempt. Timer is the allotted
// duration in milliseconds; zero means the quiz is untimed.
type Quiz struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Difficulty string     `json:"difficulty"`
	Type       string     `json:"type"`
	Timer      int64      `json:"timer"`
	Status     QuizStatus `json:"status"`
	Questions  []Question `json:"questions"`
}

func (q *Quiz) Timed() bool {
	return q.Timer > 0
}

// ResumeQuestion is a question as returned by the resume endpoint, carrying
// the answer saved at pause time when one exists.
type ResumeQuestion struct {
	Question
	SavedAnswer string `json:"savedAnswer,omitempty"`
}

// ResumeSnapshot is the server-held record of a paused attempt.
// ElapsedTime is in seconds, unlike Quiz.Timer.
type ResumeSnapshot struct {
	AttemptID   string           `json:"attemptId"`
	Status      QuizStatus       `json:"status"`
	ElapsedTime int64            `json:"elapsedTime"`
	Questions   []ResumeQuestion `json:"questions"`
}

// SavedAnswers collects the snapshot's recorded answers keyed by question id.
func (s *ResumeSnapshot) SavedAnswers() map[string]string {
	answers := make(map[string]string)
	for _, q := range s.Questions {
		if q.SavedAnswer != "" {
			answers[q.ID] = q.SavedAnswer
		}
	}
	return answers
}
