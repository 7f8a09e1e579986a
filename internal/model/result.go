package model

// QuizResult is the scored breakdown of a completed attempt.
type QuizResult struct {
	ID             string         `json:"id"`
	Quiz           ResultQuiz     `json:"quiz"`
	Score          float64        `json:"score"`
	CorrectCount   int            `json:"correctCount"`
	TotalQuestions int            `json:"totalQuestions"`
	TimeSpent      int64          `json:"timeSpent"`
	CompletedAt    string         `json:"completedAt"`
	Answers        []ResultAnswer `json:"answers"`
}

type ResultQuiz struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	Type       string `json:"type"`
}

type ResultAnswer struct {
	QuestionID    string `json:"questionId"`
	QuestionText  string `json:"questionText"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation,omitempty"`
}
