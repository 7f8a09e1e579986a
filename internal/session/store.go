package session

import (
	"learnai_quiz_client/internal/model"
)

// Store holds the mutable attempt state: collected answers and the
// navigation cursor. It performs no network I/O and no answer validation;
// whatever option text is selected is what gets recorded, last write wins.
type Store struct {
	questions []model.Question
	answers   map[string]string
	current   int
}

func NewStore(questions []model.Question) *Store {
	return &Store{
		questions: questions,
		answers:   make(map[string]string),
	}
}

func (s *Store) Len() int {
	return len(s.questions)
}

func (s *Store) Questions() []model.Question {
	return s.questions
}

// SelectAnswer upserts the answer for a question. At most one answer per
// question is held; selecting again replaces the previous choice.
func (s *Store) SelectAnswer(questionID, optionText string) {
	s.answers[questionID] = optionText
}

// AnswerFor returns the recorded answer for a question, or "" when the
// question is unanswered.
func (s *Store) AnswerFor(questionID string) string {
	return s.answers[questionID]
}

// GoTo moves the cursor, clamped into [0, len-1]. The lower bound is
// applied last so an empty question list still pins the cursor at zero.
func (s *Store) GoTo(index int) {
	if max := len(s.questions) - 1; index > max {
		index = max
	}
	if index < 0 {
		index = 0
	}
	s.current = index
}

// CurrentIndex is always within bounds for a non-empty question list.
func (s *Store) CurrentIndex() int {
	return s.current
}

func (s *Store) CurrentQuestion() model.Question {
	return s.questions[s.current]
}

func (s *Store) AnsweredCount() int {
	return len(s.answers)
}

// ApplySaved seeds the answers from a resume snapshot.
func (s *Store) ApplySaved(saved map[string]string) {
	for questionID, answer := range saved {
		s.answers[questionID] = answer
	}
}

// Answers builds the wire answer list in canonical question order.
func (s *Store) Answers() []model.AttemptAnswer {
	out := make([]model.AttemptAnswer, 0, len(s.answers))
	for _, q := range s.questions {
		if answer, ok := s.answers[q.ID]; ok {
			out = append(out, model.AttemptAnswer{QuestionID: q.ID, UserAnswer: answer})
		}
	}
	return out
}
