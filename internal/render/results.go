package render

import (
	"fmt"
	"io"
	"strings"

	"learnai_quiz_client/internal/model"
)

// Results prints the scored breakdown of a completed attempt. Pure display;
// nothing here interprets or mutates the server's scoring.
func Results(w io.Writer, result *model.QuizResult) {
	incorrect := result.TotalQuestions - result.CorrectCount

	fmt.Fprintf(w, "\n%s\n", result.Quiz.Title)
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", len(result.Quiz.Title)))
	fmt.Fprintf(w, "Score: %.0f%%  (%d out of %d correct, %d incorrect)\n",
		result.Score, result.CorrectCount, result.TotalQuestions, incorrect)
	fmt.Fprintf(w, "Time spent: %dm %ds\n\n", result.TimeSpent/60, result.TimeSpent%60)

	for i, answer := range result.Answers {
		mark := "✗"
		if answer.IsCorrect {
			mark = "✓"
		}
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, mark, answer.QuestionText)
		fmt.Fprintf(w, "      your answer: %s\n", answer.UserAnswer)
		if !answer.IsCorrect {
			fmt.Fprintf(w, "      correct answer: %s\n", answer.CorrectAnswer)
		}
		if answer.Explanation != "" {
			fmt.Fprintf(w, "      %s\n", answer.Explanation)
		}
	}
}
