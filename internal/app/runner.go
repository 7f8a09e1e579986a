package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"learnai_quiz_client/internal/model"
	"learnai_quiz_client/internal/session"
	"learnai_quiz_client/internal/util"
)

// resolveResumePrompt asks the user whether to pick up a paused attempt.
func (a *App) resolveResumePrompt(ctrl *session.Controller) error {
	if ctrl.Phase() != model.PhaseResumePrompt {
		return nil
	}

	snap := ctrl.Snapshot()
	saved := len(snap.SavedAnswers())
	fmt.Printf("You have a paused attempt (%d answered, %s elapsed).\n",
		saved, util.FormatClock(util.SecondsToMs(snap.ElapsedTime)))
	fmt.Print("Resume it? [y/N] ")

	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if strings.EqualFold(strings.TrimSpace(line), "y") {
		return ctrl.Resume()
	}
	return ctrl.StartFresh()
}

// answerLoop is the interactive question loop: pick options, navigate,
// pause, submit. It returns once the attempt is terminal or abandoned.
func (a *App) answerLoop(ctx context.Context, ctrl *session.Controller, autoSubmitted <-chan error) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		select {
		case err := <-autoSubmitted:
			if err != nil {
				fmt.Printf("\nTime is up, but submitting failed: %v\nType 'submit' to retry.\n", err)
			} else {
				fmt.Println("\nTime is up. Your answers were submitted.")
				return nil
			}
		default:
		}

		if ctrl.Phase() == model.PhaseTerminal {
			return nil
		}
		if a.abortIfLoggedOut() {
			return a.loginRequired()
		}

		a.printQuestion(ctrl)
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		input := strings.TrimSpace(line)

		store := ctrl.Store()
		switch {
		case input == "":
			continue
		case input == "q" || input == "quit":
			fmt.Println("Leaving the quiz. Pause first if you want to keep your progress.")
			return nil
		case input == "n" || input == "next":
			ctrl.GoTo(store.CurrentIndex() + 1)
		case input == "p" || input == "prev":
			ctrl.GoTo(store.CurrentIndex() - 1)
		case strings.HasPrefix(input, "g "):
			if n, err := strconv.Atoi(strings.TrimSpace(input[2:])); err == nil {
				ctrl.GoTo(n - 1)
			}
		case input == "pause":
			a.doPause(ctx, ctrl)
		case input == "submit":
			if store.AnsweredCount() < store.Len() {
				fmt.Printf("Answer all questions first (%d of %d answered).\n",
					store.AnsweredCount(), store.Len())
				continue
			}
			if err := a.doSubmit(ctx, ctrl); err == nil {
				return nil
			}
		default:
			if n, err := strconv.Atoi(input); err == nil {
				a.pickOption(ctrl, n)
			} else {
				fmt.Println("Commands: 1..k pick option, n/p move, g N jump, pause, submit, quit")
			}
		}
	}
}

func (a *App) printQuestion(ctrl *session.Controller) {
	store := ctrl.Store()
	q := store.CurrentQuestion()

	fmt.Println()
	if remaining := ctrl.RemainingMs(); remaining >= 0 {
		fmt.Printf("[%s]  ", util.FormatClock(remaining))
	}
	fmt.Printf("Question %d of %d  (%d/%d answered)\n",
		store.CurrentIndex()+1, store.Len(), store.AnsweredCount(), store.Len())
	fmt.Println(q.Text)
	selected := store.AnswerFor(q.ID)
	for i, option := range q.Options {
		mark := " "
		if option == selected {
			mark = "*"
		}
		fmt.Printf("  %d.%s %s\n", i+1, mark, option)
	}
}

func (a *App) pickOption(ctrl *session.Controller, n int) {
	store := ctrl.Store()
	q := store.CurrentQuestion()
	if n < 1 || n > len(q.Options) {
		fmt.Printf("Pick an option between 1 and %d.\n", len(q.Options))
		return
	}
	ctrl.SelectAnswer(q.ID, q.Options[n-1])
}

func (a *App) doPause(ctx context.Context, ctrl *session.Controller) {
	receipt, err := ctrl.Pause(ctx)
	if err != nil {
		fmt.Printf("Pause failed: %v\n", err)
		return
	}
	fmt.Printf("Attempt paused (%d of %d answered saved). You can close this window.\n",
		receipt.AnsweredQuestions, receipt.TotalQuestions)
}

func (a *App) doSubmit(ctx context.Context, ctrl *session.Controller) error {
	if err := ctrl.Submit(ctx); err != nil {
		fmt.Printf("Submit failed: %v\n", err)
		return err
	}
	fmt.Println("Submitted.")
	return nil
}
