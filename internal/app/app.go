package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"learnai_quiz_client/internal/api"
	"learnai_quiz_client/internal/auth"
	"learnai_quiz_client/internal/config"
	"learnai_quiz_client/internal/model"
	"learnai_quiz_client/internal/render"
	"learnai_quiz_client/internal/session"
	"learnai_quiz_client/internal/util"
	"learnai_quiz_client/pkg/configwatcher"
	"learnai_quiz_client/pkg/logger"
)

type App struct {
	Config *config.Config
	Auth   *auth.FileProvider
	API    *api.Client

	loggedOut atomic.Bool
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	a := &App{Config: cfg}
	a.Auth = auth.NewFileProvider(cfg.Auth.StoragePath, func() {
		a.loggedOut.Store(true)
	})
	a.API = api.NewClient(cfg.API, a.Auth)
	return a
}

// WatchConfig reloads the config file in the background so base URL and log
// level changes take effect without restarting mid-attempt tooling.
func (a *App) WatchConfig(configDir string) {
	path := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return
	}
	go configwatcher.WatchConfig(path, func(cfg *config.Config) {
		a.Config = cfg
		logger.Reinit(cfg)
		logger.Log.Info("Config reloaded")
	})
}

// Run drives one interactive quiz attempt end to end and returns when the
// attempt is terminal or abandoned.
func (a *App) Run(ctx context.Context, quizID string) error {
	ctrl := session.NewController(a.API, a.Auth, quizID)
	defer ctrl.Close()

	autoSubmitted := make(chan error, 1)
	ctrl.OnAutoSubmit = func(err error) {
		autoSubmitted <- err
	}

	_, err := ctrl.Load(ctx)
	switch {
	case errors.Is(err, util.ErrQuizCompleted):
		fmt.Println("This quiz is already completed.")
		return a.ShowResults(ctx, quizID)
	case errors.Is(err, util.ErrUnauthorized):
		return a.loginRequired()
	case errors.Is(err, util.ErrQuizNotFound):
		fmt.Println("Quiz not found.")
		return err
	case errors.Is(err, util.ErrQuizNoQuestions):
		fmt.Println("This quiz has no questions available. Please try again later.")
		return err
	case err != nil:
		fmt.Printf("Failed to load quiz: %v\n", err)
		return err
	}

	if err := a.resolveResumePrompt(ctrl); err != nil {
		return err
	}

	if err := a.answerLoop(ctx, ctrl, autoSubmitted); err != nil {
		return err
	}

	if ctrl.Phase() == model.PhaseTerminal {
		return a.ShowResults(ctx, quizID)
	}
	return nil
}

// ShowResults fetches the scored breakdown and prints it.
func (a *App) ShowResults(ctx context.Context, quizID string) error {
	result, err := a.API.GetResults(ctx, quizID)
	if err != nil {
		if errors.Is(err, util.ErrUnauthorized) {
			return a.loginRequired()
		}
		fmt.Printf("Failed to load results: %v\n", err)
		return err
	}
	render.Results(os.Stdout, result)
	return nil
}

func (a *App) loginRequired() error {
	fmt.Println("Your session has expired. Please log in again.")
	logger.Log.Warn("Aborting attempt, unauthorized")
	return util.ErrUnauthorized
}

func (a *App) abortIfLoggedOut() bool {
	return a.loggedOut.Load()
}
