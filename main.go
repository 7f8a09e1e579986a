package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"learnai_quiz_client/internal/app"
	"learnai_quiz_client/internal/config"
	"learnai_quiz_client/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "config directory")
	resultsOnly := flag.Bool("results", false, "show results for the quiz and exit")
	flag.Parse()

	quizID := flag.Arg(0)
	if quizID == "" {
		fmt.Fprintln(os.Stderr, "usage: learnai_quiz_client [-config dir] [-results] <quiz-id>")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()
	application.WatchConfig(*configDir)

	ctx := context.Background()
	if *resultsOnly {
		if err := application.ShowResults(ctx, quizID); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := application.Run(ctx, quizID); err != nil {
		os.Exit(1)
	}
}
