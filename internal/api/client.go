package api

import (
	"context"
	"fmt"
	"net/http"

	"learnai_quiz_client/internal/auth"
	"learnai_quiz_client/internal/config"
	"learnai_quiz_client/internal/model"
	"learnai_quiz_client/internal/util"
	"learnai_quiz_client/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PauseRequest snapshots an in-progress attempt for server-side durability.
// ElapsedTime is in seconds.
type PauseRequest struct {
	Answers     []model.AttemptAnswer `json:"answers"`
	ElapsedTime int64                 `json:"elapsedTime"`
}

// SubmitRequest completes an attempt. TimeSpent is in seconds; AttemptID is
// set only when the attempt went through a pause or resume.
type SubmitRequest struct {
	UserID    string                `json:"userId"`
	Answers   []model.AttemptAnswer `json:"answers"`
	TimeSpent int64                 `json:"timeSpent"`
	AttemptID string                `json:"attemptId,omitempty"`
}

// Client is the single outbound HTTP surface of the quiz session. Every
// request carries the bearer token from the session provider; a 401 from any
// route triggers the provider's teardown hook.
type Client struct {
	rest    *resty.Client
	auth    auth.Provider
	limiter *rate.Limiter
}

func NewClient(cfg config.APIConfig, provider auth.Provider) *Client {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 5
	}
	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout()).
		SetHeader("Content-Type", "application/json")

	return &Client{
		rest:    rest,
		auth:    provider,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := c.rest.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
	if token := c.auth.AuthToken(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		c.auth.OnUnauthorized()
		return resp, util.ErrUnauthorized
	}
	return resp, nil
}

// GetQuiz fetches the quiz resource. The quiz is immutable for the duration
// of an attempt and is fetched exactly once per session.
func (c *Client) GetQuiz(ctx context.Context, quizID string) (*model.Quiz, error) {
	resp, err := c.do(ctx, resty.MethodGet, "/api/v1/quiz/"+quizID, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, util.ErrQuizNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s (%d)", errorMessage(resp.Body(), "failed to get quiz"), resp.StatusCode())
	}

	var quiz model.Quiz
	if err := decodeInto(resp.Body(), &quiz, "quiz", "data"); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// GetResumeSnapshot fetches the paused-attempt snapshot if one exists.
// A 404 or empty body means no paused attempt; that is (nil, nil), not an
// error.
func (c *Client) GetResumeSnapshot(ctx context.Context, quizID string) (*model.ResumeSnapshot, error) {
	resp, err := c.do(ctx, resty.MethodGet, "/api/v1/quiz/"+quizID+"/resume", nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound || len(resp.Body()) == 0 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s (%d)", errorMessage(resp.Body(), "failed to check paused attempt"), resp.StatusCode())
	}

	var snapshot model.ResumeSnapshot
	if err := decodeInto(resp.Body(), &snapshot, "attempt", "data"); err != nil {
		return nil, err
	}
	if snapshot.AttemptID == "" {
		return nil, nil
	}
	return &snapshot, nil
}

// PauseAttempt persists the attempt's answers and elapsed time server-side.
func (c *Client) PauseAttempt(ctx context.Context, quizID string, req PauseRequest) (*model.PauseReceipt, error) {
	resp, err := c.do(ctx, resty.MethodPost, "/api/v1/quiz/"+quizID+"/pause", req)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s (%d)", errorMessage(resp.Body(), "failed to pause quiz"), resp.StatusCode())
	}

	var receipt model.PauseReceipt
	if err := decodeInto(resp.Body(), &receipt, "attempt", "data"); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// SubmitAttempt completes the attempt. The success body is opaque; the
// caller only cares that the submit landed.
func (c *Client) SubmitAttempt(ctx context.Context, quizID string, req SubmitRequest) error {
	resp, err := c.do(ctx, resty.MethodPost, "/api/v1/quiz/"+quizID+"/submit", req)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%s (%d)", errorMessage(resp.Body(), "failed to submit quiz"), resp.StatusCode())
	}
	logger.Log.Debug("Submit accepted", zap.String("quizId", quizID), zap.Int("answers", len(req.Answers)))
	return nil
}

// GetResults fetches the scored breakdown of a completed attempt.
func (c *Client) GetResults(ctx context.Context, quizID string) (*model.QuizResult, error) {
	resp, err := c.do(ctx, resty.MethodGet, "/api/v1/results/quiz/"+quizID, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, util.ErrQuizNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s (%d)", errorMessage(resp.Body(), "failed to get results"), resp.StatusCode())
	}

	var result model.QuizResult
	if err := decodeInto(resp.Body(), &result, "result", "data"); err != nil {
		return nil, err
	}
	return &result, nil
}
