package session

import (
	"context"
	"sync"

	"learnai_quiz_client/internal/api"
	"learnai_quiz_client/internal/auth"
	"learnai_quiz_client/internal/model"
	"learnai_quiz_client/internal/util"
	"learnai_quiz_client/pkg/logger"

	"go.uber.org/zap"
)

// Controller owns one quiz attempt for the lifetime of one session. All
// state transitions are serialized under a single mutex; network calls
// happen outside the lock and their results are applied only while the
// session is still live.
//
//	LOADING → (RESUME_PROMPT |) IN_PROGRESS → (PAUSING →) IN_PROGRESS
//	IN_PROGRESS → SUBMITTING → TERMINAL
type Controller struct {
	mu sync.Mutex

	client *api.Client
	auth   auth.Provider
	quizID string

	quiz     *model.Quiz
	store    *Store
	timer    *Timer
	snapshot *model.ResumeSnapshot

	phase     model.Phase
	attemptID string
	initialMs int64
	closed    bool

	// OnAutoSubmit receives the outcome of an expiry-triggered submit,
	// which runs off the timer goroutine rather than a user action.
	OnAutoSubmit func(err error)
}

func NewController(client *api.Client, provider auth.Provider, quizID string) *Controller {
	return &Controller{
		client: client,
		auth:   provider,
		quizID: quizID,
		phase:  model.PhaseLoading,
	}
}

func (c *Controller) Phase() model.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) Quiz() *model.Quiz {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quiz
}

func (c *Controller) Snapshot() *model.ResumeSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

func (c *Controller) AttemptID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attemptID
}

// Store exposes the attempt state for the view layer. Callers must not
// retain it past Close.
func (c *Controller) Store() *Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}

// RemainingMs reports the countdown, or -1 for an untimed attempt.
func (c *Controller) RemainingMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil {
		return -1
	}
	return c.timer.Remaining()
}

// Load fetches the quiz and the paused-attempt snapshot concurrently and
// reconciles them. The resulting phase is RESUME_PROMPT when a snapshot
// exists, IN_PROGRESS otherwise. A quiz already completed server-side
// returns ErrQuizCompleted so the caller can go straight to results.
func (c *Controller) Load(ctx context.Context) (model.Phase, error) {
	type snapResult struct {
		snap *model.ResumeSnapshot
		err  error
	}
	snapCh := make(chan snapResult, 1)
	go func() {
		snap, err := c.client.GetResumeSnapshot(ctx, c.quizID)
		snapCh <- snapResult{snap, err}
	}()

	quiz, err := c.client.GetQuiz(ctx, c.quizID)
	if err != nil {
		return "", err
	}

	sr := <-snapCh
	if sr.err != nil {
		// A failed snapshot probe is not fatal; the attempt starts fresh.
		logger.Log.Warn("Resume snapshot check failed", zap.String("quizId", c.quizID), zap.Error(sr.err))
		sr.snap = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", util.ErrSessionClosed
	}

	if quiz.Status == model.QuizStatusCompleted {
		c.phase = model.PhaseTerminal
		return c.phase, util.ErrQuizCompleted
	}
	if len(quiz.Questions) == 0 {
		return "", util.ErrQuizNoQuestions
	}

	c.quiz = quiz
	c.store = NewStore(quiz.Questions)

	if sr.snap != nil {
		c.snapshot = sr.snap
		c.phase = model.PhaseResumePrompt
		return c.phase, nil
	}

	c.seedFreshLocked()
	return c.phase, nil
}

// seedFreshLocked starts a clean attempt: empty answers, full timer.
func (c *Controller) seedFreshLocked() {
	c.attemptID = ""
	c.snapshot = nil
	if c.quiz.Timed() {
		c.initialMs = c.quiz.Timer
		c.timer = NewTimer(c.expire)
		c.timer.Start(c.quiz.Timer)
	}
	c.phase = model.PhaseInProgress
}

// Resume accepts the paused attempt: saved answers are applied and the
// countdown continues from whatever the snapshot left unspent.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return util.ErrSessionClosed
	}
	if c.phase != model.PhaseResumePrompt || c.snapshot == nil {
		return util.ErrBadPhase
	}

	c.store.ApplySaved(c.snapshot.SavedAnswers())
	c.attemptID = c.snapshot.AttemptID

	if c.quiz.Timed() {
		remaining := c.quiz.Timer - util.SecondsToMs(c.snapshot.ElapsedTime)
		if remaining < 0 {
			remaining = 0
		}
		c.initialMs = remaining
		c.timer = NewTimer(c.expire)
		c.timer.Start(remaining)
	}
	c.phase = model.PhaseInProgress
	return nil
}

// StartFresh discards the paused attempt and seeds a clean one.
func (c *Controller) StartFresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return util.ErrSessionClosed
	}
	if c.phase != model.PhaseResumePrompt {
		return util.ErrBadPhase
	}
	c.seedFreshLocked()
	return nil
}

func (c *Controller) SelectAnswer(questionID, optionText string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return util.ErrSessionClosed
	}
	if c.phase != model.PhaseInProgress {
		return util.ErrBadPhase
	}
	c.store.SelectAnswer(questionID, optionText)
	return nil
}

func (c *Controller) GoTo(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return util.ErrSessionClosed
	}
	if c.phase != model.PhaseInProgress {
		return util.ErrBadPhase
	}
	c.store.GoTo(index)
	return nil
}

// elapsedMsLocked is initial minus remaining for a timed attempt, 0 otherwise.
func (c *Controller) elapsedMsLocked() int64 {
	if c.timer == nil {
		return 0
	}
	return c.initialMs - c.timer.Remaining()
}

// Pause suspends the clock immediately, before the network call resolves,
// so request latency never costs the user time; the server snapshot is for
// durability of the answers only. On failure the clock is resumed and the
// pause is reported as not having taken effect.
func (c *Controller) Pause(ctx context.Context) (*model.PauseReceipt, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, util.ErrSessionClosed
	}
	if c.phase != model.PhaseInProgress {
		c.mu.Unlock()
		return nil, util.ErrBadPhase
	}
	c.phase = model.PhasePausing
	if c.timer != nil {
		c.timer.Pause()
	}
	req := api.PauseRequest{
		Answers:     c.store.Answers(),
		ElapsedTime: util.MsToSeconds(c.elapsedMsLocked()),
	}
	c.mu.Unlock()

	receipt, err := c.client.PauseAttempt(ctx, c.quizID, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, util.ErrSessionClosed
	}
	c.phase = model.PhaseInProgress
	if err != nil {
		// Pause did not take effect; the clock picks back up.
		if c.timer != nil {
			c.timer.Resume()
		}
		return nil, err
	}
	c.attemptID = receipt.AttemptID
	return receipt, nil
}

// Submit completes the attempt. A submit already in flight latches the
// phase at SUBMITTING and any further trigger, including timer expiry, is
// ignored until it resolves.
func (c *Controller) Submit(ctx context.Context) error {
	return c.submit(ctx, false)
}

func (c *Controller) submit(ctx context.Context, fromExpiry bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return util.ErrSessionClosed
	}
	if c.phase == model.PhaseSubmitting || c.phase == model.PhaseTerminal {
		c.mu.Unlock()
		return nil
	}
	if c.phase != model.PhaseInProgress {
		c.mu.Unlock()
		return util.ErrBadPhase
	}
	c.phase = model.PhaseSubmitting
	if c.timer != nil {
		c.timer.Pause()
	}
	req := api.SubmitRequest{
		UserID:    c.auth.UserID(),
		Answers:   c.store.Answers(),
		TimeSpent: util.MsToSeconds(c.elapsedMsLocked()),
		AttemptID: c.attemptID,
	}
	c.mu.Unlock()

	err := c.client.SubmitAttempt(ctx, c.quizID, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return util.ErrSessionClosed
	}
	if err != nil {
		c.phase = model.PhaseInProgress
		// After an expiry-triggered submit the clock stays at zero rather
		// than immediately re-firing; recovery is a manual resubmit.
		if !fromExpiry && c.timer != nil && c.timer.Remaining() > 0 {
			c.timer.Resume()
		}
		return err
	}

	c.phase = model.PhaseTerminal
	if c.timer != nil {
		c.timer.Dispose()
	}
	return nil
}

// expire runs on the timer goroutine when the countdown hits zero.
func (c *Controller) expire() {
	c.mu.Lock()
	if c.closed || c.phase != model.PhaseInProgress {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	logger.Log.Info("Time expired, auto-submitting attempt", zap.String("quizId", c.quizID))
	err := c.submit(context.Background(), true)
	if c.OnAutoSubmit != nil {
		c.OnAutoSubmit(err)
	}
}

// Close tears the session down. Late network responses and timer callbacks
// observe the closed flag and are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Dispose()
	}
}
