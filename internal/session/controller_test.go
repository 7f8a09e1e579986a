package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"learnai_quiz_client/internal/api"
	"learnai_quiz_client/internal/config"
	"learnai_quiz_client/internal/model"
	"learnai_quiz_client/internal/util"
	"learnai_quiz_client/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type fakeProvider struct {
	token        string
	userID       string
	unauthorized int32
}

func (f *fakeProvider) AuthToken() string { return f.token }
func (f *fakeProvider) UserID() string    { return f.userID }
func (f *fakeProvider) OnUnauthorized()   { atomic.AddInt32(&f.unauthorized, 1) }

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestController(t *testing.T, handler http.Handler) (*Controller, *fakeProvider) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	provider := &fakeProvider{token: "token-1", userID: "user-1"}
	client := api.NewClient(config.APIConfig{
		BaseURL:        srv.URL,
		TimeoutSeconds: 5,
		RequestsPerSec: 1000,
	}, provider)

	ctrl := NewController(client, provider, "quiz-1")
	t.Cleanup(ctrl.Close)
	return ctrl, provider
}

func twoQuestionQuiz(timerMs int64) model.Quiz {
	return model.Quiz{
		ID:         "quiz-1",
		Title:      "Go basics",
		Difficulty: "EASY",
		Type:       "MULTIPLE_CHOICE",
		Timer:      timerMs,
		Status:     model.QuizStatusActive,
		Questions: []model.Question{
			{ID: "q1", Text: "first", Options: []string{"A", "B"}},
			{ID: "q2", Text: "second", Options: []string{"C", "D"}},
		},
	}
}

func timerRunning(ctrl *Controller) bool {
	ctrl.mu.Lock()
	timer := ctrl.timer
	ctrl.mu.Unlock()
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.running
}

func quizMux(quiz model.Quiz) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/quiz/quiz-1", func(w http.ResponseWriter, r *http.Request) {
		// Envelope-wrapped, the way the backend usually answers.
		writeJSON(w, map[string]interface{}{"quiz": quiz})
	})
	return mux
}

func TestLoadFreshAttempt(t *testing.T) {
	ctrl, _ := newTestController(t, quizMux(twoQuestionQuiz(60_000)))

	phase, err := ctrl.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.PhaseInProgress, phase)
	require.Equal(t, "", ctrl.AttemptID())
	require.EqualValues(t, 60_000, ctrl.RemainingMs())
	require.Equal(t, 0, ctrl.Store().AnsweredCount())
}

func TestLoadUntimedAttempt(t *testing.T) {
	ctrl, _ := newTestController(t, quizMux(twoQuestionQuiz(0)))

	phase, err := ctrl.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.PhaseInProgress, phase)
	require.EqualValues(t, -1, ctrl.RemainingMs())
}

func TestLoadCompletedQuizShortCircuits(t *testing.T) {
	quiz := twoQuestionQuiz(0)
	quiz.Status = model.QuizStatusCompleted
	ctrl, _ := newTestController(t, quizMux(quiz))

	_, err := ctrl.Load(context.Background())
	require.ErrorIs(t, err, util.ErrQuizCompleted)
	require.Equal(t, model.PhaseTerminal, ctrl.Phase())
}

func TestLoadQuizWithoutQuestions(t *testing.T) {
	quiz := twoQuestionQuiz(0)
	quiz.Questions = nil
	ctrl, _ := newTestController(t, quizMux(quiz))

	_, err := ctrl.Load(context.Background())
	require.ErrorIs(t, err, util.ErrQuizNoQuestions)
}

func TestLoadQuizNotFound(t *testing.T) {
	ctrl, _ := newTestController(t, http.NewServeMux())

	_, err := ctrl.Load(context.Background())
	require.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestLoadUnauthorizedFiresProvider(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	ctrl, provider := newTestController(t, mux)

	_, err := ctrl.Load(context.Background())
	require.ErrorIs(t, err, util.ErrUnauthorized)
	require.GreaterOrEqual(t, atomic.LoadInt32(&provider.unauthorized), int32(1))
}

func snapshotMux(quiz model.Quiz, snap model.ResumeSnapshot) *http.ServeMux {
	mux := quizMux(quiz)
	mux.HandleFunc("/api/v1/quiz/quiz-1/resume", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, snap)
	})
	return mux
}

func TestResumeReconciliation(t *testing.T) {
	snap := model.ResumeSnapshot{
		AttemptID:   "att-1",
		Status:      model.QuizStatusPaused,
		ElapsedTime: 40, // seconds
		Questions: []model.ResumeQuestion{
			{Question: model.Question{ID: "q1"}, SavedAnswer: "A"},
			{Question: model.Question{ID: "q2"}},
		},
	}
	ctrl, _ := newTestController(t, snapshotMux(twoQuestionQuiz(60_000), snap))

	phase, err := ctrl.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.PhaseResumePrompt, phase)

	require.NoError(t, ctrl.Resume())
	require.Equal(t, model.PhaseInProgress, ctrl.Phase())
	require.Equal(t, "att-1", ctrl.AttemptID())
	require.EqualValues(t, 20_000, ctrl.RemainingMs())
	require.Equal(t, "A", ctrl.Store().AnswerFor("q1"))
}

func TestStartFreshDiscardsSnapshot(t *testing.T) {
	snap := model.ResumeSnapshot{
		AttemptID:   "att-1",
		ElapsedTime: 40,
		Questions: []model.ResumeQuestion{
			{Question: model.Question{ID: "q1"}, SavedAnswer: "A"},
		},
	}
	ctrl, _ := newTestController(t, snapshotMux(twoQuestionQuiz(60_000), snap))

	_, err := ctrl.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, ctrl.StartFresh())
	require.Equal(t, model.PhaseInProgress, ctrl.Phase())
	require.Equal(t, "", ctrl.AttemptID())
	require.Equal(t, 0, ctrl.Store().AnsweredCount())
	require.EqualValues(t, 60_000, ctrl.RemainingMs())
}

func TestSubmitEndToEnd(t *testing.T) {
	var submits int32
	var body api.SubmitRequest

	mux := quizMux(twoQuestionQuiz(0))
	mux.HandleFunc("/api/v1/quiz/quiz-1/submit", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&submits, 1)
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, map[string]string{"status": "ok"})
	})
	ctrl, _ := newTestController(t, mux)

	_, err := ctrl.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, ctrl.SelectAnswer("q1", "A"))
	require.NoError(t, ctrl.GoTo(1))
	require.NoError(t, ctrl.SelectAnswer("q2", "D"))
	require.NoError(t, ctrl.Submit(context.Background()))

	require.EqualValues(t, 1, atomic.LoadInt32(&submits))
	require.Equal(t, model.PhaseTerminal, ctrl.Phase())
	require.Equal(t, "user-1", body.UserID)
	require.EqualValues(t, 0, body.TimeSpent)
	require.Equal(t, "", body.AttemptID)
	require.Equal(t, []model.AttemptAnswer{
		{QuestionID: "q1", UserAnswer: "A"},
		{QuestionID: "q2", UserAnswer: "D"},
	}, body.Answers)
}

func TestSubmitSingleFlight(t *testing.T) {
	var submits int32

	mux := quizMux(twoQuestionQuiz(0))
	mux.HandleFunc("/api/v1/quiz/quiz-1/submit", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&submits, 1)
		time.Sleep(150 * time.Millisecond)
		writeJSON(w, map[string]string{"status": "ok"})
	})
	ctrl, _ := newTestController(t, mux)

	_, err := ctrl.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, ctrl.SelectAnswer("q1", "A"))

	first := make(chan error, 1)
	go func() { first <- ctrl.Submit(context.Background()) }()

	// The racing trigger (a manual click against timer expiry) must be
	// swallowed by the in-flight latch.
	require.Eventually(t, func() bool {
		return ctrl.Phase() == model.PhaseSubmitting
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, ctrl.Submit(context.Background()))

	require.NoError(t, <-first)
	require.EqualValues(t, 1, atomic.LoadInt32(&submits))
	require.Equal(t, model.PhaseTerminal, ctrl.Phase())
}

func TestSubmitFailureRevertsAndRetains(t *testing.T) {
	var fail int32 = 1

	mux := quizMux(twoQuestionQuiz(0))
	mux.HandleFunc("/api/v1/quiz/quiz-1/submit", func(w http.ResponseWriter, r *http.Request) {
		if atomic.SwapInt32(&fail, 0) == 1 {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
	})
	ctrl, _ := newTestController(t, mux)

	_, err := ctrl.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, ctrl.SelectAnswer("q1", "A"))

	require.Error(t, ctrl.Submit(context.Background()))
	require.Equal(t, model.PhaseInProgress, ctrl.Phase())
	require.Equal(t, "A", ctrl.Store().AnswerFor("q1"), "answers survive a failed submit")

	require.NoError(t, ctrl.Submit(context.Background()))
	require.Equal(t, model.PhaseTerminal, ctrl.Phase())
}

func TestSubmitFailureWithTimeLeftResumesClock(t *testing.T) {
	mux := quizMux(twoQuestionQuiz(60_000))
	mux.HandleFunc("/api/v1/quiz/quiz-1/submit", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})
	ctrl, _ := newTestController(t, mux)

	_, err := ctrl.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, ctrl.SelectAnswer("q1", "A"))

	require.Error(t, ctrl.Submit(context.Background()))
	require.Equal(t, model.PhaseInProgress, ctrl.Phase())
	require.True(t, timerRunning(ctrl), "clock resumes after a failed manual submit with time left")
}

func TestExpirySubmitFailureLeavesClockStopped(t *testing.T) {
	mux := quizMux(twoQuestionQuiz(1000))
	mux.HandleFunc("/api/v1/quiz/quiz-1/submit", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})
	ctrl, _ := newTestController(t, mux)

	outcome := make(chan error, 1)
	ctrl.OnAutoSubmit = func(err error) { outcome <- err }

	_, err := ctrl.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, ctrl.SelectAnswer("q1", "A"))

	select {
	case err := <-outcome:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("expiry never triggered a submit")
	}

	// Recovery is a manual resubmit; the clock must not restart at zero
	// and immediately re-fire.
	require.Equal(t, model.PhaseInProgress, ctrl.Phase())
	require.False(t, timerRunning(ctrl), "clock stays stopped after an expiry-triggered submit failure")
	require.EqualValues(t, 0, ctrl.RemainingMs())
}

func TestPauseSuccessLeavesClockStopped(t *testing.T) {
	mux := quizMux(twoQuestionQuiz(60_000))
	mux.HandleFunc("/api/v1/quiz/quiz-1/pause", func(w http.ResponseWriter, r *http.Request) {
		var req api.PauseRequest
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, model.PauseReceipt{
			AttemptID:         "att-9",
			Status:            model.QuizStatusPaused,
			ElapsedTime:       req.ElapsedTime,
			AnsweredQuestions: len(req.Answers),
			TotalQuestions:    2,
		})
	})
	ctrl, _ := newTestController(t, mux)

	_, err := ctrl.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, ctrl.SelectAnswer("q1", "A"))

	receipt, err := ctrl.Pause(context.Background())
	require.NoError(t, err)
	require.Equal(t, "att-9", receipt.AttemptID)
	require.Equal(t, 1, receipt.AnsweredQuestions)
	require.Equal(t, model.PhaseInProgress, ctrl.Phase())
	require.Equal(t, "att-9", ctrl.AttemptID())

	require.False(t, timerRunning(ctrl), "clock stays paused after a successful pause")
}

func TestPauseFailureResumesClock(t *testing.T) {
	mux := quizMux(twoQuestionQuiz(60_000))
	mux.HandleFunc("/api/v1/quiz/quiz-1/pause", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
	})
	ctrl, _ := newTestController(t, mux)

	_, err := ctrl.Load(context.Background())
	require.NoError(t, err)

	_, err = ctrl.Pause(context.Background())
	require.Error(t, err)
	require.Equal(t, model.PhaseInProgress, ctrl.Phase())

	require.True(t, timerRunning(ctrl), "clock resumes when the pause did not take effect")
}

func TestExpiryAutoSubmits(t *testing.T) {
	var submits int32
	var body api.SubmitRequest

	mux := quizMux(twoQuestionQuiz(1000))
	mux.HandleFunc("/api/v1/quiz/quiz-1/submit", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&submits, 1)
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, map[string]string{"status": "ok"})
	})
	ctrl, _ := newTestController(t, mux)

	outcome := make(chan error, 1)
	ctrl.OnAutoSubmit = func(err error) { outcome <- err }

	_, err := ctrl.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, ctrl.SelectAnswer("q1", "A"))

	select {
	case err := <-outcome:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("expiry never auto-submitted")
	}

	require.EqualValues(t, 1, atomic.LoadInt32(&submits))
	require.Equal(t, model.PhaseTerminal, ctrl.Phase())
	require.EqualValues(t, 1, body.TimeSpent)
}

func TestCloseDiscardsLateWork(t *testing.T) {
	ctrl, _ := newTestController(t, quizMux(twoQuestionQuiz(0)))

	_, err := ctrl.Load(context.Background())
	require.NoError(t, err)

	ctrl.Close()
	require.ErrorIs(t, ctrl.SelectAnswer("q1", "A"), util.ErrSessionClosed)
	require.ErrorIs(t, ctrl.Submit(context.Background()), util.ErrSessionClosed)
}
