// Package service drives one attempt from exam selection to results.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mocktest-service/internal/catalog"
	"mocktest-service/internal/event"
	"mocktest-service/internal/exam"
	"mocktest-service/internal/logger"
	"mocktest-service/internal/metrics"
	"mocktest-service/internal/models"
	"mocktest-service/internal/scoring"
)

type Screen string

const (
	ScreenExamSelection    Screen = "exam_selection"
	ScreenSubjectSelection Screen = "subject_selection"
	ScreenGenerating       Screen = "generating"
	ScreenTesting          Screen = "testing"
	ScreenAnalyzing        Screen = "analyzing"
	ScreenResults          Screen = "results"
)

// Report is what the results screen shows.
type Report struct {
	Result           models.Result       `json:"result"`
	CompletionType   exam.CompletionType `json:"completion_type"`
	TimeSpentSeconds int                 `json:"time_spent_seconds"`
	TimeSpent        string              `json:"time_spent"`
	Exam             models.ExamType     `json:"exam"`
	Subject          models.Subject      `json:"subject"`
}

type Deps struct {
	Questions QuestionGenerator
	Tips      TipGenerator
	Events    EventPublisher
	Log       *logger.Logger

	DurationSeconds int
	TickInterval    time.Duration

	// Context bounds background work; cancelling it stops every attempt.
	Context context.Context
	Now     func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = noopPublisher{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.DurationSeconds <= 0 {
		d.DurationSeconds = exam.DefaultDurationSeconds
	}
	if d.TickInterval <= 0 {
		d.TickInterval = time.Second
	}
	if d.Context == nil {
		d.Context = context.Background()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Orchestrator owns the screens of one attempt. All state changes happen
// under mu; the countdown and the generation goroutines go through it too.
type Orchestrator struct {
	id   string
	deps Deps
	log  *logger.Logger

	mu         sync.Mutex
	screen     Screen
	exam       *models.ExamType
	subject    *models.Subject
	notice     string
	session    *exam.Session
	report     *Report
	generation uint64
	cancel     context.CancelFunc
	stopClock  func()
	lastActive time.Time
	closed     bool
}

func NewOrchestrator(id string, deps Deps) *Orchestrator {
	deps = deps.withDefaults()
	return &Orchestrator{
		id:         id,
		deps:       deps,
		log:        deps.Log.With("attempt_id", id),
		screen:     ScreenExamSelection,
		lastActive: deps.Now(),
	}
}

func (o *Orchestrator) ID() string { return o.id }

func (o *Orchestrator) Screen() Screen {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.screen
}

// IdleSince reports the last time a caller touched the attempt.
func (o *Orchestrator) IdleSince() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastActive
}

func (o *Orchestrator) touch() { o.lastActive = o.deps.Now() }

func (o *Orchestrator) requireScreen(op string, allowed ...Screen) error {
	if o.closed {
		return fmt.Errorf("%w: attempt %s", ErrAttemptNotFound, o.id)
	}
	for _, s := range allowed {
		if o.screen == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not allowed on %s", exam.ErrInvalidState, op, o.screen)
}

// SelectExam picks the exam and moves to subject selection. Changing the
// exam from subject selection is allowed.
func (o *Orchestrator) SelectExam(examID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireScreen("select exam", ScreenExamSelection, ScreenSubjectSelection); err != nil {
		return err
	}
	e, ok := catalog.FindExam(examID)
	if !ok {
		return fmt.Errorf("%w: unknown exam %q", exam.ErrInvalidInput, examID)
	}
	o.touch()
	o.exam = &e
	o.notice = ""
	o.screen = ScreenSubjectSelection
	return nil
}

// Back returns from subject selection to exam selection.
func (o *Orchestrator) Back() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireScreen("back", ScreenSubjectSelection); err != nil {
		return err
	}
	o.touch()
	o.exam = nil
	o.notice = ""
	o.screen = ScreenExamSelection
	return nil
}

// SelectSubject starts question generation in the background and returns
// immediately. ctx only carries request values; the work is bound to the
// attempt and survives the request.
func (o *Orchestrator) SelectSubject(ctx context.Context, subjectID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireScreen("select subject", ScreenSubjectSelection); err != nil {
		return err
	}
	s, ok := catalog.FindSubject(subjectID)
	if !ok {
		return fmt.Errorf("%w: unknown subject %q", exam.ErrInvalidInput, subjectID)
	}
	if o.deps.Questions == nil {
		return fmt.Errorf("%w: no question generator configured", exam.ErrInvalidState)
	}

	o.touch()
	o.subject = &s
	o.notice = ""
	o.screen = ScreenGenerating
	o.generation++

	genCtx, cancel := context.WithCancel(o.deps.Context)
	o.cancel = cancel
	go o.generate(genCtx, o.generation, o.exam.Name, s.Name)

	o.log.Info("generating test", "exam", o.exam.Name, "subject", s.Name)
	return nil
}

func (o *Orchestrator) generate(ctx context.Context, gen uint64, examName, subjectName string) {
	start := time.Now()
	questions, err := o.deps.Questions.GenerateQuestions(ctx, examName, subjectName)
	metrics.ObserveGeneration(metrics.GatewayQuestions, time.Since(start).Seconds())

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation || o.screen != ScreenGenerating {
		o.log.Debug("dropping stale generation result", "generation", gen)
		return
	}
	o.releaseCancel()

	var session *exam.Session
	if err == nil {
		session, err = exam.StartWithDuration(questions, o.deps.DurationSeconds)
	}
	if err != nil {
		metrics.GenerationFailed(metrics.GatewayQuestions)
		o.log.Error("test generation failed", "error", err)
		o.notice = GenerationFailedNotice
		o.screen = ScreenSubjectSelection
		o.emit(event.GenerationFailed, o.payload(map[string]any{"error": err.Error()}))
		return
	}

	o.session = session
	o.screen = ScreenTesting
	o.stopClock = exam.StartCountdown(o.deps.Context, o.deps.TickInterval, func() { o.onTick(gen) })
	metrics.SessionStarted()
	o.emit(event.SessionStarted, o.payload(map[string]any{
		"questions":        session.Len(),
		"duration_seconds": session.Duration(),
	}))
	o.log.Info("test started", "questions", session.Len())
}

func (o *Orchestrator) onTick(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation || o.screen != ScreenTesting || o.session == nil {
		return
	}
	expired, err := o.session.Tick()
	if err != nil {
		return
	}
	if expired {
		o.log.Info("time expired, submitting automatically")
		o.beginAnalysis()
	}
}

// beginAnalysis runs with mu held once the session reached finished.
func (o *Orchestrator) beginAnalysis() {
	o.stopCountdown()
	answers, err := o.session.Finish()
	if err != nil {
		o.log.Error("finish on unfinished session", "error", err)
		return
	}

	completion := o.session.Completion()
	metrics.SessionFinished(string(completion))
	eventType := event.SessionSubmitted
	if completion == exam.CompletionTimeout {
		eventType = event.SessionTimedOut
	}
	progress := o.session.Progress()
	o.emit(eventType, o.payload(map[string]any{
		"answered":           progress.Answered,
		"total":              progress.Total,
		"time_spent_seconds": o.session.ElapsedSeconds(),
	}))

	o.screen = ScreenAnalyzing
	ctx, cancel := context.WithCancel(o.deps.Context)
	o.cancel = cancel
	go o.analyze(ctx, o.generation, o.session.Questions(), answers)
}

func (o *Orchestrator) analyze(ctx context.Context, gen uint64, questions []models.Question, answers []models.Answer) {
	tips := FallbackTips
	if o.deps.Tips != nil {
		start := time.Now()
		text, err := o.deps.Tips.GenerateTips(ctx, scoring.CorrectCount(answers), len(questions), scoring.SubjectSummary(questions, answers))
		metrics.ObserveGeneration(metrics.GatewayTips, time.Since(start).Seconds())
		if err != nil {
			metrics.GenerationFailed(metrics.GatewayTips)
			o.log.Warn("tip generation failed, using fallback", "error", err)
		} else {
			tips = text
		}
	}
	result := scoring.ComputeResult(questions, answers, tips)

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation || o.screen != ScreenAnalyzing {
		return
	}
	o.releaseCancel()

	spent := o.session.ElapsedSeconds()
	o.report = &Report{
		Result:           result,
		CompletionType:   o.session.Completion(),
		TimeSpentSeconds: spent,
		TimeSpent:        exam.FormatClock(spent),
		Exam:             *o.exam,
		Subject:          *o.subject,
	}
	o.screen = ScreenResults
	o.emit(event.ResultComputed, o.payload(map[string]any{
		"score":      result.Score,
		"total":      result.TotalQuestions,
		"accuracy":   result.Accuracy,
		"completion": o.session.Completion(),
	}))
}

// withSession applies a testing-screen action to the live session.
func (o *Orchestrator) withSession(op string, fn func(s *exam.Session) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireScreen(op, ScreenTesting); err != nil {
		return err
	}
	o.touch()
	if err := fn(o.session); err != nil {
		return err
	}
	if o.session.State() == exam.StateFinished {
		o.beginAnalysis()
	}
	return nil
}

func (o *Orchestrator) SelectOption(option int) error {
	return o.withSession("select option", func(s *exam.Session) error { return s.SelectOption(option) })
}

func (o *Orchestrator) ClearAnswer() error {
	return o.withSession("clear answer", func(s *exam.Session) error { return s.ClearAnswer() })
}

func (o *Orchestrator) Navigate(index int) error {
	return o.withSession("navigate", func(s *exam.Session) error { return s.Navigate(index) })
}

// Next advances the cursor; on the last question it asks for submission.
func (o *Orchestrator) Next() error {
	return o.withSession("next", func(s *exam.Session) error {
		if s.IsLast() {
			return s.RequestSubmit()
		}
		return s.Next()
	})
}

func (o *Orchestrator) Previous() error {
	return o.withSession("previous", func(s *exam.Session) error { return s.Previous() })
}

func (o *Orchestrator) ToggleBookmark() (bool, error) {
	var marked bool
	err := o.withSession("bookmark", func(s *exam.Session) error {
		var err error
		marked, err = s.ToggleBookmark()
		return err
	})
	return marked, err
}

func (o *Orchestrator) RequestSubmit() error {
	return o.withSession("submit", func(s *exam.Session) error { return s.RequestSubmit() })
}

// Confirm answers the submit prompt. Confirming finishes the test and starts analysis.
func (o *Orchestrator) Confirm(ok bool) error {
	return o.withSession("confirm", func(s *exam.Session) error { return s.Confirm(ok) })
}

// Restart discards everything and returns to exam selection. Late results of
// cancelled work are dropped by the generation check.
func (o *Orchestrator) Restart() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return fmt.Errorf("%w: attempt %s", ErrAttemptNotFound, o.id)
	}
	o.touch()
	from := o.screen
	o.reset()
	o.emit(event.AttemptRestarted, map[string]any{"attempt_id": o.id, "from": from})
	return nil
}

// Close stops background work for good. Further calls fail with ErrAttemptNotFound.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reset()
	o.closed = true
}

func (o *Orchestrator) reset() {
	o.generation++
	o.releaseCancel()
	o.stopCountdown()
	o.screen = ScreenExamSelection
	o.exam = nil
	o.subject = nil
	o.notice = ""
	o.session = nil
	o.report = nil
}

func (o *Orchestrator) releaseCancel() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

func (o *Orchestrator) stopCountdown() {
	if o.stopClock != nil {
		o.stopClock()
		o.stopClock = nil
	}
}

func (o *Orchestrator) payload(extra map[string]any) map[string]any {
	p := map[string]any{"attempt_id": o.id}
	if o.exam != nil {
		p["exam_id"] = o.exam.ID
	}
	if o.subject != nil {
		p["subject_id"] = o.subject.ID
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

// emit publishes without holding up the caller; failures are only logged.
func (o *Orchestrator) emit(eventType string, payload map[string]any) {
	go func() {
		if err := o.deps.Events.Publish(o.deps.Context, eventType, payload); err != nil {
			o.log.Warn("failed to publish event", "event", eventType, "error", err)
		}
	}()
}
