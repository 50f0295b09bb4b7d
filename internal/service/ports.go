package service

import (
	"context"
	"errors"

	"mocktest-service/internal/models"
)

var ErrAttemptNotFound = errors.New("attempt not found")

const (
	GenerationFailedNotice = "Failed to generate test. Please try again."
	FallbackTips           = "Keep studying hard! Review your weak areas consistently."
)

type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, examName, subjectName string) ([]models.Question, error)
}

type TipGenerator interface {
	GenerateTips(ctx context.Context, correct, total int, subjectSummary string) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }
