package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mocktest-service/internal/models"
)

const questionSystemPrompt = "You are an expert paper setter for Indian government competitive examinations. " +
	"You write accurate, unambiguous multiple-choice questions and reply only with JSON."

// QuestionGateway generates a full test for an exam and subject.
type QuestionGateway struct {
	llm   *LLMClient
	model string
	count int
}

func NewQuestionGateway(llm *LLMClient, model string, count int) *QuestionGateway {
	if count <= 0 {
		count = 40
	}
	return &QuestionGateway{llm: llm, model: model, count: count}
}

// GenerateQuestions returns validated questions numbered uniquely within the
// set. Every failure is wrapped in ErrGeneration; nothing is retried here.
func (g *QuestionGateway) GenerateQuestions(ctx context.Context, examName, subjectName string) ([]models.Question, error) {
	temperature := 0.7
	content, err := g.llm.Complete(ctx, ChatCompletionRequest{
		Model: g.model,
		Messages: []ChatCompletionMessage{
			{Role: "system", Content: questionSystemPrompt},
			{Role: "user", Content: questionPrompt(examName, subjectName, g.count)},
		},
		Temperature: &temperature,
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   "mock_test",
				Schema: questionSchema(),
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	questions, err := ParseQuestions(content, subjectName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return questions, nil
}

// difficultySplit spreads count as 25% easy, 50% medium, 25% hard.
func difficultySplit(count int) (easy, medium, hard int) {
	easy = count / 4
	hard = count / 4
	medium = count - easy - hard
	return
}

func questionPrompt(examName, subjectName string, count int) string {
	easy, medium, hard := difficultySplit(count)
	return fmt.Sprintf(`Generate exactly %d high-quality multiple-choice questions for the %s examination, specifically focusing on the subject: %s.

Requirements:
1. Difficulty distribution: %d Easy, %d Medium, %d Hard.
2. Each question must have exactly 4 options.
3. Include a clear explanation for the correct answer.
4. Questions must follow the latest patterns of competitive government exams in India.
5. Language: English.

Response format: a JSON object {"questions": [...]} where each item has id, text, options, correctAnswer (index 0-3), explanation, difficulty (Easy, Medium or Hard) and subject.`,
		count, examName, subjectName, easy, medium, hard)
}

func questionSchema() map[string]any {
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":            map[string]any{"type": "integer"},
			"text":          map[string]any{"type": "string", "description": "The question text"},
			"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Array of exactly 4 strings"},
			"correctAnswer": map[string]any{"type": "integer", "description": "Index of the correct option (0-3)"},
			"explanation":   map[string]any{"type": "string", "description": "Detailed reasoning"},
			"difficulty":    map[string]any{"type": "string", "enum": []string{"Easy", "Medium", "Hard"}},
			"subject":       map[string]any{"type": "string"},
		},
		"required":             []string{"id", "text", "options", "correctAnswer", "explanation", "difficulty", "subject"},
		"additionalProperties": false,
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{"type": "array", "items": item},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	}
}

type rawQuestion struct {
	ID            int      `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
	Subject       string   `json:"subject"`
}

// ParseQuestions decodes a model reply. It accepts {"questions": [...]} or a
// bare array, optionally inside a fenced code block.
func ParseQuestions(content, fallbackSubject string) ([]models.Question, error) {
	payload := stripCodeFence(content)
	if payload == "" {
		return nil, fmt.Errorf("empty response")
	}

	var raw []rawQuestion
	if strings.HasPrefix(payload, "[") {
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return nil, fmt.Errorf("decode question array: %w", err)
		}
	} else {
		var wrapped struct {
			Questions []rawQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(payload), &wrapped); err != nil {
			return nil, fmt.Errorf("decode question object: %w", err)
		}
		raw = wrapped.Questions
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("response contained no questions")
	}

	questions := make([]models.Question, 0, len(raw))
	for i, r := range raw {
		if r.CorrectAnswer == nil {
			return nil, fmt.Errorf("question %d: missing correctAnswer", i+1)
		}
		subject := strings.TrimSpace(r.Subject)
		if subject == "" {
			subject = fallbackSubject
		}
		q := models.Question{
			ID:            r.ID,
			Text:          strings.TrimSpace(r.Text),
			Options:       r.Options,
			CorrectAnswer: *r.CorrectAnswer,
			Explanation:   strings.TrimSpace(r.Explanation),
			Difficulty:    models.ParseDifficulty(r.Difficulty),
			Subject:       subject,
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}

	renumber(questions)
	return questions, nil
}

// renumber assigns 1..N when ids are missing or repeated.
func renumber(questions []models.Question) {
	seen := make(map[int]bool, len(questions))
	unique := true
	for _, q := range questions {
		if q.ID <= 0 || seen[q.ID] {
			unique = false
			break
		}
		seen[q.ID] = true
	}
	if unique {
		return
	}
	for i := range questions {
		questions[i].ID = i + 1
	}
}

func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
