package gateway

import (
	"context"
	"fmt"
	"strings"
)

// EmptyTipsText is returned when the model answers with nothing.
const EmptyTipsText = "Keep practicing and focus on weak areas!"

type TipGateway struct {
	llm   *LLMClient
	model string
}

func NewTipGateway(llm *LLMClient, model string) *TipGateway {
	return &TipGateway{llm: llm, model: model}
}

// GenerateTips asks for short improvement advice. Failures wrap ErrTips; the
// caller decides the fallback.
func (g *TipGateway) GenerateTips(ctx context.Context, correct, total int, subjectSummary string) (string, error) {
	prompt := fmt.Sprintf(`Based on a government job mock test result:
Score: %d/%d
Subject performance: %s

Provide 3-4 bullet points of high-impact improvement tips for this student. Keep it concise and motivating.`,
		correct, total, subjectSummary)

	content, err := g.llm.Complete(ctx, ChatCompletionRequest{
		Model: g.model,
		Messages: []ChatCompletionMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTips, err)
	}
	if text := strings.TrimSpace(content); text != "" {
		return text, nil
	}
	return EmptyTipsText, nil
}
