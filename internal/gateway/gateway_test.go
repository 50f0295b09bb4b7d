package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mocktest-service/internal/models"
)

// fakeLLM serves /chat/completions with a canned reply and records the last request.
func fakeLLM(t *testing.T, status int, content string) (*httptest.Server, *ChatCompletionRequest) {
	t.Helper()
	var last ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Unexpected authorization header %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&last)
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"nope"}`))
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

const twoQuestions = `{"questions":[
 {"id":1,"text":"Who wrote the Constitution?","options":["A","B","C","D"],"correctAnswer":2,"explanation":"C","difficulty":"Easy","subject":"Polity"},
 {"id":2,"text":"2+2?","options":["3","4","5","6"],"correctAnswer":1,"explanation":"4","difficulty":"hard","subject":""}
]}`

func TestGenerateQuestions(t *testing.T) {
	srv, last := fakeLLM(t, http.StatusOK, twoQuestions)
	gw := NewQuestionGateway(NewLLMClient(srv.URL, "test-key", time.Second, nil), "pro-model", 40)

	qs, err := gw.GenerateQuestions(context.Background(), "SSC CGL/CHSL", "General Knowledge")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(qs))
	}
	if qs[1].Difficulty != models.DifficultyHard {
		t.Errorf("Expected Hard, got %s", qs[1].Difficulty)
	}
	if qs[1].Subject != "General Knowledge" {
		t.Errorf("Empty subject must default to the requested one, got %q", qs[1].Subject)
	}
	if last.Model != "pro-model" {
		t.Errorf("Expected pro-model, got %s", last.Model)
	}
	if last.ResponseFormat == nil || last.ResponseFormat.Type != "json_schema" {
		t.Error("Expected a json_schema response format")
	}
	prompt := last.Messages[len(last.Messages)-1].Content
	for _, want := range []string{"exactly 40", "SSC CGL/CHSL", "General Knowledge", "10 Easy, 20 Medium, 10 Hard"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
}

func TestGenerateQuestionsFailures(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		content string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"not json", http.StatusOK, "Sorry, I cannot help with that."},
		{"no questions", http.StatusOK, `{"questions":[]}`},
		{"three options", http.StatusOK, `[{"id":1,"text":"x","options":["a","b","c"],"correctAnswer":0,"explanation":"","difficulty":"Easy","subject":"s"}]`},
		{"answer out of range", http.StatusOK, `[{"id":1,"text":"x","options":["a","b","c","d"],"correctAnswer":7,"explanation":"","difficulty":"Easy","subject":"s"}]`},
		{"missing answer", http.StatusOK, `[{"id":1,"text":"x","options":["a","b","c","d"],"explanation":"","difficulty":"Easy","subject":"s"}]`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := fakeLLM(t, tc.status, tc.content)
			gw := NewQuestionGateway(NewLLMClient(srv.URL, "test-key", time.Second, nil), "m", 40)
			_, err := gw.GenerateQuestions(context.Background(), "exam", "subject")
			if !errors.Is(err, ErrGeneration) {
				t.Errorf("Expected ErrGeneration, got %v", err)
			}
		})
	}
}

func TestGenerateQuestionsUnreachable(t *testing.T) {
	gw := NewQuestionGateway(NewLLMClient("http://127.0.0.1:1", "test-key", 200*time.Millisecond, nil), "m", 40)
	if _, err := gw.GenerateQuestions(context.Background(), "exam", "subject"); !errors.Is(err, ErrGeneration) {
		t.Errorf("Expected ErrGeneration, got %v", err)
	}
}

func TestParseQuestionsFormats(t *testing.T) {
	bare := `[{"id":5,"text":"x","options":["a","b","c","d"],"correctAnswer":0,"explanation":"e","difficulty":"Medium","subject":"s"}]`
	fenced := "```json\n" + bare + "\n```"

	for name, content := range map[string]string{"bare": bare, "fenced": fenced, "wrapped": twoQuestions} {
		t.Run(name, func(t *testing.T) {
			qs, err := ParseQuestions(content, "fallback")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(qs) == 0 {
				t.Fatal("Expected questions")
			}
		})
	}
}

func TestParseQuestionsRenumbersDuplicates(t *testing.T) {
	content := `[
 {"id":1,"text":"x","options":["a","b","c","d"],"correctAnswer":0,"explanation":"","difficulty":"Easy","subject":"s"},
 {"id":1,"text":"y","options":["a","b","c","d"],"correctAnswer":1,"explanation":"","difficulty":"Easy","subject":"s"},
 {"id":0,"text":"z","options":["a","b","c","d"],"correctAnswer":2,"explanation":"","difficulty":"Easy","subject":"s"}
]`
	qs, err := ParseQuestions(content, "s")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, q := range qs {
		if q.ID != i+1 {
			t.Errorf("Question %d: expected id %d, got %d", i, i+1, q.ID)
		}
	}
}

func TestParseQuestionsKeepsUniqueIDs(t *testing.T) {
	content := `[
 {"id":10,"text":"x","options":["a","b","c","d"],"correctAnswer":0,"explanation":"","difficulty":"Easy","subject":"s"},
 {"id":20,"text":"y","options":["a","b","c","d"],"correctAnswer":1,"explanation":"","difficulty":"Easy","subject":"s"}
]`
	qs, _ := ParseQuestions(content, "s")
	if qs[0].ID != 10 || qs[1].ID != 20 {
		t.Errorf("Unique ids must be kept, got %d and %d", qs[0].ID, qs[1].ID)
	}
}

func TestDifficultySplit(t *testing.T) {
	testCases := []struct{ count, easy, medium, hard int }{
		{40, 10, 20, 10},
		{10, 2, 6, 2},
		{1, 0, 1, 0},
	}
	for _, tc := range testCases {
		e, m, h := difficultySplit(tc.count)
		if e != tc.easy || m != tc.medium || h != tc.hard {
			t.Errorf("difficultySplit(%d) = %d/%d/%d", tc.count, e, m, h)
		}
	}
}

func TestGenerateTips(t *testing.T) {
	srv, last := fakeLLM(t, http.StatusOK, "  - Revise polity daily\n- Time yourself  ")
	gw := NewTipGateway(NewLLMClient(srv.URL, "test-key", time.Second, nil), "flash-model")

	tips, err := gw.GenerateTips(context.Background(), 12, 40, "Polity (12/40)")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tips != "- Revise polity daily\n- Time yourself" {
		t.Errorf("Unexpected tips %q", tips)
	}
	if last.Model != "flash-model" {
		t.Errorf("Expected flash-model, got %s", last.Model)
	}
	if !strings.Contains(last.Messages[0].Content, "Score: 12/40") {
		t.Error("Prompt must carry the score")
	}
}

func TestGenerateTipsEmptyAndFailure(t *testing.T) {
	srv, _ := fakeLLM(t, http.StatusOK, "   ")
	gw := NewTipGateway(NewLLMClient(srv.URL, "test-key", time.Second, nil), "m")
	tips, err := gw.GenerateTips(context.Background(), 0, 1, "")
	if err != nil || tips != EmptyTipsText {
		t.Errorf("Expected empty fallback, got %q (%v)", tips, err)
	}

	bad, _ := fakeLLM(t, http.StatusBadGateway, "")
	gw = NewTipGateway(NewLLMClient(bad.URL, "test-key", time.Second, nil), "m")
	if _, err := gw.GenerateTips(context.Background(), 0, 1, ""); !errors.Is(err, ErrTips) {
		t.Errorf("Expected ErrTips, got %v", err)
	}
}
