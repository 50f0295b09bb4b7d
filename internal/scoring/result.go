// Package scoring turns a finished session into a Result.
package scoring

import (
	"fmt"
	"strings"

	"mocktest-service/internal/models"
)

// Percent rounds 100*part/whole half up and returns 0 for an empty whole.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}

// answerAt treats a missing answer as skipped so totals always match the question count.
func answerAt(questions []models.Question, answers []models.Answer, i int) models.Answer {
	if i < len(answers) {
		return answers[i]
	}
	return models.Unanswered(questions[i].ID)
}

// CorrectCount counts answers marked correct.
func CorrectCount(answers []models.Answer) int {
	n := 0
	for _, a := range answers {
		if a.IsCorrect() {
			n++
		}
	}
	return n
}

// ComputeResult scores answers against questions by index. It is pure: the
// same inputs always produce the same Result.
func ComputeResult(questions []models.Question, answers []models.Answer, tips string) models.Result {
	total := len(questions)
	correct, skipped := 0, 0

	subjects := newBreakdown()
	difficulties := map[models.Difficulty]*models.DifficultyScore{}
	review := make([]models.ReviewItem, 0, total)

	for i, q := range questions {
		a := answerAt(questions, answers, i)
		switch {
		case a.IsCorrect():
			correct++
		case !a.IsAnswered():
			skipped++
		}

		subjects.add(q.Subject, a.IsCorrect())

		d, ok := difficulties[q.Difficulty]
		if !ok {
			d = &models.DifficultyScore{Difficulty: q.Difficulty}
			difficulties[q.Difficulty] = d
		}
		d.Total++
		if a.IsCorrect() {
			d.Correct++
		}

		review = append(review, reviewItem(q, a))
	}

	return models.Result{
		Score:              correct,
		TotalQuestions:     total,
		CorrectAnswers:     correct,
		IncorrectAnswers:   total - correct - skipped,
		SkippedAnswers:     skipped,
		Accuracy:           Percent(correct, total-skipped),
		SubjectAnalysis:    subjects.scores(),
		DifficultyAnalysis: difficultyScores(difficulties),
		Review:             review,
		Tips:               tips,
	}
}

func reviewItem(q models.Question, a models.Answer) models.ReviewItem {
	item := models.ReviewItem{
		QuestionID:    q.ID,
		Text:          q.Text,
		Options:       append([]string(nil), q.Options...),
		CorrectAnswer: q.CorrectAnswer,
		Status:        a.Status(),
		Explanation:   q.Explanation,
		Difficulty:    q.Difficulty,
		Subject:       q.Subject,
	}
	if opt, ok := a.Selected(); ok {
		item.SelectedOption = &opt
	}
	return item
}

func difficultyScores(byLevel map[models.Difficulty]*models.DifficultyScore) []models.DifficultyScore {
	out := make([]models.DifficultyScore, 0, len(byLevel))
	for _, level := range models.Difficulties {
		if d, ok := byLevel[level]; ok {
			d.Accuracy = Percent(d.Correct, d.Total)
			out = append(out, *d)
		}
	}
	return out
}

// breakdown accumulates per-subject counts in first-seen order.
type breakdown struct {
	order []string
	index map[string]*models.SubjectScore
}

func newBreakdown() *breakdown {
	return &breakdown{index: map[string]*models.SubjectScore{}}
}

func (b *breakdown) add(subject string, correct bool) {
	s, ok := b.index[subject]
	if !ok {
		s = &models.SubjectScore{Subject: subject}
		b.index[subject] = s
		b.order = append(b.order, subject)
	}
	s.Total++
	if correct {
		s.Correct++
	}
}

func (b *breakdown) scores() []models.SubjectScore {
	out := make([]models.SubjectScore, 0, len(b.order))
	for _, name := range b.order {
		s := *b.index[name]
		s.Accuracy = Percent(s.Correct, s.Total)
		out = append(out, s)
	}
	return out
}

// SubjectSummary describes per-subject performance for the tip prompt,
// e.g. "Polity (3/5), History (1/2)".
func SubjectSummary(questions []models.Question, answers []models.Answer) string {
	b := newBreakdown()
	for i, q := range questions {
		b.add(q.Subject, answerAt(questions, answers, i).IsCorrect())
	}
	parts := make([]string, 0, len(b.order))
	for _, s := range b.scores() {
		parts = append(parts, fmt.Sprintf("%s (%d/%d)", s.Subject, s.Correct, s.Total))
	}
	return strings.Join(parts, ", ")
}
