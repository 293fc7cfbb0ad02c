package simulator

import (
	"time"

	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/abhisek/aprova/internal/quiz"
)

const (
	minQuestions = 1
	maxQuestions = 50
	timeStep     = 5 * time.Minute
	minTimeLimit = time.Minute
	maxTimeLimit = 4 * time.Hour
)

type field int

const (
	fieldSource field = iota
	fieldSubject
	fieldDifficulty
	fieldCount
	fieldTime
	numFields
)

var fieldLabels = [numFields]string{"Banca", "Matéria", "Dificuldade", "Questões", "Tempo"}

// form edits a quiz.Config with the keyboard. Catalog fields cycle with
// left/right; numeric fields step up and down within bounds.
type form struct {
	cfg   quiz.Config
	focus field
}

func newForm(cfg quiz.Config) form {
	if !questiongen.IsSource(cfg.Source) {
		cfg.Source = questiongen.Sources[0]
	}
	if !questiongen.IsSubject(cfg.Subject) {
		cfg.Subject = questiongen.Subjects[0]
	}
	if !questiongen.IsDifficulty(cfg.Difficulty) {
		cfg.Difficulty = questiongen.Difficulties[0]
	}
	cfg.QuestionCount = clamp(cfg.QuestionCount, minQuestions, maxQuestions)
	cfg.TimeLimit = clamp(cfg.TimeLimit, minTimeLimit, maxTimeLimit)
	return form{cfg: cfg}
}

// update applies a key and reports whether the form was submitted.
func (f *form) update(key string) bool {
	switch key {
	case "up", "k", "shift+tab":
		f.focus = (f.focus + numFields - 1) % numFields
	case "down", "j", "tab":
		f.focus = (f.focus + 1) % numFields
	case "left", "h", "-":
		f.adjust(-1)
	case "right", "l", "+", "=":
		f.adjust(1)
	case "enter":
		return true
	}
	return false
}

func (f *form) adjust(delta int) {
	switch f.focus {
	case fieldSource:
		f.cfg.Source = cycle(questiongen.Sources, f.cfg.Source, delta)
	case fieldSubject:
		f.cfg.Subject = cycle(questiongen.Subjects, f.cfg.Subject, delta)
	case fieldDifficulty:
		f.cfg.Difficulty = cycle(questiongen.Difficulties, f.cfg.Difficulty, delta)
	case fieldCount:
		f.cfg.QuestionCount = clamp(f.cfg.QuestionCount+delta, minQuestions, maxQuestions)
	case fieldTime:
		next := f.cfg.TimeLimit + time.Duration(delta)*timeStep
		// Snap to the step grid when leaving an off-grid default.
		if rem := f.cfg.TimeLimit % timeStep; rem != 0 {
			next = f.cfg.TimeLimit - rem
			if delta > 0 {
				next += timeStep
			}
		}
		f.cfg.TimeLimit = clamp(next, minTimeLimit, maxTimeLimit)
	}
}

func cycle(list []string, cur string, delta int) string {
	idx := 0
	for i, v := range list {
		if v == cur {
			idx = i
			break
		}
	}
	n := len(list)
	return list[((idx+delta)%n+n)%n]
}

func clamp[T int | time.Duration](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
