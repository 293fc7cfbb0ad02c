package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// QuizSession records the outcome of one timed quiz, finished or abandoned.
type QuizSession struct {
	ent.Schema
}

func (QuizSession) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (QuizSession) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("Session UUID"),
		field.String("source").
			Comment("Banca whose style was imitated"),
		field.String("subject"),
		field.String("difficulty"),
		field.Int("question_count").
			Comment("Questions configured for the session"),
		field.Int("time_limit_secs"),
		field.Int("answered").
			Default(0),
		field.Int("correct").
			Default(0),
		field.Int64("elapsed_ms").
			Default(0),
		field.Enum("end_reason").
			Values("completed", "time_expired", "abandoned"),
	}
}
