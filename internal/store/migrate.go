package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableKV          = "kv_entries"
	tableLLMEvents   = "llm_request_events"
	tableQuizSession = "quiz_sessions"
)

var (
	kvColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString, Unique: true},
		{Name: "value", Type: field.TypeBytes},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	kvTable = &schema.Table{
		Name:       tableKV,
		Columns:    kvColumns,
		PrimaryKey: []*schema.Column{kvColumns[0]},
	}

	// Timestamps are stored as unix milliseconds.
	llmEventColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "stop_reason", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmEventTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    llmEventColumns,
		PrimaryKey: []*schema.Column{llmEventColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmEventColumns[5]}},
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmEventColumns[2]}},
		},
	}

	quizSessionColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "source", Type: field.TypeString},
		{Name: "subject", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "question_count", Type: field.TypeInt},
		{Name: "time_limit_secs", Type: field.TypeInt},
		{Name: "answered", Type: field.TypeInt, Default: 0},
		{Name: "correct", Type: field.TypeInt, Default: 0},
		{Name: "elapsed_ms", Type: field.TypeInt64, Default: 0},
		{Name: "end_reason", Type: field.TypeString},
	}
	quizSessionTable = &schema.Table{
		Name:       tableQuizSession,
		Columns:    quizSessionColumns,
		PrimaryKey: []*schema.Column{quizSessionColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quizsession_timestamp", Columns: []*schema.Column{quizSessionColumns[2]}},
		},
	}

	tables = []*schema.Table{kvTable, llmEventTable, quizSessionTable}
)

// migrate creates missing tables and columns. Existing data is never dropped.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}
