package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// KVEntry is a single keyed blob, such as the serialized performance record.
type KVEntry struct {
	ent.Schema
}

func (KVEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("key").
			Unique().
			Comment("Entry key, e.g. user_performance"),
		field.Bytes("value"),
		field.Int64("updated_at").
			Comment("Unix milliseconds of the last write"),
	}
}
