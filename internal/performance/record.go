// Package performance keeps the candidate's cumulative answer statistics,
// globally and per subject, in a single key-value entry.
package performance

import (
	"encoding/json"
	"sort"
)

// Key is the key-value entry holding the serialized Record.
const Key = "user_performance"

// SubjectStat counts answers for one subject.
type SubjectStat struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// Accuracy returns Correct/Total, or 0 when nothing was answered.
func (s SubjectStat) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Record is the persisted performance summary.
type Record struct {
	TotalAnswered  int                    `json:"totalAnswered"`
	CorrectAnswers int                    `json:"correctAnswers"`
	SubjectStats   map[string]SubjectStat `json:"subjectStats"`
}

// New returns an empty Record.
func New() Record {
	return Record{SubjectStats: map[string]SubjectStat{}}
}

// Apply counts one answer. Other subjects are left untouched.
func (r *Record) Apply(correct bool, subject string) {
	if r.SubjectStats == nil {
		r.SubjectStats = map[string]SubjectStat{}
	}
	st := r.SubjectStats[subject]
	st.Total++
	r.TotalAnswered++
	if correct {
		st.Correct++
		r.CorrectAnswers++
	}
	r.SubjectStats[subject] = st
}

// Accuracy returns CorrectAnswers/TotalAnswered, or 0 when nothing was
// answered.
func (r Record) Accuracy() float64 {
	if r.TotalAnswered == 0 {
		return 0
	}
	return float64(r.CorrectAnswers) / float64(r.TotalAnswered)
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := Record{
		TotalAnswered:  r.TotalAnswered,
		CorrectAnswers: r.CorrectAnswers,
		SubjectStats:   make(map[string]SubjectStat, len(r.SubjectStats)),
	}
	for k, v := range r.SubjectStats {
		out.SubjectStats[k] = v
	}
	return out
}

// SubjectRow is one line of a per-subject breakdown.
type SubjectRow struct {
	Subject string
	SubjectStat
}

// Breakdown lists the given subjects in order, zero-filled when absent,
// followed by any recorded subject not in the list, sorted by name.
func (r Record) Breakdown(subjects []string) []SubjectRow {
	rows := make([]SubjectRow, 0, len(subjects)+len(r.SubjectStats))
	listed := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		listed[s] = true
		rows = append(rows, SubjectRow{Subject: s, SubjectStat: r.SubjectStats[s]})
	}

	var extra []string
	for s := range r.SubjectStats {
		if !listed[s] {
			extra = append(extra, s)
		}
	}
	sort.Strings(extra)
	for _, s := range extra {
		rows = append(rows, SubjectRow{Subject: s, SubjectStat: r.SubjectStats[s]})
	}
	return rows
}

// Encode serializes r.
func Encode(r Record) ([]byte, error) {
	if r.SubjectStats == nil {
		r.SubjectStats = map[string]SubjectStat{}
	}
	return json.Marshal(r)
}

// Decode parses a stored record field by field. Missing or malformed
// fields default to zero and unknown fields are ignored. Negative counts
// clamp to zero and correct counts clamp to their totals. Decode never
// fails.
func Decode(data []byte) Record {
	rec := New()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return rec
	}

	rec.TotalAnswered = decodeCount(fields["totalAnswered"])
	rec.CorrectAnswers = min(decodeCount(fields["correctAnswers"]), rec.TotalAnswered)

	var subjects map[string]json.RawMessage
	if raw, ok := fields["subjectStats"]; ok && json.Unmarshal(raw, &subjects) == nil {
		for name, raw := range subjects {
			var stat map[string]json.RawMessage
			if json.Unmarshal(raw, &stat) != nil {
				continue
			}
			total := decodeCount(stat["total"])
			rec.SubjectStats[name] = SubjectStat{
				Total:   total,
				Correct: min(decodeCount(stat["correct"]), total),
			}
		}
	}

	return rec
}

// decodeCount reads a non-negative integer, accepting JSON numbers with a
// zero fractional part. Anything else is 0.
func decodeCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	if f <= 0 || f != float64(int(f)) {
		return 0
	}
	return int(f)
}
