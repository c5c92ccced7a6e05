// Package domain defines the CORD-19 explorer's data contracts shared by the
// pipeline, the HTTP API and the websocket protocol.
package domain

import "time"

// Paper is one cleaned metadata row. Empty strings mark absent text fields.
type Paper struct {
	ID                string     `json:"cord_uid,omitempty"`
	Title             string     `json:"title"`
	PublishTime       *time.Time `json:"publish_time"`
	Year              *int       `json:"year"`
	Journal           string     `json:"journal,omitempty"`
	Source            string     `json:"source_x,omitempty"`
	Abstract          string     `json:"abstract,omitempty"`
	AbstractWordCount int        `json:"abstract_word_count"`
}

// HasYear reports whether the paper's year was derived.
func (p Paper) HasYear() bool {
	return p.Year != nil
}

// Field selects a categorical column for frequency counts.
type Field string

const (
	FieldJournal Field = "journal"
	FieldSource  Field = "source_x"
	FieldTitle   Field = "title"
)

// Value returns the paper's text for f.
func (p Paper) Value(f Field) string {
	switch f {
	case FieldJournal:
		return p.Journal
	case FieldSource:
		return p.Source
	case FieldTitle:
		return p.Title
	default:
		return ""
	}
}

// YearCount is one bucket of the year histogram.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// ValueCount is one row of a top-N frequency table.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// YearRange is an inclusive year interval.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether year lies in the inclusive range.
func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}
