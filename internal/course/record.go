// Package course defines the normalized course record shared by every
// site adapter and persisted by the sink.
package course

import "strconv"

// CSVHeader is the exact column order of the persisted tabular output.
var CSVHeader = []string{
	"course_id",
	"course_title",
	"url",
	"is_paid",
	"price",
	"num_subscribers",
	"num_reviews",
	"num_lectures",
	"level",
	"content_duration",
	"published_timestamp",
	"subject",
	"provider",
	"language",
}

// Record is one normalized course entry. Optional fields are pointers so
// "not extracted" is distinguishable from a zero value. Records are built
// inside an adapter's extraction routine and never mutated afterwards.
type Record struct {
	ID                 string
	Title              string
	URL                string
	IsPaid             *bool
	Price              *string
	NumSubscribers     *int
	NumReviews         *int
	NumLectures        *int
	Level              *string
	ContentDuration    *string
	PublishedTimestamp *string
	Subject            *string
	Language           *string
	Provider           string
}

// Valid reports whether the record carries the two fields every consumer
// depends on: a provider name and a canonical URL.
func (r Record) Valid() bool {
	return r.Provider != "" && r.URL != ""
}

// CSVRow renders the record in CSVHeader order. Absent optionals render as
// empty strings.
func (r Record) CSVRow() []string {
	return []string{
		r.ID,
		r.Title,
		r.URL,
		boolField(r.IsPaid),
		stringField(r.Price),
		intField(r.NumSubscribers),
		intField(r.NumReviews),
		intField(r.NumLectures),
		stringField(r.Level),
		stringField(r.ContentDuration),
		stringField(r.PublishedTimestamp),
		stringField(r.Subject),
		r.Provider,
		stringField(r.Language),
	}
}

// String returns a pointer to v, for populating optional record fields.
func String(v string) *string { return &v }

// Int returns a pointer to v, for populating optional record fields.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for populating optional record fields.
func Bool(v bool) *bool { return &v }

func stringField(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func boolField(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
