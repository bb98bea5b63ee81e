package model

import (
	"encoding/json"
	"iter"
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

// Answer is one submitted value labeled with its field. Label is nil when
// the field no longer exists.
type Answer struct {
	FieldID   int64     `json:"fieldId"`
	Name      string    `json:"name,omitempty"`
	Label     *string   `json:"label"`
	FieldType FieldType `json:"fieldType,omitempty"`
	Value     string    `json:"value"`
}

func (a Answer) Float() (float64, error) {
	return strconv.ParseFloat(a.Value, 64)
}

func (a Answer) Int() (int64, error) {
	return strconv.ParseInt(a.Value, 10, 64)
}

func (a Answer) Bool() (bool, error) {
	return strconv.ParseBool(a.Value)
}

func (a Answer) Date() (time.Time, error) {
	return time.Parse(DateLayout, a.Value)
}

// Strings decodes a multichoice answer. Any other value is returned as a
// single element.
func (a Answer) Strings() []string {
	if a.FieldType == FieldMultichoice {
		var vs []string
		if json.Unmarshal([]byte(a.Value), &vs) == nil {
			return vs
		}
	}
	return []string{a.Value}
}

// Projection is a submission read back through its form's schema, ordered
// by field position.
type Projection struct {
	Submission FormSubmission `json:"submission"`
	Answers    []Answer       `json:"answers"`
}

// All yields the answers in field order. The sequence can be ranged over
// any number of times.
func (p Projection) All() iter.Seq[Answer] {
	return func(yield func(Answer) bool) {
		for _, a := range p.Answers {
			if !yield(a) {
				return
			}
		}
	}
}

// ByLabel maps labels to values, skipping answers whose field is gone.
func (p Projection) ByLabel() map[string]string {
	m := make(map[string]string, len(p.Answers))
	for a := range p.All() {
		if a.Label != nil {
			m[*a.Label] = a.Value
		}
	}
	return m
}
