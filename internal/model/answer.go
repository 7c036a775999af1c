package model

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/rotisserie/eris"
)

// Answer is one questionnaire response. It holds either a single value
// (an option code or free text) or a multi-select list of option codes.
// The zero value is an unanswered question.
type Answer struct {
	values []string
	multi  bool
}

// Single returns a single-valued answer.
func Single(value string) Answer {
	if value == "" {
		return Answer{}
	}
	return Answer{values: []string{value}}
}

// Multi returns a multi-select answer. An empty selection is still a
// multi-select answer so boundary validation can reject it by shape.
func Multi(codes ...string) Answer {
	vals := make([]string, len(codes))
	copy(vals, codes)
	return Answer{values: vals, multi: true}
}

// IsMulti reports whether the answer was given as a list.
func (a Answer) IsMulti() bool { return a.multi }

// IsZero reports whether the question was left unanswered.
func (a Answer) IsZero() bool { return !a.multi && len(a.values) == 0 }

// Code returns the single value, or "" for multi-select or empty answers.
func (a Answer) Code() string {
	if a.multi || len(a.values) == 0 {
		return ""
	}
	return a.values[0]
}

// Codes returns every selected value. A single answer yields a
// one-element slice. The returned slice is a copy.
func (a Answer) Codes() []string {
	out := make([]string, len(a.values))
	copy(out, a.values)
	return out
}

// MarshalJSON encodes single answers as a string and multi-select answers as
// an array.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.multi {
		return json.Marshal(a.values)
	}
	if len(a.values) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(a.values[0])
}

// UnmarshalJSON accepts a string, an array of strings or null.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Answer{}
		return nil
	case len(data) > 0 && data[0] == '[':
		var codes []string
		if err := json.Unmarshal(data, &codes); err != nil {
			return eris.Wrap(err, "answer: decode list")
		}
		*a = Multi(codes...)
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "answer: expected string or list of strings")
		}
		*a = Single(s)
		return nil
	}
}

// AnswerSet maps question ids (Q1..Q16, advisorQuestion) to answers.
type AnswerSet map[string]Answer

// Get returns the answer for q, or the zero Answer.
func (s AnswerSet) Get(q string) Answer {
	return s[q]
}

// Questions returns the answered question ids in sorted order.
func (s AnswerSet) Questions() []string {
	out := make([]string, 0, len(s))
	for q, a := range s {
		if !a.IsZero() {
			out = append(out, q)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy.
func (s AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(s))
	for q, a := range s {
		out[q] = Answer{values: a.Codes(), multi: a.multi}
	}
	return out
}
