// internal/types/answers.go
package types

import (
	"encoding/json"
	"sort"
	"strings"
)

/*
 * Answer snapshot types.
 *
 * The portal submits answers as a JSON array of Answer records. In memory the
 * snapshot is a map keyed by question id; MarshalJSON/UnmarshalJSON convert
 * between the two shapes. Marshalling sorts by question id so identical
 * snapshots encode to identical bytes.
 *
 * Answer shape by data type:
 *   - Boolean/RadioButton/Dropdown/LookUpList: Value holds the selected option id
 *   - Checkbox: Selections holds option ids with IsSelected flags
 *   - Text/TextArea/Email: Value holds the free text
 *   - Date: Value holds the composed date text, DateParts the raw sub-fields
 */

// Selection is one option of a multi-select answer.
type Selection struct {
	OptionID   OptionID `json:"OptionId" yaml:"OptionId"`
	IsSelected bool     `json:"IsSelected" yaml:"IsSelected"`
}

// DateParts holds the separately entered day, month and year of a date answer.
type DateParts struct {
	Day   string `json:"Day,omitempty" yaml:"Day,omitempty"`
	Month string `json:"Month,omitempty" yaml:"Month,omitempty"`
	Year  string `json:"Year,omitempty" yaml:"Year,omitempty"`
}

// IsEmpty reports whether no part was entered.
func (d *DateParts) IsEmpty() bool {
	return d == nil || (strings.TrimSpace(d.Day) == "" &&
		strings.TrimSpace(d.Month) == "" &&
		strings.TrimSpace(d.Year) == "")
}

// Answer is the current answer state of one question.
type Answer struct {
	QuestionID QuestionID  `json:"QuestionId" yaml:"QuestionId"`
	Value      string      `json:"Value,omitempty" yaml:"Value,omitempty"`
	Selections []Selection `json:"Selections,omitempty" yaml:"Selections,omitempty"`
	DateParts  *DateParts  `json:"DateParts,omitempty" yaml:"DateParts,omitempty"`
}

// SelectedOptions returns the ids of selections flagged IsSelected, in order.
func (a Answer) SelectedOptions() []OptionID {
	var selected []OptionID
	for _, s := range a.Selections {
		if s.IsSelected {
			selected = append(selected, s.OptionID)
		}
	}
	return selected
}

// IsEmpty reports whether the answer carries no user input.
func (a Answer) IsEmpty() bool {
	return strings.TrimSpace(a.Value) == "" &&
		len(a.SelectedOptions()) == 0 &&
		a.DateParts.IsEmpty()
}

// Answers is an answer snapshot keyed by question id.
type Answers map[QuestionID]Answer

// NewAnswers indexes a list of answers. Later entries win on duplicate ids.
func NewAnswers(list ...Answer) Answers {
	answers := make(Answers, len(list))
	for _, a := range list {
		answers[a.QuestionID] = a
	}
	return answers
}

// Get returns the answer for id and whether one exists.
func (a Answers) Get(id QuestionID) (Answer, bool) {
	ans, ok := a[id]
	return ans, ok
}

// Clone returns an independent copy of the snapshot.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for id, ans := range a {
		c := ans
		if ans.Selections != nil {
			c.Selections = append([]Selection(nil), ans.Selections...)
		}
		if ans.DateParts != nil {
			parts := *ans.DateParts
			c.DateParts = &parts
		}
		out[id] = c
	}
	return out
}

// List returns the answers sorted by question id.
func (a Answers) List() []Answer {
	list := make([]Answer, 0, len(a))
	for _, ans := range a {
		list = append(list, ans)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].QuestionID < list[j].QuestionID
	})
	return list
}

// MarshalJSON encodes the snapshot as a sorted array.
func (a Answers) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.List())
}

// UnmarshalJSON decodes an array of answers.
func (a *Answers) UnmarshalJSON(data []byte) error {
	var list []Answer
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*a = NewAnswers(list...)
	return nil
}
