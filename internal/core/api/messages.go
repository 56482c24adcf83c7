package api

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/formkeeper/internal/rules"
	"github.com/solatis/formkeeper/internal/types"
	"github.com/solatis/formkeeper/internal/validate"
)

// EvaluateRequest is the body of EvaluateApplicability and ValidateAnswers.
// Exactly one of QuestionSetID (a stored set) or QuestionSet (an inline
// document) is required.
type EvaluateRequest struct {
	QuestionSetID types.QuestionSetID `json:"QuestionSetId,omitempty"`
	QuestionSet   json.RawMessage     `json:"QuestionSet,omitempty"`
	Answers       types.Answers       `json:"Answers"`
	QuestionIDs   []types.QuestionID  `json:"QuestionIds,omitempty"`
	Locale        string              `json:"Locale,omitempty"`
	Trace         bool                `json:"Trace,omitempty"`
}

// EvaluateResponse lists one outcome per requested question.
type EvaluateResponse struct {
	QuestionSetID types.QuestionSetID `json:"QuestionSetId"`
	Outcomes      []rules.Outcome     `json:"Outcomes"`
}

// ValidateResponse reports validation of a whole submission.
type ValidateResponse struct {
	QuestionSetID types.QuestionSetID   `json:"QuestionSetId"`
	Valid         bool                  `json:"Valid"`
	Errors        []validate.FieldError `json:"Errors"`
	Visible       []types.QuestionID    `json:"Visible"`
	Cleared       []types.QuestionID    `json:"Cleared"`
}

// NewValidateResponse summarises a report; Visible follows set order.
func NewValidateResponse(set *rules.CompiledSet, report validate.Report) ValidateResponse {
	resp := ValidateResponse{
		QuestionSetID: set.ID,
		Valid:         report.Valid(),
		Errors:        report.Errors,
		Visible:       []types.QuestionID{},
		Cleared:       []types.QuestionID{},
	}
	for _, q := range set.Questions() {
		if report.Visibility.IsVisible(q.ID()) {
			resp.Visible = append(resp.Visible, q.ID())
		}
	}
	resp.Cleared = append(resp.Cleared, report.Visibility.Cleared...)
	return resp
}

// PutResponse acknowledges a stored question set.
type PutResponse struct {
	QuestionSetID types.QuestionSetID `json:"QuestionSetId"`
	Version       int                 `json:"Version"`
	Checksum      string              `json:"Checksum"`
	Changed       bool                `json:"Changed"`
}

// structJSON renders a Struct as JSON bytes.
func structJSON(in *structpb.Struct) ([]byte, error) {
	if in == nil {
		return []byte("{}"), nil
	}
	return protojson.Marshal(in)
}

// decodeStruct decodes a Struct into v through its JSON form.
func decodeStruct(in *structpb.Struct, v any) error {
	data, err := structJSON(in)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return nil
}

// ToStruct encodes v as a Struct through its JSON form. v must encode to
// a JSON object.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromStruct decodes a Struct into v.
func FromStruct(in *structpb.Struct, v any) error {
	data, err := structJSON(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
