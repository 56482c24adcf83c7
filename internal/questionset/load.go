// Package questionset reads CMS question-set documents.
//
// Documents arrive as JSON or YAML, either as an object
// {"QuestionSetId", "Version", "Questions"} or as a bare array of questions.
// Every document is converted to JSON, checked against the schema reflected
// from types.QuestionSet, decoded, then normalised:
//   - missing QuestionSetId: a new UUIDv7
//   - missing Rule.QuestionId: the owning question
//   - missing RuleId / ConditionId: derived UUIDv5 (see types.DeriveRuleID)
package questionset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/solatis/formkeeper/internal/types"
)

// SchemaError is a schema violation with the location of the offending value.
type SchemaError struct {
	Path   *yaml.Path
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Path != nil {
		return fmt.Sprintf("error at %s: %s", e.Path.String(), e.Detail)
	}
	return e.Detail
}

// Unwrap lets callers match types.ErrSchemaViolation.
func (e *SchemaError) Unwrap() error {
	return types.ErrSchemaViolation
}

// Loader validates and decodes question-set documents. Safe for concurrent use.
type Loader struct {
	schema *jsv.Schema
}

var (
	defaultLoader     *Loader
	defaultLoaderErr  error
	defaultLoaderOnce sync.Once
)

// DefaultLoader returns a shared Loader, compiling the schema on first use.
func DefaultLoader() (*Loader, error) {
	defaultLoaderOnce.Do(func() {
		defaultLoader, defaultLoaderErr = NewLoader()
	})
	return defaultLoader, defaultLoaderErr
}

// NewLoader compiles the reflected question-set schema.
func NewLoader() (*Loader, error) {
	raw, err := SchemaJSON()
	if err != nil {
		return nil, err
	}
	doc, err := jsv.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsv.NewCompiler()
	if err := compiler.AddResource(SchemaID, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := compiler.Compile(SchemaID)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Loader{schema: sch}, nil
}

// Load parses a JSON or YAML question-set document.
func (l *Loader) Load(data []byte) (*types.QuestionSet, error) {
	doc, err := toJSON(data)
	if err != nil {
		return nil, err
	}
	doc = wrapBareArray(doc)

	if err := l.Validate(doc); err != nil {
		return nil, err
	}

	var set types.QuestionSet
	if err := json.Unmarshal(doc, &set); err != nil {
		return nil, fmt.Errorf("decode question set: %w", err)
	}

	Normalise(&set)
	return &set, nil
}

// LoadFile reads and loads a question-set document from disk.
func (l *Loader) LoadFile(path string) (*types.QuestionSet, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	set, err := l.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Validate checks a JSON question-set object against the schema.
func (l *Loader) Validate(doc []byte) error {
	inst, err := jsv.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrSchemaViolation, err)
	}

	err = l.schema.Validate(inst)
	if err == nil {
		return nil
	}

	var verr *jsv.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("%w: %w", types.ErrSchemaViolation, err)
	}
	return &SchemaError{
		Path:   pathFromLocation(mostSpecificLocation(verr)),
		Detail: verr.Error(),
	}
}

// Normalise fills optional identifiers in place.
func Normalise(set *types.QuestionSet) {
	if set.QuestionSetID == "" {
		set.QuestionSetID = types.NewQuestionSetID()
	}
	for qi := range set.Questions {
		q := &set.Questions[qi]
		for ri := range q.Rules {
			r := &q.Rules[ri]
			if r.QuestionID == "" {
				r.QuestionID = q.QuestionID
			}
			if r.RuleID == "" {
				r.RuleID = types.DeriveRuleID(q.QuestionID, ri)
			}
			for ci := range r.Conditions {
				if r.Conditions[ci].ConditionID == "" {
					r.Conditions[ci].ConditionID = types.DeriveConditionID(r.RuleID, ci)
				}
			}
		}
	}
}

// toJSON returns data as JSON, converting YAML when the document does not
// start with '{' or '['.
func toJSON(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", types.ErrSchemaViolation)
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed, nil
	}
	doc, err := yaml.YAMLToJSON(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", types.ErrSchemaViolation, err)
	}
	return bytes.TrimSpace(doc), nil
}

// wrapBareArray turns [...] into {"Questions": [...]}.
func wrapBareArray(doc []byte) []byte {
	if len(doc) == 0 || doc[0] != '[' {
		return doc
	}
	var b bytes.Buffer
	b.Grow(len(doc) + 16)
	b.WriteString(`{"Questions":`)
	b.Write(doc)
	b.WriteByte('}')
	return b.Bytes()
}

// mostSpecificLocation returns the deepest instance location among causes.
func mostSpecificLocation(err *jsv.ValidationError) []string {
	longest := err.InstanceLocation
	for _, cause := range err.Causes {
		if loc := mostSpecificLocation(cause); len(loc) > len(longest) {
			longest = loc
		}
	}
	return longest
}

func pathFromLocation(location []string) *yaml.Path {
	pb := yaml.PathBuilder{}
	current := pb.Root()
	for _, part := range location {
		var index uint
		if _, err := fmt.Sscanf(part, "%d", &index); err == nil && !strings.ContainsFunc(part, isNotDigit) {
			current = current.Index(index)
		} else {
			current = current.Child(part)
		}
	}
	return current.Build()
}

func isNotDigit(r rune) bool {
	return r < '0' || r > '9'
}
