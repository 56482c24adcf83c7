package questionset

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/solatis/formkeeper/internal/types"
)

// SchemaID is the $id of the generated question-set schema.
const SchemaID = "https://formkeeper.solatis.dev/schemas/question-set.json"

// Schema reflects the JSON Schema of a question-set document from
// types.QuestionSet. Unknown CMS fields are allowed.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(&types.QuestionSet{})
	s.ID = jsonschema.ID(SchemaID)
	s.Title = "formkeeper question set"
	s.Description = "CMS question set with conditional applicability and format rules."
	return s
}

// SchemaJSON returns the indented schema document.
func SchemaJSON() ([]byte, error) {
	b, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return b, nil
}
