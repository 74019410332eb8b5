package services

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// jobFieldsSchemaJSON constrains the shape of extraction output before it is
// cached or persisted. String fields accept null so the models can report
// absent values without failing validation.
const jobFieldsSchemaJSON = `{
  "type": "object",
  "properties": {
    "company":             {"type": ["string", "null"]},
    "position":            {"type": ["string", "null"]},
    "location":            {"type": ["string", "null"]},
    "salary_range":        {"type": ["string", "null"]},
    "employment_type":     {"type": ["string", "null"]},
    "seniority":           {"type": ["string", "null"]},
    "required_skills":     {"type": ["array", "null"], "items": {"type": "string"}},
    "nice_to_have_skills": {"type": ["array", "null"], "items": {"type": "string"}},
    "work_experience":     {"type": ["string", "null"]},
    "education":           {"type": ["string", "null"]},
    "responsibilities":    {"type": ["array", "null"], "items": {"type": "string"}},
    "benefits":            {"type": ["array", "null"], "items": {"type": "string"}},
    "remote_policy":       {"type": ["string", "null"]}
  },
  "required": ["company", "position"]
}`

var jobFieldsSchema = jsonschema.MustCompileString("job_fields.json", jobFieldsSchemaJSON)

// ValidateJobFields checks an extracted field set against the job fields
// schema. A failure means the model response does not match the expected
// shape and the job must be marked failed for the run.
func ValidateJobFields(fields map[string]interface{}) error {
	if err := jobFieldsSchema.Validate(map[string]interface{}(fields)); err != nil {
		return fmt.Errorf("extracted fields failed schema validation: %w", err)
	}
	return nil
}
