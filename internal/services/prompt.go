package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildExtractionPrompt creates the prompt that turns a raw job description
// into structured fields.
func (pb *PromptBuilder) BuildExtractionPrompt(jobText string) string {
	return fmt.Sprintf(`You are an expert recruiting analyst extracting structured data from a job description.

JOB DESCRIPTION:
%s

Extract the following fields from the job description. Use null for fields that are not mentioned.

Return your response in the following JSON format:
{
  "company": "<company name>",
  "position": "<job title>",
  "location": "<city/state/country or Remote>",
  "salary_range": "<salary range as written, e.g. '$120k-$150k'>",
  "employment_type": "<full-time | part-time | contract | internship>",
  "seniority": "<junior | mid | senior | lead | principal>",
  "required_skills": ["<skill>", ...],
  "nice_to_have_skills": ["<skill>", ...],
  "work_experience": "<years of experience required, as written>",
  "education": "<education requirements, as written>",
  "responsibilities": ["<responsibility>", ...],
  "benefits": ["<benefit>", ...],
  "remote_policy": "<onsite | hybrid | remote | not specified>"
}

Be literal: extract only what the description states, do not infer missing values. Return ONLY the JSON object.`,
		jobText)
}

// BuildValidationPrompt creates the prompt for the second-pass review of an
// extraction. The validator may correct individual fields and must report
// every change it makes.
func (pb *PromptBuilder) BuildValidationPrompt(fieldsJSON, jobText string) string {
	return fmt.Sprintf(`You are a quality reviewer checking structured data extracted from a job description.

ORIGINAL JOB DESCRIPTION:
%s

EXTRACTED FIELDS:
%s

Compare every extracted field against the original description. Correct fields that are wrong, incomplete, or hallucinated. Keep fields that are accurate unchanged.

Return your response in the following JSON format:
{
  "fields": { <the full corrected field set, same shape as the extracted fields> },
  "changes": {
    "work_experience_changes": "<what changed and why, or omit if unchanged>",
    "education_changes": "<what changed and why, or omit if unchanged>",
    "<field>_changes": "<one entry per corrected field>"
  }
}

If nothing needed correction, return the fields unchanged and an empty "changes" object. Return ONLY the JSON object.`,
		jobText, fieldsJSON)
}

// BuildMatchQuery builds the semantic search query text used to find resumes
// for a job record.
func (pb *PromptBuilder) BuildMatchQuery(position, company string, skills []string) string {
	query := fmt.Sprintf("Candidate resume for %s position", position)
	if company != "" {
		query += fmt.Sprintf(" at %s", company)
	}
	for _, skill := range skills {
		query += ", " + skill
	}
	return query
}
