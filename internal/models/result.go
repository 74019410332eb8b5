package models

type ProcessJobsRequest struct {
	SessionID string   `json:"session_id"`
	JobIDs    []string `json:"job_ids" validate:"required"`
}

type ProcessMTBRequest struct {
	SessionID string `json:"session_id"`
}

type ProcessResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	TotalJobs int    `json:"total_jobs"`
}

type ResumeUploadResponse struct {
	ID            string `json:"id"`
	Filename      string `json:"filename"`
	OriginalName  string `json:"original_name"`
	CandidateName string `json:"candidate_name"`
}

type ResumeSearchResult struct {
	ResumeID      string  `json:"resume_id"`
	CandidateName string  `json:"candidate_name"`
	Score         float32 `json:"score"`
	Snippet       string  `json:"snippet"`
}

type SavedSearchRequest struct {
	Name    string                 `json:"name" validate:"required"`
	Query   string                 `json:"query" validate:"required"`
	Filters map[string]interface{} `json:"filters"`
}

type DriveAuthURLResponse struct {
	AuthURL string `json:"auth_url"`
}
