package types

import "time"

// Job is one concrete report instance. Data holds the serialized
// per-job document blob.
type Job struct {
	ID             string    `json:"id"`
	TemplateID     string    `json:"template_id"`
	Title          string    `json:"title"`
	ClientName     string    `json:"client_name,omitempty"`
	Address        string    `json:"address,omitempty"`
	InspectionDate string    `json:"inspection_date,omitempty"`
	Data           string    `json:"data"`
	DateCreated    time.Time `json:"date_created"`
	DateModified   time.Time `json:"date_modified"`
}

// Image is a photo attached to a job section or to a finding.
// For findings SectionID holds the finding id.
type Image struct {
	ID        string `json:"id"`
	JobID     string `json:"job_id"`
	SectionID string `json:"section_id"`
	FilePath  string `json:"file_path"`
	Caption   string `json:"caption,omitempty"`
	Order     int    `json:"order"`
}
