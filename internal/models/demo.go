package models

import (
	"io"

	"github.com/catalyst/backend/internal/pagination"
)

// DemoUpload is a file submitted to the utils demo
type DemoUpload struct {
	Filename string
	Content  io.Reader
}

// UtilsDemoRequest carries the inputs of the utils demo
type UtilsDemoRequest struct {
	CurrentUser string
	Params      pagination.Params
	File        *DemoUpload
	EmailTo     string
}

// UtilsDemoResult is the payload of the utils demo endpoint.
// Upload and email outcomes are only present when attempted.
type UtilsDemoResult struct {
	PaginatedUsers  pagination.Page[UserResponse] `json:"paginated_users"`
	CurrentUser     string                        `json:"current_user"`
	RateLimitInfo   string                        `json:"rate_limit_info"`
	UploadedFileURL string                        `json:"uploaded_file_url,omitempty"`
	FileUploadError string                        `json:"file_upload_error,omitempty"`
	EmailStatus     string                        `json:"email_status,omitempty"`
	EmailError      string                        `json:"email_error,omitempty"`
}

// SeedResult reports what the seed routine did
type SeedResult struct {
	Created int `json:"created"`
}
