package models

import "time"

// ActivityMessage is published to the activity exchange for audit consumers.
type ActivityMessage struct {
	Action    string            `json:"action"`
	Source    string            `json:"source"`
	SubjectID string            `json:"subject_id,omitempty"`
	IPAddress string            `json:"ip_address,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Activity action constants
const (
	ActionLoginSucceeded = "login_succeeded"
	ActionLoginFailed    = "login_failed"
	ActionLogout         = "logout"
	ActionBlogCreated    = "blog_created"
	ActionBlogUpdated    = "blog_updated"
	ActionBlogDeleted    = "blog_deleted"
)

// Source constants
const (
	SourceAuthHandler = "admin.handler.auth"
	SourceBlogService = "admin.service.blog"
)
