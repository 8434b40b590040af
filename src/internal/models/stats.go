package models

// Stats summarises the blog collection for the admin landing page.
type Stats struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Drafts    int64 `json:"drafts"`
	Featured  int64 `json:"featured"`
}
