package blog

import "strings"

// DefaultTags is served when the tags collection cannot be read.
var DefaultTags = []string{
	"Physics", "History", "Business Studies", "Geography", "Biology",
	"Chemistry", "Domain Subjects", "Universities", "Class 12 Boards",
	"Students", "Syllabus", "Counselling", "English", "Mathematics",
	"GK and Current Affairs", "Agriculture", "Strategic Guide",
	"Entrepreneurship", "General Test", "Computer Challenge",
}

// ParseList splits a comma-separated field, trimming entries and dropping empty ones.
func ParseList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
