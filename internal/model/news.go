package model

// NewsItem is a single announcement shown on the home page
type NewsItem struct {
	ID     int64  `json:"id"`
	Date   int64  `json:"date"` // unix seconds
	Title  string `json:"title"`
	Author string `json:"author"`

	// Body is the Markdown source as stored
	Body string `json:"body"`
	// BodyHTML is Body rendered to HTML, empty until rendered
	BodyHTML string `json:"body_html,omitempty"`
}
