// Package pages holds the HTML page components.
package pages

//go:generate templ generate

import (
	"time"

	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/web/templates/layout"
)

// HomeData is the data for the news page
type HomeData struct {
	layout.PageData
	News  []model.NewsItem
	Error bool
}

// Field is one input of a form
type Field struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Value       string
	Error       string
}

// FormData is the data for a page holding a single form
type FormData struct {
	layout.PageData
	Heading   string
	Action    string
	FormError string
	Fields    []Field
	CSRFToken string
}

// MessageData is the data for a plain confirmation page
type MessageData struct {
	layout.PageData
	Heading  string
	Text     string
	LinkHref string
	LinkText string
}

func newsDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02")
}
