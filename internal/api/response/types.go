package response

import (
	"github.com/mcoot/pcarrot/internal/model"
)

// Account is the response for account creation
type Account struct {
	ID int64 `json:"id"`
}

// Session is the response for a successful login
type Session struct {
	AccountID int64  `json:"account_id"`
	Token     string `json:"token"`
}

// NewsItem is a rendered news item
type NewsItem struct {
	ID       int64  `json:"id"`
	Date     int64  `json:"date"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	BodyHTML string `json:"body_html"`
}

// NewsItemFromModel converts a rendered model.NewsItem
func NewsItemFromModel(n model.NewsItem) NewsItem {
	return NewsItem{
		ID:       n.ID,
		Date:     n.Date,
		Title:    n.Title,
		Author:   n.Author,
		BodyHTML: n.BodyHTML,
	}
}

// NewsList is the response for the news feed
type NewsList struct {
	News []NewsItem `json:"news"`
}

// NewsListFromModel converts a slice of rendered news items
func NewsListFromModel(items []model.NewsItem) NewsList {
	out := NewsList{News: make([]NewsItem, 0, len(items))}
	for _, n := range items {
		out.News = append(out.News, NewsItemFromModel(n))
	}
	return out
}
