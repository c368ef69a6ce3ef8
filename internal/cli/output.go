package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AccountResult:
		fmt.Fprintf(o.w, "Account created: %d\n", v.ID)
	case SessionResult:
		fmt.Fprintf(o.w, "Logged in as account %d\n", v.AccountID)
		fmt.Fprintf(o.w, "Token: %s\n", v.Token)
	case NewsList:
		o.printNewsList(v)
	case NewsPosted:
		fmt.Fprintf(o.w, "Posted news item %d\n", v.ID)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// AccountResult is the response for account creation
type AccountResult struct {
	ID int64 `json:"id"`
}

// SessionResult is the response for a login
type SessionResult struct {
	AccountID int64  `json:"account_id"`
	Token     string `json:"token"`
}

// NewsItem response type
type NewsItem struct {
	ID       int64  `json:"id"`
	Date     int64  `json:"date"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	BodyHTML string `json:"body_html"`
}

// NewsList response type
type NewsList struct {
	News []NewsItem `json:"news"`
}

// NewsPosted reports a news item written directly to the database
type NewsPosted struct {
	ID int64 `json:"id"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printNewsList(l NewsList) {
	if len(l.News) == 0 {
		fmt.Fprintln(o.w, "No news.")
		return
	}
	for _, n := range l.News {
		date := time.Unix(n.Date, 0).UTC().Format("2006-01-02 15:04")
		fmt.Fprintf(o.w, "[%d] %s (%s, %s)\n", n.ID, n.Title, n.Author, date)
	}
}
