// Package layout holds the page chrome shared by every HTML page.
package layout

// FlashMessage is a one-shot notice shown at the top of the next page
type FlashMessage struct {
	Type    string
	Message string
}

// PageData is the data every page passes to the layout
type PageData struct {
	Title             string
	ServerName        string
	ServerDescription string
	LoggedIn          bool
	Flash             *FlashMessage
}
