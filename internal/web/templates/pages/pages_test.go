package pages

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/web/templates/layout"
)

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func page(title string) layout.PageData {
	return layout.PageData{Title: title, ServerName: "Test OT", ServerDescription: "test server"}
}

func TestLayout(t *testing.T) {
	data := page("Login")
	data.Flash = &layout.FlashMessage{Type: "success", Message: "Welcome <back>"}

	doc := render(t, Message(MessageData{PageData: data, Heading: "Hi"}))

	assert.Equal(t, "Login - Test OT", doc.Find("title").Text())
	assert.Equal(t, "/static/style.css", doc.Find(`link[rel="stylesheet"]`).AttrOr("href", ""))
	assert.Equal(t, "Welcome <back>", doc.Find("div.flash.flash-success").Text())
	assert.Equal(t, 1, doc.Find("#nav-login").Length())
	assert.Equal(t, 0, doc.Find("#nav-logout").Length())
	assert.Equal(t, "Hi", doc.Find("main #message-heading").Text())
	assert.Equal(t, 0, doc.Find("#message-link").Length())
}

func TestFormRendersFieldsAndToken(t *testing.T) {
	doc := render(t, Form(FormData{
		PageData:  page("Login"),
		Heading:   "Log in",
		Action:    "/login",
		FormError: "Oops",
		CSRFToken: "tok\"en",
		Fields: []Field{
			{Name: "account_name", Label: "Account name", Type: "text", Value: `"><script>`, Error: "Too short"},
			{Name: "password", Label: "Password", Type: "password"},
		},
	}))

	form := doc.Find(`form[method="post"][action="/login"]`)
	require.Equal(t, 1, form.Length())
	assert.Equal(t, "tok\"en", form.Find(`input[type="hidden"][name="csrf_token"]`).AttrOr("value", ""))
	assert.Equal(t, `"><script>`, form.Find("input#account_name").AttrOr("value", ""))
	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Equal(t, "Too short", doc.Find(`span.field-error[data-field="account_name"]`).Text())
	assert.Equal(t, 0, doc.Find(`span.field-error[data-field="password"]`).Length())
	assert.Equal(t, "Oops", doc.Find("p.form-error").Text())
}

func TestHomeStates(t *testing.T) {
	doc := render(t, Home(HomeData{PageData: page("News"), Error: true}))
	assert.Equal(t, 1, doc.Find("#news-error").Length())

	doc = render(t, Home(HomeData{PageData: page("News")}))
	assert.Equal(t, 1, doc.Find("#news-empty").Length())

	date := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC).Unix()
	doc = render(t, Home(HomeData{PageData: page("News"), News: []model.NewsItem{
		{Title: "Server <online>", Author: "GM", Date: date, BodyHTML: "<p><strong>hi</strong></p>"},
	}}))
	item := doc.Find("article.news-item")
	require.Equal(t, 1, item.Length())
	assert.Equal(t, "Server <online>", item.Find("h3.news-title").Text())
	assert.Equal(t, "GM", item.Find("span.news-author").Text())
	assert.Equal(t, "2024-03-09", item.Find("time").Text())
	assert.Equal(t, "hi", item.Find("div.news-body strong").Text())
}

func TestMessageLink(t *testing.T) {
	doc := render(t, Message(MessageData{PageData: page("Done"), Heading: "Done", LinkHref: "/login", LinkText: "Log in"}))
	assert.Equal(t, "/login", doc.Find("#message-link").AttrOr("href", ""))
	assert.Equal(t, "Log in", doc.Find("#message-link").Text())
}
