package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/pcarrot/internal/config"
	"github.com/mcoot/pcarrot/internal/factory"
	"github.com/mcoot/pcarrot/internal/session"
	"github.com/mcoot/pcarrot/internal/web/middleware"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar

	// csrfToken is read from the login form on the first post
	csrfToken string
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T, configure ...func(*config.Config)) *webTestServer {
	t.Helper()

	app := factory.NewTestApp(configure...)
	return &webTestServer{
		t:       t,
		handler: app.Routes(""), // No static files in tests
		app:     app,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post submits form the way a browser would, with the csrf token of the page
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	withToken := url.Values{}
	for k, v := range form {
		withToken[k] = v
	}
	withToken.Set(middleware.CSRFFieldName, ts.token())
	return ts.request(http.MethodPost, path, withToken)
}

// token returns a csrf token matching the csrf cookie in the jar
func (ts *webTestServer) token() string {
	ts.t.Helper()
	if ts.csrfToken != "" {
		return ts.csrfToken
	}

	rr := ts.get("/login")
	require.Equal(ts.t, http.StatusOK, rr.Code)
	token, ok := parseHTML(rr.Body).Find(`input[name="` + middleware.CSRFFieldName + `"]`).Attr("value")
	require.True(ts.t, ok, "Expected a csrf field on the login form")
	require.NotEmpty(ts.t, token)

	ts.csrfToken = token
	return token
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies[session.CookieName]
	return ok
}

// Helper functions for common test operations

// registerAccount registers an account through the form
func (ts *webTestServer) registerAccount(name, password string) {
	ts.t.Helper()
	form := url.Values{
		"account_name":     {name},
		"password":         {password},
		"confirm_password": {password},
	}
	rr := ts.post("/register", form)
	require.Equal(ts.t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	require.Equal(ts.t, "Account created", strings.TrimSpace(doc.Find("#message-heading").Text()))
}

// registerAccountDirect creates an account without going through the form
func (ts *webTestServer) registerAccountDirect(name, password string) {
	ts.t.Helper()
	_, err := ts.app.AccountService.Register(context.Background(), name, password)
	require.NoError(ts.t, err)
}

// login logs in through the form and expects the redirect to the account page
func (ts *webTestServer) login(name, password string) {
	ts.t.Helper()
	form := url.Values{"account_name": {name}, "password": {password}}
	rr := ts.post("/login", form)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after login")
	require.Equal(ts.t, "/account", rr.Header().Get("Location"))
	require.True(ts.t, ts.cookies.hasSession(), "Expected session cookie to be set")
}

// followRedirect follows a redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}

// fieldError returns the validation message rendered for a form field
func fieldError(doc *goquery.Document, field string) string {
	return strings.TrimSpace(doc.Find(`span.field-error[data-field="` + field + `"]`).Text())
}
