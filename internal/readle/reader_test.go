package readle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/ai/aitest"
	"github.com/kayz/dobby/internal/security"
)

const articleHTML = `<html><head><title>Acme raises $10M</title>
<script>var tracking = "should not appear";</script>
<style>.x{color:red}</style></head>
<body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Acme raises $10M Series A</h1>
<p>Acme, a developer tools startup, announced a $10M Series A led by Example Ventures.</p>
<ul><li>Founded in 2021</li><li>Based in Berlin</li></ul>
<noscript>enable js</noscript>
</article>
<footer>copyright</footer>
</body></html>`

func newServer(t *testing.T, contentType, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Dobby")
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchExtractsReadableText(t *testing.T) {
	srv := newServer(t, "text/html; charset=utf-8", articleHTML, http.StatusOK)
	r := NewReader(aitest.New("unused"), WithValidator(security.NewURLValidator(true)))

	page, err := r.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Acme raises $10M", page.Title)
	assert.Contains(t, page.Content, "$10M Series A led by Example Ventures")
	assert.Contains(t, page.Content, "Founded in 2021")
	for _, junk := range []string{"tracking", "color:red", "enable js", "Home", "copyright"} {
		assert.NotContains(t, page.Content, junk)
	}
}

func TestFetchBlocksPrivateTargetsByDefault(t *testing.T) {
	srv := newServer(t, "text/html", articleHTML, http.StatusOK)
	r := NewReader(aitest.New("unused"))

	_, err := r.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, security.ErrBlocked)
}

func TestFetchRejectsErrorStatusAndEmptyPages(t *testing.T) {
	notFound := newServer(t, "text/html", "<p>missing</p>", http.StatusNotFound)
	empty := newServer(t, "text/html", "<html><body><script>x()</script></body></html>", http.StatusOK)
	r := NewReader(aitest.New("unused"), WithValidator(nil))

	_, err := r.Fetch(context.Background(), notFound.URL)
	require.ErrorContains(t, err, "http 404")

	_, err = r.Fetch(context.Background(), empty.URL)
	require.ErrorIs(t, err, ErrNoContent)
}

func TestFetchTruncatesPlainText(t *testing.T) {
	srv := newServer(t, "text/plain", strings.Repeat("word ", 100), http.StatusOK)
	r := NewReader(aitest.New("unused"), WithValidator(nil), WithMaxChars(20))

	page, err := r.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page.Content, 20)
}

func TestFetchTruncatesOnRuneBoundary(t *testing.T) {
	srv := newServer(t, "text/plain; charset=utf-8", strings.Repeat("日本語のテキスト ", 50), http.StatusOK)
	r := NewReader(aitest.New("unused"), WithValidator(nil), WithMaxChars(21))

	page, err := r.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(page.Content))
	assert.Equal(t, 21, utf8.RuneCountInString(page.Content))
}

func TestSummarizeTimesOutSlowModel(t *testing.T) {
	srv := newServer(t, "text/html", articleHTML, http.StatusOK)
	stuck := &aitest.Fake{Func: func(ctx context.Context, _ ai.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	r := NewReader(stuck, WithValidator(nil), WithTimeout(30*time.Millisecond))

	start := time.Now()
	out, err := r.Summarize(context.Background(), srv.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, out, "could not summarize")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSummarizeFormatsMarkdown(t *testing.T) {
	srv := newServer(t, "text/html", articleHTML, http.StatusOK)
	llm := aitest.New("Acme closed a Series A.")
	r := NewReader(llm, WithValidator(nil))

	out, err := r.Summarize(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "### Web Page Summary"))
	assert.Contains(t, out, "**Title:** Acme raises $10M")
	assert.Contains(t, out, "Acme closed a Series A.")
	assert.Contains(t, out, "**Original Source:** ["+srv.URL+"]("+srv.URL+")")

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Stream)
	assert.Contains(t, reqs[0].Messages[0].Content, "Example Ventures")
}

func TestSummarizeReportsFailures(t *testing.T) {
	srv := newServer(t, "text/html", articleHTML, http.StatusOK)
	r := NewReader(aitest.Failing(errors.New("boom")), WithValidator(nil))

	out, err := r.Summarize(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, out, "could not summarize")

	out, err = r.Summarize(context.Background(), "ftp://example.com")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(out, "Sorry, I could not fetch data"))
}

var _ ai.Completer = (*aitest.Fake)(nil)
