// Package readle fetches a single web page and turns it into an analytical summary.
package readle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/logger"
	"github.com/kayz/dobby/internal/security"
)

const (
	userAgent         = "Mozilla/5.0 (compatible; Dobby/1.0; +https://github.com/kayz/dobby)"
	defaultMaxBytes   = 2 << 20
	defaultMaxChars   = 12000
	defaultTimeout    = 30 * time.Second
	defaultLLMTimeout = 60 * time.Second
)

// ErrNoContent is returned when a page yields no readable text.
var ErrNoContent = errors.New("content could not be extracted")

// Page is the readable part of a fetched document.
type Page struct {
	URL     string
	Title   string
	Content string
}

// Reader fetches pages and summarizes them.
type Reader struct {
	client    *http.Client
	validator *security.URLValidator
	llm       ai.Completer
	maxBytes  int64
	maxChars  int
	timeout   time.Duration
}

// Option configures a Reader.
type Option func(*Reader)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Reader) { r.client = c }
}

// WithValidator replaces the default SSRF validator. A nil validator disables validation.
func WithValidator(v *security.URLValidator) Option {
	return func(r *Reader) { r.validator = v }
}

// WithMaxChars caps the extracted text handed to the summarizer.
func WithMaxChars(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxChars = n
		}
	}
}

// WithTimeout bounds the summarization call. Fetching has its own client timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Reader) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewReader(llm ai.Completer, opts ...Option) *Reader {
	r := &Reader{
		client:    &http.Client{Timeout: defaultTimeout},
		validator: security.NewURLValidator(false),
		llm:       llm,
		maxBytes:  defaultMaxBytes,
		maxChars:  defaultMaxChars,
		timeout:   defaultLLMTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch downloads rawURL and extracts its title and visible text.
func (r *Reader) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	target := strings.TrimSpace(rawURL)
	if r.validator != nil {
		u, err := r.validator.Validate(ctx, target)
		if err != nil {
			return nil, err
		}
		target = u.String()
	} else if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch failed: http %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, r.maxBytes)
	page := &Page{URL: target}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/plain") {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		page.Content = cleanLines(string(raw))
	} else {
		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse html: %w", err)
		}
		page.Title, page.Content = extract(doc)
	}

	if page.Content == "" {
		return nil, ErrNoContent
	}
	if utf8.RuneCountInString(page.Content) > r.maxChars {
		page.Content = string([]rune(page.Content)[:r.maxChars])
	}
	return page, nil
}

func extract(doc *goquery.Document) (title, content string) {
	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find("script, style, noscript, template, svg, iframe").Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 || len(strings.TrimSpace(root.Text())) < 200 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 || len(strings.TrimSpace(root.Text())) < 200 {
		root = doc.Find("body")
	}
	root.Find("nav, footer, header, aside, form").Remove()

	var sb strings.Builder
	root.Find("h1, h2, h3, h4, p, li, pre, td, blockquote").Each(func(_ int, s *goquery.Selection) {
		// skip containers whose text is emitted by a nested match
		if s.Find("p, li, pre").Length() > 0 {
			return
		}
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			sb.WriteString(text)
			sb.WriteByte('\n')
		}
	})

	content = strings.TrimSpace(sb.String())
	if content == "" {
		content = cleanLines(root.Text())
	}
	return title, content
}

func cleanLines(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// Summarize fetches rawURL and returns a markdown summary. Failures come back
// as a user-facing message, never an empty string.
func (r *Reader) Summarize(ctx context.Context, rawURL string) (string, error) {
	page, err := r.Fetch(ctx, rawURL)
	if err != nil {
		logger.Warn("[Readle] Fetch failed for %s: %v", rawURL, err)
		return fmt.Sprintf("Sorry, I could not fetch data from that URL. Error: `%v`", err), err
	}

	logger.Info("[Readle] Fetched %s (%d chars), summarizing", page.URL, len(page.Content))

	llmCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	summary, err := ai.Generate(llmCtx, r.llm, ai.Request{
		Messages:    []ai.Message{ai.User(summaryPrompt(page.Content))},
		Stream:      true,
		Temperature: 0.2,
	})
	if err != nil {
		logger.Warn("[Readle] Summary failed for %s: %v", page.URL, err)
		return fmt.Sprintf("Sorry, I fetched %s but could not summarize it.", page.URL), err
	}

	return FormatSummary(page, strings.TrimSpace(summary)), nil
}

// FormatSummary renders a page summary as markdown.
func FormatSummary(page *Page, summary string) string {
	title := page.Title
	if title == "" {
		title = "No Title"
	}
	return fmt.Sprintf("### Web Page Summary\n\n**Title:** %s\n\n**Analytical Summary:**\n%s\n\n---\n\n**Original Source:** [%s](%s)",
		title, summary, page.URL, page.URL)
}

func summaryPrompt(content string) string {
	return `You are a highly skilled business and technology analyst.
Read the raw text extracted from a web page and turn it into a clear, insightful summary.

RAW TEXT FROM WEBSITE:
---
` + content + `
---

INSTRUCTIONS:
1. Extract the most important data points (funding, investors, founders, core technology, dates, figures).
2. Rewrite them as a short narrative that flows well.
3. Close with a brief analysis of what the data means.
4. Do not just copy the raw text.

YOUR ANALYSIS:`
}
