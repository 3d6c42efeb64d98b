package research

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/logger"
)

// NoResultsMessage is returned when there is nothing to synthesize.
const NoResultsMessage = "Sorry, couldn't find relevant information. Try with different keywords."

const (
	DefaultTopK   = 8
	DiversityCap  = 2
	digestEntries = 3
)

const synthesisSystemPrompt = "You are a research analyst who turns search results into a sourced briefing. " +
	"You avoid template language and repetition. Every analysis is written for the question at hand."

// Synthesizer folds ranked results into one cited markdown brief.
type Synthesizer struct {
	llm     ai.Completer
	timeout time.Duration
	topK    int
	now     func() time.Time

	mu      sync.Mutex
	history map[string]struct{}
}

func NewSynthesizer(llm ai.Completer, timeout time.Duration, topK int) *Synthesizer {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Synthesizer{
		llm:     llm,
		timeout: timeout,
		topK:    topK,
		now:     time.Now,
		history: make(map[string]struct{}),
	}
}

// Synthesize never fails: without results it returns NoResultsMessage without
// calling the model, and when the model fails it returns Digest.
func (s *Synthesizer) Synthesize(ctx context.Context, results []Result, userQuery string, queryType QueryType) string {
	if len(results) == 0 {
		return NoResultsMessage
	}

	ranked := SelectEvidence(results, DiversityCap, s.topK)
	repeated := s.remember(ranked)
	if repeated {
		logger.Info("[Research] Same evidence as an earlier brief, asking for variation")
	}

	brief, err := s.generate(ctx, ranked, userQuery, queryType, repeated)
	if err != nil {
		logger.Warn("[Research] Synthesis failed, returning digest: %v", err)
		fallbacksUsed.WithLabelValues("synthesis").Inc()
		return Digest(userQuery, ranked)
	}
	return brief
}

func (s *Synthesizer) generate(ctx context.Context, ranked []Result, userQuery string, queryType QueryType, repeated bool) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("no completion backend")
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := s.now()
	sessionID := fingerprint(userQuery + now.Format(time.RFC3339Nano))[:8]
	text, err := ai.Generate(callCtx, s.llm, ai.Request{
		Messages: []ai.Message{
			ai.System(synthesisSystemPrompt),
			ai.User(synthesisPrompt(sessionID, DateContext(now), userQuery, queryType, EvidenceBlock(ranked), repeated)),
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// remember records the evidence fingerprint and reports whether it was seen before.
func (s *Synthesizer) remember(ranked []Result) bool {
	var sb strings.Builder
	for _, r := range ranked {
		sb.WriteString(r.Title)
		sb.WriteString(r.Snippet)
	}
	fp := fingerprint(sb.String())

	s.mu.Lock()
	defer s.mu.Unlock()
	_, seen := s.history[fp]
	s.history[fp] = struct{}{}
	return seen
}

func fingerprint(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// SelectEvidence keeps at most perDomain results per domain, best quality first,
// then re-ranks the survivors by weighted score and keeps the top k.
func SelectEvidence(results []Result, perDomain, k int) []Result {
	var order []string
	groups := make(map[string][]Result)
	for _, r := range results {
		if _, ok := groups[r.Domain]; !ok {
			order = append(order, r.Domain)
		}
		groups[r.Domain] = append(groups[r.Domain], r)
	}

	var selected []Result
	for _, domain := range order {
		group := groups[domain]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Quality > group[j].Quality
		})
		if len(group) > perDomain {
			group = group[:perDomain]
		}
		selected = append(selected, group...)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].WeightedScore() > selected[j].WeightedScore()
	})
	if len(selected) > k {
		selected = selected[:k]
	}
	return selected
}

// EvidenceBlock renders results as numbered SOURCE_i sections.
func EvidenceBlock(results []Result) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "SOURCE_%d:\nTitle: %s\nURL: %s\nDomain: %s (Quality: %.2f)\nContent: %s\nRelevance: %.2f\n\n",
			i+1, r.Title, r.URL, r.Domain, r.Quality, r.Snippet, r.Relevance)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Digest is the plain brief used when the model is unavailable.
func Digest(userQuery string, ranked []Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Research Brief: %s\n\n", userQuery)
	for i, r := range ranked {
		if i == digestEntries {
			break
		}
		fmt.Fprintf(&sb, "## %s\n%s\n\n**Source:** [%s](%s)\n\n", r.Title, r.Snippet, r.Domain, r.URL)
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func synthesisPrompt(sessionID, dateContext, userQuery string, queryType QueryType, evidence string, repeated bool) string {
	variation := ""
	if repeated {
		variation = "\nThese sources were already summarized once in this session. Take a different angle and do not reuse earlier wording.\n"
	}
	return fmt.Sprintf(`SESSION_ID: %s
%s

RESEARCH REQUEST: %q
QUERY_TYPE: %s

SOURCES:
%s
%s
Write a markdown briefing with these sections:

# Executive Summary
3-4 key insights that come from cross-checking the sources. Focus on what they mean.

# Data Points & Evidence
The most significant findings as bullets, each followed by its source URL in parentheses.
Prefer recent and high-quality sources and include numbers where the sources have them.

# Deep Analysis
Trends across sources, where sources agree or disagree, background, and which sources are most reliable.

# Critical Insights
Hidden implications, open questions, contradictions or red flags.

# Bottom Line
One paragraph with the most important, actionable takeaway.

Cite a URL for every major claim. Be specific: exact numbers, dates and quotes. No filler.`,
		sessionID, dateContext, userQuery, queryType, evidence, variation)
}
