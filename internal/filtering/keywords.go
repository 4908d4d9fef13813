package filtering

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/spigell/web3-jobs/internal/jobs"
)

// KeywordSet answers "does the text contain any of these keywords" in a
// single pass. An empty set matches everything.
type KeywordSet struct {
	keywords []string

	// The matcher keeps per-search state, so searches are serialized.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

func NewKeywordSet(keywords []string) *KeywordSet {
	ks := &KeywordSet{}
	seen := make(map[string]bool)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		ks.keywords = append(ks.keywords, kw)
	}

	if len(ks.keywords) > 0 {
		ks.matcher = ahocorasick.NewStringMatcher(ks.keywords)
	}

	return ks
}

// Empty reports whether the set imposes no constraint.
func (ks *KeywordSet) Empty() bool {
	return ks == nil || len(ks.keywords) == 0
}

// Keywords returns the normalized keywords.
func (ks *KeywordSet) Keywords() []string {
	if ks == nil {
		return nil
	}
	return append([]string(nil), ks.keywords...)
}

// MatchLower reports whether the already lowercased text contains any keyword.
func (ks *KeywordSet) MatchLower(text string) bool {
	if ks.Empty() {
		return true
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	return len(ks.matcher.Match([]byte(text))) > 0
}

// Matches reports whether the job contains at least one domain keyword and at
// least one role keyword. An empty list imposes no constraint.
func Matches(job jobs.Job, domainKeywords, roleKeywords []string) bool {
	return matchSets(job, NewKeywordSet(domainKeywords), NewKeywordSet(roleKeywords))
}

func matchSets(job jobs.Job, domain, role *KeywordSet) bool {
	text := job.SearchText()
	return domain.MatchLower(text) && role.MatchLower(text)
}

type keywordsFilter struct {
	domain *KeywordSet
	role   *KeywordSet

	disabled bool
	reason   string
}

// NewKeywords creates the two-layer domain and role keyword filter.
func NewKeywords() Filter {
	return &keywordsFilter{}
}

func (f *keywordsFilter) Name() string { return "keywords" }

func (f *keywordsFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *keywordsFilter) IsEnabled() bool { return !f.disabled }

func (f *keywordsFilter) Validate(cfg *Config) error {
	var domain, role []string
	if cfg != nil {
		domain, role = cfg.DomainKeywords, cfg.RoleKeywords
	}
	f.domain = NewKeywordSet(domain)
	f.role = NewKeywordSet(role)
	return nil
}

func (f *keywordsFilter) Apply(_ context.Context, _ Deps, j *jobs.Jobs) (*jobs.Jobs, Step, error) {
	next := j.Filter(func(job jobs.Job) bool {
		return matchSets(job, f.domain, f.role)
	})
	return next, stepFor(j, next), nil
}

func (f *keywordsFilter) Status() Status {
	details := map[string]string{
		"domain": strings.Join(f.domain.Keywords(), ","),
		"role":   strings.Join(f.role.Keywords(), ","),
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
