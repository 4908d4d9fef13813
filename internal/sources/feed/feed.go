// Package feed turns RSS and Atom job feeds into job records.
package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/sources"
	"github.com/spigell/web3-jobs/internal/transport"
)

// Config names a feed. Name becomes the source of every record it yields.
type Config struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type Adapter struct {
	client *transport.Client
	logger *zap.Logger
	cfg    Config
}

func New(client *transport.Client, logger *zap.Logger, cfg Config) *Adapter {
	return &Adapter{client: client, logger: logger, cfg: cfg}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) Fetch(ctx context.Context, budget int) sources.Result {
	body, err := a.client.Get(ctx, a.cfg.URL, map[string]string{
		"Accept": "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8",
	})
	if err != nil {
		return sources.Finish(a.logger, a.cfg.Name, nil, budget, err)
	}

	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return sources.Finish(a.logger, a.cfg.Name, nil, budget, fmt.Errorf("parse feed: %w", err))
	}

	origin := sources.Origin(a.cfg.URL)

	collected := make([]jobs.Job, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		job, ok := a.toJob(item, origin)
		if !ok {
			continue
		}
		collected = append(collected, job)
		if len(collected) >= budget {
			break
		}
	}

	return sources.Finish(a.logger, a.cfg.Name, collected, budget, nil)
}

func (a *Adapter) toJob(item *gofeed.Item, origin string) (jobs.Job, bool) {
	link := sources.AbsURL(origin, extractLink(item))
	title := sources.CleanText(item.Title)
	if link == "" && title == "" {
		return jobs.Job{}, false
	}

	description := stripHTML(sources.FirstNonEmpty(item.Description, item.Content))

	var company string
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		company = sources.CleanText(item.Authors[0].Name)
	}

	postedAt := item.PublishedParsed
	if postedAt == nil {
		postedAt = item.UpdatedParsed
	}
	if postedAt != nil {
		utc := postedAt.UTC()
		postedAt = &utc
	}

	location := "Remote"

	return jobs.Job{
		Source:      a.cfg.Name,
		ExternalID:  sources.FirstNonEmpty(strings.TrimSpace(item.GUID), link, title),
		Title:       title,
		Company:     company,
		Location:    location,
		Remote:      sources.InferRemote(location),
		URL:         link,
		PostedAt:    postedAt,
		Description: description,
		Tags:        sources.CompactTags(item.Categories),
	}, true
}

// extractLink prefers the explicit link and falls back to a GUID that looks
// like a URL.
func extractLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if strings.HasPrefix(item.GUID, "http") {
		return item.GUID
	}
	return ""
}

func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return sources.CleanText(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return sources.CleanText(s)
	}
	return sources.CleanText(doc.Text())
}
