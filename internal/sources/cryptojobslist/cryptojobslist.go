// Package cryptojobslist scrapes the job cards on the cryptojobslist.com front page.
package cryptojobslist

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/sources"
	"github.com/spigell/web3-jobs/internal/transport"
)

const (
	Name    = "cryptojobslist"
	BaseURL = "https://cryptojobslist.com/"
)

type Adapter struct {
	client *transport.Client
	logger *zap.Logger

	BaseURL string
}

func New(client *transport.Client, logger *zap.Logger) *Adapter {
	return &Adapter{client: client, logger: logger, BaseURL: BaseURL}
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) Fetch(ctx context.Context, budget int) sources.Result {
	doc, err := sources.Document(ctx, a.client, a.BaseURL)
	if err != nil {
		return sources.Finish(a.logger, Name, nil, budget, err)
	}

	cards := doc.Find("div.job-listing")
	if cards.Length() == 0 {
		cards = doc.Find("div.card-job")
	}

	origin := sources.Origin(a.BaseURL)

	var collected []jobs.Job
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		titleTag := sources.First(card, "h3 a", "a.job-title")

		var title, link string
		if titleTag != nil {
			title = sources.CleanText(titleTag.Text())
			link = sources.AbsURL(origin, titleTag.AttrOr("href", ""))
		}

		location := sources.FirstNonEmpty(sources.Text(card, "span.location"), "Remote")

		collected = append(collected, jobs.Job{
			Source:      Name,
			ExternalID:  sources.FirstNonEmpty(link, title),
			Title:       title,
			Company:     sources.Text(card, "p.company", "a.company"),
			Location:    location,
			Remote:      sources.InferRemote(location),
			URL:         sources.FirstNonEmpty(link, a.BaseURL),
			Description: sources.CleanText(card.Text()),
			Tags:        sources.Texts(card, "span.badge"),
		})

		return len(collected) < budget
	})

	return sources.Finish(a.logger, Name, collected, budget, nil)
}
