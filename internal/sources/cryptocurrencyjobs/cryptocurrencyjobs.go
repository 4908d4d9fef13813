// Package cryptocurrencyjobs scrapes the remote section of cryptocurrencyjobs.co.
package cryptocurrencyjobs

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/sources"
	"github.com/spigell/web3-jobs/internal/transport"
)

const (
	Name    = "cryptocurrencyjobs.co"
	BaseURL = "https://cryptocurrencyjobs.co/remote"
)

// idLength bounds the card text used as identity when a card has neither a
// link nor a title.
const idLength = 64

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

	cards := doc.Find("a.card")
	if cards.Length() == 0 {
		cards = doc.Find("article")
	}

	origin := sources.Origin(a.BaseURL)

	var collected []jobs.Job
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		collected = append(collected, parseCard(card, origin))
		return len(collected) < budget
	})

	return sources.Finish(a.logger, Name, collected, budget, nil)
}

func parseCard(card *goquery.Selection, origin string) jobs.Job {
	title := sources.Text(card, "h2", "h3")

	href, ok := card.Attr("href")
	if !ok || href == "" {
		href = card.Find("a").First().AttrOr("href", "")
	}
	href = sources.AbsURL(origin, href)

	text := sources.CleanText(card.Text())

	location := "Remote"
	if node := sources.First(card, ".location", ".tag.location"); node != nil {
		location = sources.CleanText(node.Text())
	}

	return jobs.Job{
		Source:      Name,
		ExternalID:  sources.FirstNonEmpty(href, title, sources.Truncate(text, idLength)),
		Title:       title,
		Company:     sources.Text(card, ".company", "p"),
		Location:    location,
		Remote:      sources.InferRemote(sources.FirstNonEmpty(location, "remote")),
		URL:         href,
		Description: text,
		Tags:        sources.Texts(card, ".tag"),
	}
}
