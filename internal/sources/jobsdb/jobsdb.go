// Package jobsdb scrapes the Web3 listing of JobsDB Hong Kong.
package jobsdb

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/sources"
	"github.com/spigell/web3-jobs/internal/transport"
)

const (
	Name    = "jobsdb_hk"
	BaseURL = "https://hk.jobsdb.com/zh/web3-jobs"

	defaultLocation = "Hong Kong"
	idLength        = 64
)

var dateLayouts = []string{"2 Jan 2006", "02 Jan 2006", "2006-01-02", "2006/01/02"}

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
	origin := sources.Origin(a.BaseURL)

	var (
		collected []jobs.Job
		err       error
	)

	for page := 1; len(collected) < budget; page++ {
		pageURL := a.BaseURL
		if page > 1 {
			pageURL = fmt.Sprintf("%s?page=%d", a.BaseURL, page)
		}

		var doc *goquery.Document
		doc, err = sources.Document(ctx, a.client, pageURL)
		if err != nil {
			if page > 1 && transport.IsStatus(err, http.StatusNotFound) {
				err = nil
			}
			break
		}

		cards := doc.Find("article")
		if cards.Length() == 0 {
			break
		}

		cards.Each(func(_ int, card *goquery.Selection) {
			collected = append(collected, parseCard(card, origin))
		})
	}

	return sources.Finish(a.logger, Name, collected, budget, err)
}

func parseCard(card *goquery.Selection, origin string) jobs.Job {
	var title, link string
	if node := sources.First(card, "a[data-automation='jobTitle']", "a"); node != nil {
		title = sources.CleanText(node.Text())
		link = sources.AbsURL(origin, node.AttrOr("href", ""))
	}

	location := defaultLocation
	if node := sources.First(card, "span[data-automation='jobLocation']"); node != nil {
		location = sources.CleanText(node.Text())
	}

	text := sources.CleanText(card.Text())

	return jobs.Job{
		Source:     Name,
		ExternalID: sources.FirstNonEmpty(link, title, sources.Truncate(text, idLength)),
		Title:      title,
		Company: sources.Text(card,
			"a[data-automation='jobCompany']",
			"span[data-automation='jobCompany']",
		),
		Location: location,
		Remote:   sources.InferRemote(location),
		URL:      link,
		PostedAt: sources.ParseDate(
			sources.Text(card, "span[data-automation='jobListingDate']", "span[class*='job-date']"),
			dateLayouts...,
		),
		Description: sources.FirstNonEmpty(
			sources.Text(card, "div[data-automation='jobShortDescription']", "div"),
			text,
		),
		Tags: []string{"web3"},
	}
}
