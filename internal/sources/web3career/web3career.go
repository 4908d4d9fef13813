// Package web3career scrapes the paginated web3.career listing table.
package web3career

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/sources"
	"github.com/spigell/web3-jobs/internal/transport"
)

const (
	Name    = "web3.career"
	BaseURL = "https://web3.career/web3-jobs"
)

var onclickPath = regexp.MustCompile(`'([^']+)'`)

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
		var doc *goquery.Document
		doc, err = sources.Document(ctx, a.client, fmt.Sprintf("%s?page=%d", a.BaseURL, page))
		if err != nil {
			if page > 1 && transport.IsStatus(err, http.StatusNotFound) {
				err = nil
			}
			break
		}

		rows := doc.Find("tr.table_row")
		if rows.Length() == 0 {
			break
		}

		rows.Each(func(_ int, row *goquery.Selection) {
			collected = append(collected, parseRow(row, origin))
		})
	}

	return sources.Finish(a.logger, Name, collected, budget, err)
}

func parseRow(row *goquery.Selection, origin string) jobs.Job {
	title := sources.Text(row, "h2")

	var href string
	if onclick, ok := row.Attr("onclick"); ok {
		if m := onclickPath.FindStringSubmatch(onclick); m != nil {
			href = m[1]
		}
	}
	if href == "" {
		href, _ = row.Find("a[data-turbo-frame='job']").First().Attr("href")
	}
	href = sources.AbsURL(origin, href)

	jobID, _ := row.Attr("data-jobid")

	location := "Remote"
	if p := row.Find("p").First(); p.Length() > 0 {
		location = sources.FirstNonEmpty(sources.CleanText(p.Text()), location)
	}

	postedAt := sources.ParseDate(row.Find("time").First().AttrOr("datetime", ""))

	return jobs.Job{
		Source:      Name,
		ExternalID:  sources.FirstNonEmpty(jobID, href, title),
		Title:       title,
		Company:     sources.Text(row, "h3"),
		Location:    location,
		Remote:      sources.InferRemote(location),
		URL:         href,
		PostedAt:    postedAt,
		Description: sources.CleanText(row.Text()),
		Tags:        sources.Texts(row, "span.my-badge a"),
	}
}
