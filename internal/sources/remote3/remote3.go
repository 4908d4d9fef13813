// Package remote3 scrapes remote3.co, where each posting card is a single anchor.
package remote3

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/sources"
	"github.com/spigell/web3-jobs/internal/transport"
)

const (
	Name    = "remote3.co"
	BaseURL = "https://remote3.co/remote-jobs"
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

	listing := sources.LinkListing{
		Source:        Name,
		Origin:        sources.Origin(a.BaseURL),
		Selector:      "a[href*='/remote-jobs/']",
		PathPart:      "/remote-jobs/",
		TitleSelector: "h2",
	}

	return sources.Finish(a.logger, Name, listing.Extract(doc, budget), budget, nil)
}
