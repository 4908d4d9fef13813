// Package cake scrapes the Web3 category of cake.me, once per location.
package cake

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/sources"
	"github.com/spigell/web3-jobs/internal/transport"
)

const (
	Name    = "cake_web3"
	BaseURL = "https://www.cake.me/jobs/Web3"
)

// DefaultLocations is used when no locations are configured.
var DefaultLocations = []string{"Hong Kong S.A.R"}

type Adapter struct {
	client    *transport.Client
	logger    *zap.Logger
	locations []string

	BaseURL string
}

func New(client *transport.Client, logger *zap.Logger, locations []string) *Adapter {
	if len(locations) == 0 {
		locations = DefaultLocations
	}
	return &Adapter{client: client, logger: logger, locations: locations, BaseURL: BaseURL}
}

func (a *Adapter) Name() string { return Name }

// Fetch walks the locations in order until the budget is met. Each posting is
// tagged with the location it was found under.
func (a *Adapter) Fetch(ctx context.Context, budget int) sources.Result {
	origin := sources.Origin(a.BaseURL)

	var (
		collected []jobs.Job
		errs      []error
	)

	for _, loc := range a.locations {
		if len(collected) >= budget {
			break
		}

		pageURL := a.BaseURL + "?locations%5B0%5D=" + url.QueryEscape(loc)
		doc, err := sources.Document(ctx, a.client, pageURL)
		if err != nil {
			a.logger.Warn("cake location failed", zap.String("location", loc), zap.Error(err))
			errs = append(errs, fmt.Errorf("location %s: %w", loc, err))
			continue
		}

		listing := sources.LinkListing{
			Source:     Name,
			Origin:     origin,
			Selector:   "a[href*='/jobs/']",
			PathPart:   "/jobs/",
			Location:   loc,
			Tags:       []string{"web3", loc},
			ParentText: true,
		}
		collected = append(collected, listing.Extract(doc, budget-len(collected))...)
	}

	return sources.Finish(a.logger, Name, collected, budget, errors.Join(errs...))
}
