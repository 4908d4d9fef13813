// Package remoteok reads the RemoteOK JSON API once per configured tag.
package remoteok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/jobs"
	"github.com/spigell/web3-jobs/internal/sources"
	"github.com/spigell/web3-jobs/internal/transport"
)

const (
	Name    = "remoteok"
	BaseURL = "https://remoteok.com/api"
)

// DefaultTags are queried when no tags are configured.
var DefaultTags = []string{"web3", "crypto", "blockchain", "defi", "nft", "dao"}

type Adapter struct {
	client *transport.Client
	logger *zap.Logger
	tags   []string

	BaseURL string
}

func New(client *transport.Client, logger *zap.Logger, tags []string) *Adapter {
	if len(tags) == 0 {
		tags = DefaultTags
	}
	return &Adapter{client: client, logger: logger, tags: tags, BaseURL: BaseURL}
}

func (a *Adapter) Name() string { return Name }

// Fetch queries the tags in order until budget records are collected. A
// failing tag is logged and skipped; records already seen under an earlier
// tag are dropped.
func (a *Adapter) Fetch(ctx context.Context, budget int) sources.Result {
	seen := make(map[string]bool)

	var (
		collected []jobs.Job
		errs      []error
	)

	for _, tag := range a.tags {
		if budget > 0 && len(collected) >= budget {
			break
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		postings, err := a.fetchTag(ctx, tag)
		if err != nil {
			a.logger.Warn("remoteok tag failed", zap.String("tag", tag), zap.Error(err))
			errs = append(errs, fmt.Errorf("tag %s: %w", tag, err))
			continue
		}

		for _, p := range postings {
			id := strings.TrimSpace(string(p.ID))
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true

			collected = append(collected, p.job(id))
			if budget > 0 && len(collected) >= budget {
				break
			}
		}
	}

	return sources.Finish(a.logger, Name, collected, budget, errors.Join(errs...))
}

func (a *Adapter) fetchTag(ctx context.Context, tag string) ([]posting, error) {
	body, err := a.client.Get(ctx, a.BaseURL+"?tag="+url.QueryEscape(tag), map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, err
	}

	// The payload is an array whose first element is a legal notice; entries
	// that are not job objects decode with an empty id and are skipped.
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	postings := make([]posting, 0, len(raw))
	for _, item := range raw {
		if !bytes.HasPrefix(bytes.TrimSpace(item), []byte("{")) {
			continue
		}
		var p posting
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		postings = append(postings, p)
	}

	return postings, nil
}

type posting struct {
	ID          flexString `json:"id"`
	Position    string     `json:"position"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	ApplyURL    string     `json:"apply_url"`
	URL         string     `json:"url"`
	Date        string     `json:"date"`
	Epoch       flexString `json:"epoch"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
}

func (p posting) job(id string) jobs.Job {
	location := sources.FirstNonEmpty(strings.TrimSpace(p.Location), "Remote")

	postedAt := sources.ParseDate(p.Date)
	if postedAt == nil {
		if epoch, err := strconv.ParseFloat(string(p.Epoch), 64); err == nil {
			postedAt = sources.FromEpoch(epoch)
		}
	}

	return jobs.Job{
		Source:      Name,
		ExternalID:  id,
		Title:       p.Position,
		Company:     p.Company,
		Location:    location,
		Remote:      sources.InferRemote(location),
		URL:         sources.FirstNonEmpty(p.ApplyURL, p.URL),
		PostedAt:    postedAt,
		Description: p.Description,
		Tags:        sources.CompactTags(p.Tags),
	}
}

// flexString accepts both JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}
