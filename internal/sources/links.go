package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/web3-jobs/internal/jobs"
)

// LinkListing extracts jobs from boards that render postings as plain anchors.
// The anchor text is the title and the link is the identity.
type LinkListing struct {
	Source string
	Origin string
	// Selector picks candidate anchors; PathPart must appear in their href.
	Selector string
	PathPart string
	// TitleSelector, when set and present inside the anchor, supplies the title.
	TitleSelector string
	Location string
	Tags     []string
	// ParentText uses the anchor's parent text as the description instead of
	// the anchor text.
	ParentText bool
}

// Extract walks the document and returns at most budget unique postings.
func (l LinkListing) Extract(doc *goquery.Document, budget int) []jobs.Job {
	location := FirstNonEmpty(l.Location, "Remote")
	seen := map[string]bool{}

	var out []jobs.Job
	doc.Find(l.Selector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.Contains(href, l.PathPart) {
			return true
		}

		href = AbsURL(l.Origin, href)
		if seen[href] {
			return true
		}
		seen[href] = true

		text := CleanText(a.Text())
		title := text
		if l.TitleSelector != "" {
			title = FirstNonEmpty(Text(a, l.TitleSelector), text)
		}
		if title == "" {
			return true
		}

		description := text
		if l.ParentText {
			if parent := a.Parent(); parent.Length() > 0 {
				description = FirstNonEmpty(CleanText(parent.Text()), text)
			}
		}

		out = append(out, jobs.Job{
			Source:      l.Source,
			ExternalID:  href,
			Title:       title,
			Location:    location,
			Remote:      l.Location == "" || InferRemote(location),
			URL:         href,
			Description: description,
			Tags:        append([]string{}, l.Tags...),
		})

		return budget <= 0 || len(out) < budget
	})

	return out
}
