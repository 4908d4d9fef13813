package ai

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/spigell/web3-jobs/internal/jobs"
)

//go:embed prompt.md
var promptTemplate string

// BuildPrompt embeds the profile and a summary of the job into the template.
func BuildPrompt(profile string, job jobs.Job) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{PROFILE}}", strings.TrimSpace(profile))
	return strings.ReplaceAll(prompt, "{{JOB}}", JobSummary(job))
}

// JobSummary renders the fields the model sees for a job.
func JobSummary(job jobs.Job) string {
	remote := "No"
	if job.Remote {
		remote = "Yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", job.Title)
	fmt.Fprintf(&b, "Company: %s\n", job.Company)
	fmt.Fprintf(&b, "Location: %s\n", job.Location)
	fmt.Fprintf(&b, "Remote: %s\n", remote)
	fmt.Fprintf(&b, "Source: %s\n", job.Source)
	fmt.Fprintf(&b, "URL: %s\n", job.URL)
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(job.Tags, ", "))
	fmt.Fprintf(&b, "Description: %s", job.Description)
	return b.String()
}
