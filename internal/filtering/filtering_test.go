package filtering

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/web3-jobs/internal/jobs"
)

func TestMatchesEmptyListsAcceptEverything(t *testing.T) {
	for _, job := range []jobs.Job{
		{},
		{Title: "Growth Analyst"},
		{Title: "Solidity", Tags: []string{"web3"}},
	} {
		assert.True(t, Matches(job, nil, nil))
		assert.True(t, Matches(job, []string{}, []string{" "}))
	}
}

func TestMatchesRequiresBothLayers(t *testing.T) {
	cases := []struct {
		name string
		job  jobs.Job
		want bool
	}{
		{
			name: "both in title",
			job:  jobs.Job{Title: "Web3 Data Analyst"},
			want: true,
		},
		{
			name: "domain in tags role in description",
			job:  jobs.Job{Description: "senior ANALYST role", Tags: []string{"Web3"}},
			want: true,
		},
		{
			name: "domain in location",
			job:  jobs.Job{Title: "Analyst", Location: "web3 remote"},
			want: true,
		},
		{
			name: "role missing",
			job:  jobs.Job{Title: "Web3 Engineer"},
			want: false,
		},
		{
			name: "domain missing",
			job:  jobs.Job{Title: "Analyst"},
			want: false,
		},
		{
			name: "substring counts",
			job:  jobs.Job{Title: "Analysts wanted", Description: "aweb3b"},
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(tc.job, []string{"web3"}, []string{"analyst"}))
		})
	}
}

func TestMatchesGrowthAnalystWithoutDomainKeyword(t *testing.T) {
	job := jobs.Job{Location: "", Title: "Growth Analyst", Tags: []string{}}
	assert.False(t, Matches(job, []string{"web3", "crypto"}, nil))
}

func TestKeywordSetNormalizes(t *testing.T) {
	ks := NewKeywordSet([]string{" DeFi ", "defi", "", "NFT"})
	assert.Equal(t, []string{"defi", "nft"}, ks.Keywords())
	assert.True(t, ks.MatchLower("a defi protocol"))
	assert.False(t, ks.MatchLower("a DeFi protocol"))
	assert.True(t, NewKeywordSet(nil).MatchLower("anything"))
}

func TestRunAppliesStepsInOrder(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	input := &jobs.Jobs{Items: []jobs.Job{
		{Source: "a", ExternalID: "1", Title: "Web3 Analyst", Company: "Acme"},
		{Source: "a", ExternalID: "2", Title: "Web3 Analyst", Company: "Blocked Corp"},
		{Source: "a", ExternalID: "3", Title: "Growth Analyst"},
		{Source: "b", ExternalID: "4", Title: "Crypto Analyst", URL: "https://b.example/4"},
	}}

	excludePath := filepath.Join(t.TempDir(), "exclude.json")
	require.NoError(t, os.WriteFile(excludePath, []byte(`{"items":[{"url":"https://b.example/4"}]}`), 0o600))

	cfg := &Config{
		DomainKeywords:   []string{"web3", "crypto"},
		RoleKeywords:     []string{"analyst"},
		ExcludeCompanies: []string{"blocked corp"},
		ExcludeFile:      excludePath,
	}

	steps := []Filter{NewKeywords(), NewCompanies(), NewExcludeFile()}
	out, err := Run(context.Background(), cfg, Deps{Logger: zap.New(core)}, steps, input)
	require.NoError(t, err)

	require.Equal(t, 1, out.Len())
	assert.Equal(t, "1", out.Items[0].ExternalID)
	assert.Equal(t, 4, input.Len(), "input must not be modified")

	entries := observed.FilterMessage("filter step").All()
	require.Len(t, entries, 3)
	assert.Equal(t, "keywords", entries[0].ContextMap()["name"])
	assert.Equal(t, int64(1), entries[0].ContextMap()["dropped"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["left"])
}

func TestRunSkipsDisabledSteps(t *testing.T) {
	input := &jobs.Jobs{Items: []jobs.Job{{Source: "a", ExternalID: "1", Title: "Chef"}}}

	steps := []Filter{NewKeywords()}
	DisableByName(steps, "keywords", "disabled by flag")

	out, err := Run(context.Background(), &Config{DomainKeywords: []string{"web3"}}, Deps{}, steps, input)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())

	statuses := Describe(steps)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Enabled)
	assert.Equal(t, "disabled by flag", statuses[0].Reason)
}

func TestRunFailsOnUnreadableExcludeFile(t *testing.T) {
	input := &jobs.Jobs{Items: []jobs.Job{{Source: "a", ExternalID: "1"}}}

	_, err := Run(context.Background(), &Config{ExcludeFile: filepath.Join(t.TempDir(), "missing.json")}, Deps{}, []Filter{NewExcludeFile()}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exclude_file")
}

func TestDisabledExcludeFileIsNotRead(t *testing.T) {
	input := &jobs.Jobs{Items: []jobs.Job{{Source: "a", ExternalID: "1", Company: "Acme"}}}

	steps := []Filter{NewCompanies(), NewExcludeFile()}
	DisableByName(steps, "exclude_file", "skipped")
	DisableByName(steps, "companies", "skipped")

	cfg := &Config{
		ExcludeCompanies: []string{"acme"},
		ExcludeFile:      filepath.Join(t.TempDir(), "missing.json"),
	}

	out, err := Run(context.Background(), cfg, Deps{}, steps, input)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestDescribeAfterRunReportsConfiguredKeywords(t *testing.T) {
	cfg := &Config{DomainKeywords: []string{"Web3"}, RoleKeywords: []string{"analyst"}}
	steps := []Filter{NewKeywords(), NewCompanies()}

	before := Describe(steps)
	assert.Empty(t, before[0].Details["domain"])

	_, err := Run(context.Background(), cfg, Deps{}, steps, &jobs.Jobs{})
	require.NoError(t, err)

	after := Describe(steps)
	require.Len(t, after, 2)
	assert.Equal(t, "keywords", after[0].Name)
	assert.Equal(t, "web3", after[0].Details["domain"])
	assert.Equal(t, "analyst", after[0].Details["role"])
}
