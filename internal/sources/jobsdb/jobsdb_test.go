package jobsdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/sources/sourcestest"
)

const firstPage = `<section>
<article>
  <a data-automation="jobTitle" href="/job/7001">Blockchain Developer</a>
  <a data-automation="jobCompany">HashKey</a>
  <span data-automation="jobLocation">Central and Western District</span>
  <span data-automation="jobListingDate">2024-03-05</span>
  <div data-automation="jobShortDescription">Build the exchange matching engine.</div>
</article>
<article>
  <a href="/job/7002">Compliance Officer</a>
  <span class="job-date">05 Mar 2024</span>
</article>
</section>`

func TestFetchPaginatesUntilNotFound(t *testing.T) {
	srv := sourcestest.Serve(t, map[string]sourcestest.Page{
		"/zh/web3-jobs":        {Body: firstPage},
		"/zh/web3-jobs?page=2": {Body: `<article><a href="/job/7003">Risk Analyst</a></article>`},
	})

	a := New(sourcestest.Client(t), zap.NewNop())
	a.BaseURL = srv.URL + "/zh/web3-jobs"

	res := a.Fetch(context.Background(), 50)
	require.NoError(t, res.Err)
	require.Len(t, res.Jobs, 3)

	first := res.Jobs[0]
	assert.Equal(t, srv.URL+"/job/7001", first.ExternalID)
	assert.Equal(t, "Blockchain Developer", first.Title)
	assert.Equal(t, "HashKey", first.Company)
	assert.Equal(t, "Central and Western District", first.Location)
	assert.Equal(t, "Build the exchange matching engine.", first.Description)
	assert.Equal(t, []string{"web3"}, first.Tags)
	require.NotNil(t, first.PostedAt)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *first.PostedAt)

	second := res.Jobs[1]
	assert.Equal(t, "Hong Kong", second.Location)
	assert.False(t, second.Remote)
	require.NotNil(t, second.PostedAt)
	assert.Equal(t, time.March, second.PostedAt.Month())

	assert.Equal(t, "Risk Analyst", res.Jobs[2].Title)
}

func TestFetchStopsAtBudget(t *testing.T) {
	srv := sourcestest.Serve(t, map[string]sourcestest.Page{
		"/zh/web3-jobs": {Body: firstPage},
	})

	a := New(sourcestest.Client(t), zap.NewNop())
	a.BaseURL = srv.URL + "/zh/web3-jobs"

	res := a.Fetch(context.Background(), 2)
	require.NoError(t, res.Err)
	assert.Len(t, res.Jobs, 2)
}

func TestFetchSurfacesServerError(t *testing.T) {
	srv := sourcestest.Serve(t, map[string]sourcestest.Page{
		"/zh/web3-jobs": {Status: 503},
	})

	a := New(sourcestest.Client(t), zap.NewNop())
	a.BaseURL = srv.URL + "/zh/web3-jobs"

	res := a.Fetch(context.Background(), 2)
	require.Error(t, res.Err)
	assert.Empty(t, res.Jobs)
}

func TestFetchReportsMissingFirstPage(t *testing.T) {
	srv := sourcestest.Serve(t, map[string]sourcestest.Page{})

	a := New(sourcestest.Client(t), zap.NewNop())
	a.BaseURL = srv.URL + "/zh/web3-jobs"

	res := a.Fetch(context.Background(), 10)
	require.Error(t, res.Err)
	assert.True(t, res.Failed())
	assert.Empty(t, res.Jobs)
}
