package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/sources/sourcestest"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Web3 Jobs</title>
  <item>
    <title>Staff Protocol Engineer</title>
    <link>https://jobs.example.com/staff-protocol-engineer</link>
    <guid isPermaLink="false">job-1</guid>
    <description><![CDATA[<p>Work on <b>consensus</b>.</p>]]></description>
    <category>rust</category>
    <category>l1</category>
    <pubDate>Fri, 01 Mar 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Growth Lead</title>
    <link>/growth-lead</link>
  </item>
  <item>
    <description>no title, no link</description>
  </item>
</channel>
</rss>`

func TestFetchRSS(t *testing.T) {
	srv := sourcestest.Serve(t, map[string]sourcestest.Page{
		"/feed.xml": {Body: rss},
	})

	a := New(sourcestest.Client(t), zap.NewNop(), Config{Name: "example-feed", URL: srv.URL + "/feed.xml"})
	assert.Equal(t, "example-feed", a.Name())

	res := a.Fetch(context.Background(), 10)
	require.NoError(t, res.Err)
	require.Len(t, res.Jobs, 2)

	first := res.Jobs[0]
	assert.Equal(t, "example-feed", first.Source)
	assert.Equal(t, "job-1", first.ExternalID)
	assert.Equal(t, "https://jobs.example.com/staff-protocol-engineer", first.URL)
	assert.Equal(t, "Work on consensus.", first.Description)
	assert.Equal(t, []string{"rust", "l1"}, first.Tags)
	require.NotNil(t, first.PostedAt)
	assert.Equal(t, 2024, first.PostedAt.Year())

	second := res.Jobs[1]
	assert.Equal(t, srv.URL+"/growth-lead", second.ExternalID)
	assert.True(t, second.Remote)
}

func TestFetchInvalidFeed(t *testing.T) {
	srv := sourcestest.Serve(t, map[string]sourcestest.Page{
		"/feed.xml": {Body: "definitely not a feed"},
	})

	a := New(sourcestest.Client(t), zap.NewNop(), Config{Name: "broken", URL: srv.URL + "/feed.xml"})

	res := a.Fetch(context.Background(), 10)
	require.Error(t, res.Err)
	assert.Equal(t, "broken", res.Source)
}
