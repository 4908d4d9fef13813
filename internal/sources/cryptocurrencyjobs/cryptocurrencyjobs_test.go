package cryptocurrencyjobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/sources/sourcestest"
)

func TestFetchCards(t *testing.T) {
	srv := sourcestest.Serve(t, map[string]sourcestest.Page{
		"/remote": {Body: `<section>
<a class="card" href="/engineering/uniswap-frontend-engineer/">
  <h2>Frontend Engineer</h2>
  <p class="company">Uniswap Labs</p>
  <span class="tag location">Remote - US</span>
  <span class="tag">React</span>
</a>
<a class="card">
  <h3>Token Economist</h3>
  <p>Some Foundation</p>
  <span class="location">Zug, Switzerland</span>
</a>
</section>`},
	})

	a := New(sourcestest.Client(t), zap.NewNop())
	a.BaseURL = srv.URL + "/remote"

	res := a.Fetch(context.Background(), 10)
	require.NoError(t, res.Err)
	require.Len(t, res.Jobs, 2)

	first := res.Jobs[0]
	assert.Equal(t, srv.URL+"/engineering/uniswap-frontend-engineer/", first.ExternalID)
	assert.Equal(t, "Frontend Engineer", first.Title)
	assert.Equal(t, "Uniswap Labs", first.Company)
	assert.Equal(t, "Remote - US", first.Location)
	assert.True(t, first.Remote)
	assert.Equal(t, []string{"Remote - US", "React"}, first.Tags)

	second := res.Jobs[1]
	assert.Equal(t, "Token Economist", second.ExternalID)
	assert.Equal(t, "", second.URL)
	assert.Equal(t, "Some Foundation", second.Company)
	assert.False(t, second.Remote)
}

func TestFetchFallsBackToArticles(t *testing.T) {
	srv := sourcestest.Serve(t, map[string]sourcestest.Page{
		"/remote": {Body: `<article><div>Untitled posting with a long body of text that goes on and on beyond sixty four characters</div></article>`},
	})

	a := New(sourcestest.Client(t), zap.NewNop())
	a.BaseURL = srv.URL + "/remote"

	res := a.Fetch(context.Background(), 10)
	require.NoError(t, res.Err)
	require.Len(t, res.Jobs, 1)
	assert.Len(t, []rune(res.Jobs[0].ExternalID), 64)
	assert.Equal(t, "Remote", res.Jobs[0].Location)
}
