package cake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/web3-jobs/internal/sources/sourcestest"
)

func TestFetchPerLocation(t *testing.T) {
	srv := sourcestest.Serve(t, map[string]sourcestest.Page{
		"/jobs/Web3?locations%5B0%5D=Hong+Kong+S.A.R": {Body: `<div>
<div class="item"><a href="/companies/animoca/jobs/bd-manager">BD Manager</a> Animoca Brands</div>
<div class="item"><a href="/companies/animoca/jobs/bd-manager">BD Manager</a></div>
</div>`},
		"/jobs/Web3?locations%5B0%5D=Remote": {Body: `<div>
<div class="item"><a href="/companies/okx/jobs/sre">SRE</a></div>
</div>`},
	})

	a := New(sourcestest.Client(t), zap.NewNop(), []string{"Hong Kong S.A.R", "Singapore", "Remote"})
	a.BaseURL = srv.URL + "/jobs/Web3"

	res := a.Fetch(context.Background(), 10)
	require.Error(t, res.Err, "singapore page is missing")
	require.Len(t, res.Jobs, 2)

	first := res.Jobs[0]
	assert.Equal(t, srv.URL+"/companies/animoca/jobs/bd-manager", first.ExternalID)
	assert.Equal(t, "Hong Kong S.A.R", first.Location)
	assert.False(t, first.Remote)
	assert.Equal(t, []string{"web3", "Hong Kong S.A.R"}, first.Tags)
	assert.Equal(t, "BD Manager Animoca Brands", first.Description)

	second := res.Jobs[1]
	assert.Equal(t, "Remote", second.Location)
	assert.True(t, second.Remote)
	assert.Equal(t, []string{"web3", "Remote"}, second.Tags)
}

func TestFetchStopsWhenBudgetMet(t *testing.T) {
	srv := sourcestest.Serve(t, map[string]sourcestest.Page{
		"/jobs/Web3?locations%5B0%5D=Taipei": {Body: `<a href="/jobs/1">One</a><a href="/jobs/2">Two</a>`},
	})

	a := New(sourcestest.Client(t), zap.NewNop(), []string{"Taipei", "Unreachable"})
	a.BaseURL = srv.URL + "/jobs/Web3"

	res := a.Fetch(context.Background(), 2)
	require.NoError(t, res.Err)
	assert.Len(t, res.Jobs, 2)
}
