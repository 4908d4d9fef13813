package jobs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchTextConcatenatesFields(t *testing.T) {
	job := Job{
		Title:       "Growth Analyst",
		Description: "DeFi protocol",
		Location:    "Remote",
		Tags:        []string{"Web3", "DAO"},
	}

	assert.Equal(t, "growth analyst defi protocol remote web3 dao", job.SearchText())
}

func TestCountBySourceKeepsFirstSeenOrder(t *testing.T) {
	set := &Jobs{Items: []Job{
		{Source: "b", ExternalID: "1"},
		{Source: "a", ExternalID: "1"},
		{Source: "b", ExternalID: "2"},
	}}

	counts := set.CountBySource()
	require.Len(t, counts, 2)
	assert.Equal(t, SourceCount{Source: "b", Count: 2}, counts[0])
	assert.Equal(t, SourceCount{Source: "a", Count: 1}, counts[1])
	assert.Equal(t, "b=2 a=1", FormatCounts(counts))
}

func TestFilterDoesNotTouchOriginal(t *testing.T) {
	set := &Jobs{Items: []Job{
		{Source: "a", ExternalID: "1", Title: "keep"},
		{Source: "a", ExternalID: "2", Title: "drop"},
	}}

	kept := set.Filter(func(j Job) bool { return j.Title == "keep" })

	assert.Equal(t, 1, kept.Len())
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, Key{Source: "a", ExternalID: "2"}, set.Items[1].Key())
	assert.Equal(t, "keep", kept.Items[0].Title)
}

func TestDumpToTmpFile(t *testing.T) {
	set := &Jobs{Items: []Job{{Source: "a", ExternalID: "1", Tags: []string{"x"}}}}

	name, err := set.DumpToTmpFile()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(name) })

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var decoded []Job
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, set.Items, decoded)
}

func TestLoadExcluded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"items":[
		{"source":"remoteok","external_id":"1"},
		{"url":"https://web3.career/job/9"}
	]}`), 0o600))

	excluded, err := LoadExcluded(path)
	require.NoError(t, err)

	assert.True(t, excluded.Contains(Job{Source: "remoteok", ExternalID: "1"}))
	assert.False(t, excluded.Contains(Job{Source: "crypto.jobs", ExternalID: "1"}))
	assert.True(t, excluded.Contains(Job{Source: "web3.career", ExternalID: "9", URL: "https://web3.career/job/9"}))

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	excluded, err = LoadExcluded(empty)
	require.NoError(t, err)
	assert.False(t, excluded.Contains(Job{Source: "remoteok", ExternalID: "1"}))

	_, err = LoadExcluded(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
