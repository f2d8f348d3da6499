package pubmed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const esearchBody = `{"esearchresult":{"idlist":["555","333"]}}`

const esummaryBody = `{"result":{
	"uids":["555","333"],
	"555":{"uid":"555","title":"Second ranked paper.","fulljournalname":"Cell","pubdate":"2025 Dec",
		"authors":[{"name":"Doe J"},{"name":"Roe R"}],
		"articleids":[{"idtype":"pubmed","value":"555"},{"idtype":"doi","value":"10.1000/555"}]},
	"333":{"uid":"333","title":"Top ranked paper","fulljournalname":"Nature","pubdate":"2026 Jan",
		"authors":[{"name":"Doe J"}],
		"articleids":[{"idtype":"doi","value":"10.1000/333"}]}
}}`

func newTestServer(t *testing.T, esearchStatus int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/esearch.fcgi":
			if esearchStatus != http.StatusOK {
				w.WriteHeader(esearchStatus)
				return
			}
			w.Write([]byte(esearchBody))
		case "/esummary.fcgi":
			w.Write([]byte(esummaryBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestClientSearchAssemblesRankOrder(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK)
	client := NewClient(
		WithBaseURL(server.URL),
		WithRateLimit(1000, 1000))

	candidates, err := client.SearchByAuthor(context.Background(), "Doe J", 20)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// idlist order, not JSON key order
	assert.Equal(t, "555", candidates[0].PMID)
	assert.Equal(t, "Second ranked paper", candidates[0].Title, "trailing period stripped")
	assert.Equal(t, "Cell", candidates[0].Journal)
	assert.Equal(t, []string{"Doe J", "Roe R"}, candidates[0].Authors)
	assert.Equal(t, "10.1000/555", candidates[0].DOI)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/555/", candidates[0].URL())

	assert.Equal(t, "333", candidates[1].PMID)
	assert.Equal(t, "2026 Jan", candidates[1].Date)
}

func TestClientRetriesServerErrors(t *testing.T) {
	server, calls := newTestServer(t, http.StatusServiceUnavailable)
	client := NewClient(
		WithBaseURL(server.URL),
		WithRateLimit(1000, 1000))

	_, err := client.SearchByAuthor(context.Background(), "Doe J", 20)
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, int32(4), calls.Load(), "initial attempt plus three retries")
}

func TestClientAuthorTermTagging(t *testing.T) {
	var gotTerm string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTerm = r.URL.Query().Get("term")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"esearchresult":{"idlist":[]}}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(WithBaseURL(server.URL), WithRateLimit(1000, 1000))

	_, err := client.SearchByAuthor(context.Background(), "Doe J", 5)
	require.NoError(t, err)
	assert.Equal(t, "Doe J[Author]", gotTerm)

	// Pre-tagged queries pass through untouched
	_, err = client.SearchByAuthor(context.Background(), "Doe J[Author] AND cancer[MeSH]", 5)
	require.NoError(t, err)
	assert.Equal(t, "Doe J[Author] AND cancer[MeSH]", gotTerm)
}
