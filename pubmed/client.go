// Copyright 2026 Vitae Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// NCBI allows ~3 requests per second without an API key; exceeding it
	// risks throttling or IP-level bans. Burst of 1 keeps calls evenly
	// spaced, two calls per search (esearch + esummary).
	defaultRequestsPerSecond = 3.0
	defaultBurstSize         = 1

	defaultTimeout = 15 * time.Second
)

// Client talks to the PubMed E-utilities JSON API. All calls go through a
// shared token-bucket limiter, so one Client may be used concurrently.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	apiKey  string
}

var _ Searcher = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the E-utilities endpoint, mainly for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.http.SetBaseURL(strings.TrimRight(baseURL, "/"))
	}
}

// WithAPIKey attaches an NCBI API key, which raises the rate ceiling.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
		if key != "" {
			c.limiter.SetLimit(rate.Limit(10.0))
		}
	}
}

// WithRateLimit overrides the request pacing.
func WithRateLimit(requestsPerSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithClientLogger sets a custom logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a PubMed E-utilities client.
func NewClient(opts ...ClientOption) *Client {
	httpClient := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	httpClient.AddRetryCondition(func(resp *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return resp.StatusCode() == 429 || resp.StatusCode() >= 500
	})

	c := &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurstSize),
		logger:  slog.Default().With("component", "pubmed"),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchByAuthor searches PubMed by author and returns up to max candidates.
func (c *Client) SearchByAuthor(ctx context.Context, author string, max int) ([]Candidate, error) {
	term := author
	if !strings.Contains(term, "[") {
		term += "[Author]"
	}
	return c.search(ctx, term, max)
}

// SearchByTitle searches PubMed by article title.
func (c *Client) SearchByTitle(ctx context.Context, title string, max int) ([]Candidate, error) {
	return c.search(ctx, title+"[Title]", max)
}

// search runs esearch then esummary and assembles candidates in rank order.
func (c *Client) search(ctx context.Context, term string, max int) ([]Candidate, error) {
	if max <= 0 {
		max = 20
	}

	ids, err := c.esearch(ctx, term, max)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	summaries, err := c.esummary(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		if candidate, ok := summaries[id]; ok {
			candidates = append(candidates, candidate)
		}
	}
	return candidates, nil
}

// esearchResponse is the subset of the esearch payload we consume.
type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

func (c *Client) esearch(ctx context.Context, term string, max int) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result esearchResponse
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("db", "pubmed").
		SetQueryParam("retmode", "json").
		SetQueryParam("retmax", strconv.Itoa(max)).
		SetQueryParam("sort", "relevance").
		SetQueryParam("term", term).
		SetResult(&result)
	if c.apiKey != "" {
		req.SetQueryParam("api_key", c.apiKey)
	}

	resp, err := req.Get("/esearch.fcgi")
	if err != nil {
		return nil, fmt.Errorf("%w: esearch: %v", ErrRequestFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: esearch: status %d", ErrRequestFailed, resp.StatusCode())
	}

	c.logger.Debug("esearch done", "term", term, "hits", len(result.Result.IDList))
	return result.Result.IDList, nil
}

// esummaryResponse carries docsums keyed by uid, plus a uids list.
// The dynamic keys force a two-stage decode.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type docSummary struct {
	UID             string `json:"uid"`
	Title           string `json:"title"`
	FullJournalName string `json:"fulljournalname"`
	PubDate         string `json:"pubdate"`
	Authors         []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ArticleIDs []struct {
		IDType string `json:"idtype"`
		Value  string `json:"value"`
	} `json:"articleids"`
}

func (c *Client) esummary(ctx context.Context, ids []string) (map[string]Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result esummaryResponse
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("db", "pubmed").
		SetQueryParam("retmode", "json").
		SetQueryParam("id", strings.Join(ids, ",")).
		SetResult(&result)
	if c.apiKey != "" {
		req.SetQueryParam("api_key", c.apiKey)
	}

	resp, err := req.Get("/esummary.fcgi")
	if err != nil {
		return nil, fmt.Errorf("%w: esummary: %v", ErrRequestFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: esummary: status %d", ErrRequestFailed, resp.StatusCode())
	}

	candidates := make(map[string]Candidate, len(ids))
	for uid, raw := range result.Result {
		if uid == "uids" {
			continue
		}
		var doc docSummary
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: docsum %s: %v", ErrBadResponse, uid, err)
		}
		candidates[uid] = docToCandidate(uid, doc)
	}
	return candidates, nil
}

func docToCandidate(uid string, doc docSummary) Candidate {
	candidate := Candidate{
		PMID:    uid,
		Title:   strings.TrimSuffix(doc.Title, "."),
		Journal: doc.FullJournalName,
		Date:    doc.PubDate,
	}
	if doc.UID != "" {
		candidate.PMID = doc.UID
	}
	for _, author := range doc.Authors {
		candidate.Authors = append(candidate.Authors, author.Name)
	}
	for _, id := range doc.ArticleIDs {
		if id.IDType == "doi" {
			candidate.DOI = id.Value
			break
		}
	}
	return candidate
}
