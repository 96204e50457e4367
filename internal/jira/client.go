// Package jira resolves issue keys against the Jira Cloud REST API.
package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ayoisaiah/worklog/internal/ports"
)

// Client implements ports.IssueLookup.
type Client struct {
	http     *http.Client
	log      *slog.Logger
	baseURL  string
	email    string
	apiToken string
}

func NewClient(baseURL, email, apiToken string, log *slog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		email:    email,
		apiToken: apiToken,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

type rawIssue struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Lookup fetches the issue id for key.
// GET /rest/api/3/issue/{key}?fields=id
func (c *Client) Lookup(ctx context.Context, key string) (ports.Issue, error) {
	if c.apiToken == "" {
		return ports.Issue{}, errors.New("jira: missing api token")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ports.Issue{}, err
	}

	u = u.JoinPath("rest", "api", "3", "issue", key)

	q := u.Query()
	q.Set("fields", "id")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return ports.Issue{}, err
	}

	auth := base64.StdEncoding.EncodeToString(
		[]byte(fmt.Sprintf("%s:%s", c.email, c.apiToken)),
	)
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ports.Issue{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ports.Issue{}, fmt.Errorf("jira: %s: %w", key, ports.ErrIssueNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ports.Issue{}, fmt.Errorf(
			"jira: unexpected status %d: %s",
			resp.StatusCode,
			string(body),
		)
	}

	var raw rawIssue
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return ports.Issue{}, fmt.Errorf("jira: decoding issue: %w", err)
	}

	if raw.ID == "" {
		return ports.Issue{}, fmt.Errorf("jira: issue %s has no id", key)
	}

	c.log.Debug("resolved issue", slog.String("key", key), slog.String("id", raw.ID))

	return ports.Issue{Key: key, ID: raw.ID}, nil
}

// Offline resolves every key to itself. It is used when no Jira credentials
// are configured.
type Offline struct{}

func (Offline) Lookup(_ context.Context, key string) (ports.Issue, error) {
	return ports.Issue{Key: key, ID: key}, nil
}
