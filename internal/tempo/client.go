// Package tempo books tracked time as Tempo worklogs.
package tempo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ayoisaiah/worklog/tracker"
)

// Client implements ports.Submitter using the Tempo REST API v4.
type Client struct {
	http      *http.Client
	log       *slog.Logger
	baseURL   string
	apiToken  string
	accountID string
}

func NewClient(baseURL, apiToken, accountID string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.tempo.io"
	}

	return &Client{
		baseURL:   baseURL,
		apiToken:  apiToken,
		accountID: accountID,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// rawWorklog mirrors the request body of POST /4/worklogs.
type rawWorklog struct {
	AuthorAccountID  string `json:"authorAccountId"`
	Description      string `json:"description"`
	StartDate        string `json:"startDate"`
	StartTime        string `json:"startTime"`
	IssueID          int64  `json:"issueId"`
	TimeSpentSeconds int64  `json:"timeSpentSeconds"`
}

func (c *Client) worklog(v tracker.View) (rawWorklog, error) {
	issueID, err := strconv.ParseInt(v.ID, 10, 64)
	if err != nil {
		return rawWorklog{}, fmt.Errorf(
			"tempo: %s has no numeric issue id (%q)",
			v.Key,
			v.ID,
		)
	}

	description := v.Description
	if description == "" {
		description = "Working on issue " + v.Key
	}

	start := v.StartTime.Local()

	return rawWorklog{
		AuthorAccountID:  c.accountID,
		Description:      description,
		IssueID:          issueID,
		StartDate:        start.Format(time.DateOnly),
		StartTime:        start.Format(time.TimeOnly),
		TimeSpentSeconds: int64(v.Duration / time.Second),
	}, nil
}

// Submit posts one worklog per tracker with tracked time. It stops at the
// first failure; worklogs posted before it are not rolled back.
func (c *Client) Submit(ctx context.Context, worklogs []tracker.View) error {
	if c.apiToken == "" {
		return errors.New("tempo: missing api token")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}

	u = u.JoinPath("4", "worklogs")

	submitted := 0

	for _, v := range worklogs {
		if v.Duration < time.Second {
			c.log.Debug("skipping empty tracker", slog.String("key", v.Key))
			continue
		}

		raw, err := c.worklog(v)
		if err != nil {
			return err
		}

		if err := c.post(ctx, u.String(), raw); err != nil {
			return fmt.Errorf("tempo: submitting %s: %w", v.Key, err)
		}

		submitted++
	}

	c.log.Info("submitted worklogs", slog.Int("count", submitted))

	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, raw rawWorklog) error {
	body, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint,
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
