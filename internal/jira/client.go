// Package jira exports user stories to a Jira Cloud instance. The call
// is synchronous, bounded by the client's own timeout, and entirely
// optional: an unconfigured client is simply not wired in.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	storydomain "agile-board-go/internal/domain/story"
)

const issuePath = "/rest/api/3/issue"

type Config struct {
	BaseURL           string
	UserEmail         string
	APIToken          string
	ProjectKey        string
	IssueTypeName     string
	StoryPointsField  string
	Timeout           time.Duration
}

func (c Config) Enabled() bool {
	return c.BaseURL != "" && c.UserEmail != "" && c.APIToken != "" && c.ProjectKey != ""
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.IssueTypeName == "" {
		cfg.IssueTypeName = "Story"
	}
	if cfg.StoryPointsField == "" {
		cfg.StoryPointsField = "customfield_10016"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: &http.Client{Timeout: timeout}}
}

type issueResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// ExportStory creates a Jira issue from the story and returns its
// reference. Implements the story service's TrackerExporter.
func (c *Client) ExportStory(ctx context.Context, s *storydomain.UserStory) (*storydomain.ExportResult, error) {
	payload := c.buildPayload(s)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+issuePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.UserEmail, c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("jira api status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var issue issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return nil, fmt.Errorf("jira response: %w", err)
	}

	result := &storydomain.ExportResult{
		IssueID:  issue.ID,
		IssueKey: issue.Key,
		SelfURL:  issue.Self,
	}
	if issue.Key != "" {
		result.BrowseURL = c.cfg.BaseURL + "/browse/" + issue.Key
	}
	return result, nil
}

func (c *Client) buildPayload(s *storydomain.UserStory) map[string]any {
	fields := map[string]any{
		"project":   map[string]string{"key": c.cfg.ProjectKey},
		"issuetype": map[string]string{"name": c.cfg.IssueTypeName},
		"summary":   s.Title,
	}

	description := s.Description
	if s.AcceptanceCriteria != "" {
		description += "\n\nAcceptance criteria:\n" + s.AcceptanceCriteria
	}
	if description != "" {
		// Jira Cloud v3 wants the Atlassian document format.
		fields["description"] = map[string]any{
			"type":    "doc",
			"version": 1,
			"content": []any{
				map[string]any{
					"type": "paragraph",
					"content": []any{
						map[string]any{"type": "text", "text": description},
					},
				},
			},
		}
	}
	if s.StoryPoints != nil {
		fields[c.cfg.StoryPointsField] = *s.StoryPoints
	}

	return map[string]any{"fields": fields}
}
