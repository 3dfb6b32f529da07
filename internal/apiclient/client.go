// Package apiclient talks to a running habitflow server.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/brk3/habitflow/internal/server"
	"github.com/brk3/habitflow/pkg/habit"
	"github.com/brk3/habitflow/pkg/versioninfo"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) Version(ctx context.Context) (*versioninfo.VersionInfo, error) {
	var out versioninfo.VersionInfo
	if err := c.get(ctx, "/version", &out); err != nil {
		return nil, fmt.Errorf("server version: %w", err)
	}
	return &out, nil
}

func (c *Client) Habits(ctx context.Context) ([]habit.Habit, error) {
	var out server.HabitListResponse
	if err := c.get(ctx, "/habits", &out); err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return out.Habits, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		var e server.ErrorResponse
		if json.NewDecoder(res.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("%s: %s", res.Status, e.Error)
		}
		return fmt.Errorf("%s", res.Status)
	}
	return json.NewDecoder(res.Body).Decode(v)
}
