// Package activitywatch is a client for the ActivityWatch REST API.
//
// ActivityWatch organizes events into buckets, one per watcher. The buckets
// we care about are named after the machine:
//   - aw-watcher-window_<hostname>  (active application + window title)
//   - aw-watcher-afk_<hostname>     (away-from-keyboard status)
//   - aw-watcher-web-*_<hostname>   (browser tabs, one bucket per browser)
//
// All fetch methods degrade to empty event lists when ActivityWatch is
// unreachable or a bucket is missing, so a companion cycle always gets
// well-formed input.
package activitywatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"
)

// Client talks to a local ActivityWatch server.
type Client struct {
	baseURL    string
	hostname   string
	httpClient *http.Client
}

// NewClient creates a Client for the given server URL (e.g.
// "http://localhost:5600"). An empty hostname defaults to os.Hostname.
func NewClient(serverURL, hostname string) *Client {
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	return &Client{
		baseURL:    strings.TrimRight(serverURL, "/") + "/api/0",
		hostname:   hostname,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// get performs a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/"+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Buckets returns all bucket IDs known to the server.
func (c *Client) Buckets(ctx context.Context) (map[string]json.RawMessage, error) {
	var buckets map[string]json.RawMessage
	if err := c.get(ctx, "buckets", &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// Available reports whether the ActivityWatch server is reachable.
func (c *Client) Available(ctx context.Context) bool {
	_, err := c.Buckets(ctx)
	return err == nil
}

// ConnectionStatus describes the result of a connection self-test.
type ConnectionStatus struct {
	Connected  bool
	HasWindow  bool
	HasAFK     bool
	WebBuckets []string
	Errors     []string
}

// TestConnection checks the server and the presence of the expected buckets.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	var status ConnectionStatus

	buckets, err := c.Buckets(ctx)
	if err != nil {
		status.Errors = append(status.Errors, "cannot connect to ActivityWatch API")
		return status
	}
	status.Connected = true

	windowBucket := c.windowBucket()
	afkBucket := c.afkBucket()

	for id := range buckets {
		switch {
		case id == windowBucket:
			status.HasWindow = true
		case id == afkBucket:
			status.HasAFK = true
		case strings.Contains(id, "web") && strings.Contains(id, c.hostname):
			status.WebBuckets = append(status.WebBuckets, id)
		}
	}
	sort.Strings(status.WebBuckets)

	if !status.HasWindow {
		status.Errors = append(status.Errors, "missing window bucket: "+windowBucket)
	}
	if !status.HasAFK {
		status.Errors = append(status.Errors, "missing afk bucket: "+afkBucket)
	}
	return status
}

// Events fetches the events of one bucket within [start, end], sorted by
// timestamp ascending. A missing bucket or an unreachable server yields an
// empty slice.
func (c *Client) Events(ctx context.Context, bucketID string, start, end time.Time) []Event {
	endpoint := fmt.Sprintf("buckets/%s/events?start=%s&end=%s",
		url.PathEscape(bucketID),
		url.QueryEscape(start.Format(time.RFC3339)),
		url.QueryEscape(end.Format(time.RFC3339)))

	var events []Event
	if err := c.get(ctx, endpoint, &events); err != nil {
		log.Printf("[activitywatch] %s: %v", bucketID, err)
		return nil
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events
}

func (c *Client) windowBucket() string {
	return "aw-watcher-window_" + c.hostname
}

func (c *Client) afkBucket() string {
	return "aw-watcher-afk_" + c.hostname
}

// webBucketCandidates lists bucket names browsers are known to report under.
func (c *Client) webBucketCandidates() []string {
	return []string{
		"aw-watcher-web-chrome_" + c.hostname,
		"aw-watcher-web-firefox_" + c.hostname,
		"aw-watcher-web-edge_" + c.hostname,
		"aw-watcher-web_" + c.hostname,
	}
}

// WindowEvents fetches window events for [start, end].
func (c *Client) WindowEvents(ctx context.Context, start, end time.Time) []Event {
	return c.Events(ctx, c.windowBucket(), start, end)
}

// AFKEvents fetches AFK events for [start, end].
func (c *Client) AFKEvents(ctx context.Context, start, end time.Time) []Event {
	return c.Events(ctx, c.afkBucket(), start, end)
}

// WebEvents fetches browser events for [start, end], merging every web bucket
// that exists on this machine.
func (c *Client) WebEvents(ctx context.Context, start, end time.Time) []Event {
	buckets, err := c.Buckets(ctx)
	if err != nil {
		return nil
	}

	var merged []Event
	for _, candidate := range c.webBucketCandidates() {
		if _, ok := buckets[candidate]; ok {
			merged = append(merged, c.Events(ctx, candidate, start, end)...)
		}
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}

// AllEvents fetches window, web, and AFK events for [start, end].
func (c *Client) AllEvents(ctx context.Context, start, end time.Time) Bundle {
	return Bundle{
		Window: c.WindowEvents(ctx, start, end),
		Web:    c.WebEvents(ctx, start, end),
		AFK:    c.AFKEvents(ctx, start, end),
	}
}

// MultiTimeframe fetches one Bundle per timeframe, all anchored at now.
func (c *Client) MultiTimeframe(ctx context.Context, now time.Time) map[Timeframe]Bundle {
	data := make(map[Timeframe]Bundle, len(Timeframes()))
	for _, tf := range Timeframes() {
		data[tf] = c.AllEvents(ctx, tf.Lookback(now), now)
	}
	return data
}
