// Package sync backs the app state up to Drive and mirrors finished
// entries to a calendar.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/timekeeper/internal/config"
	"github.com/sadopc/timekeeper/internal/credential"
)

var (
	// ErrNotAuthenticated means there is no usable token.
	ErrNotAuthenticated = errors.New("not signed in to Google")
	// ErrNoBackup means the backup file does not exist yet.
	ErrNoBackup = errors.New("no backup found")
)

// Calendar is a calendar list entry.
type Calendar struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

// EventTime is a calendar event boundary.
type EventTime struct {
	DateTime string `json:"dateTime"`
}

// CalendarEvent is the event body posted for a finished entry.
type CalendarEvent struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
}

// Remote is the subset of Drive and Calendar the app uses.
type Remote interface {
	Authenticated() bool
	UploadBackup(ctx context.Context, name string, data []byte) error
	DownloadBackup(ctx context.Context, name string) ([]byte, error)
	ListCalendars(ctx context.Context) ([]Calendar, error)
	CreateCalendar(ctx context.Context, summary string) (Calendar, error)
	InsertEvent(ctx context.Context, calendarID string, ev CalendarEvent) error
}

type driveFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the Google REST APIs with a Bearer token. Rate-limited
// requests are retried with backoff.
type Client struct {
	driveURL    string
	uploadURL   string
	calendarURL string
	token       func() (string, error)
	httpClient  *http.Client
	maxRetries  int
}

// NewClient creates a client for the endpoints in cfg. token is called
// before every request.
func NewClient(cfg config.SyncConfig, token func() (string, error)) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		driveURL:    strings.TrimRight(cfg.DriveBaseURL, "/"),
		uploadURL:   strings.TrimRight(cfg.UploadBaseURL, "/"),
		calendarURL: strings.TrimRight(cfg.CalendarBaseURL, "/"),
		token:       token,
		httpClient:  &http.Client{Timeout: timeout},
		maxRetries:  3,
	}
}

// Authenticated reports whether a token is available.
func (c *Client) Authenticated() bool {
	_, err := c.bearer()
	return err == nil
}

func (c *Client) bearer() (string, error) {
	if c.token == nil {
		return "", ErrNotAuthenticated
	}
	tok, err := c.token()
	if errors.Is(err, credential.ErrNotFound) || (err == nil && tok == "") {
		return "", ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return tok, nil
}

// findBackup returns the id of the named file in the app data folder, or
// "" if there is none.
func (c *Client) findBackup(ctx context.Context, name string) (string, error) {
	q := url.Values{}
	q.Set("spaces", "appDataFolder")
	q.Set("fields", "files(id, name)")
	q.Set("pageSize", "10")

	var list struct {
		Files []driveFile `json:"files"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.driveURL+"/files?"+q.Encode(), nil, &list); err != nil {
		return "", fmt.Errorf("listing app data: %w", err)
	}
	for _, f := range list.Files {
		if f.Name == name {
			return f.ID, nil
		}
	}
	return "", nil
}

// UploadBackup creates or overwrites the named file in the app data folder.
func (c *Client) UploadBackup(ctx context.Context, name string, data []byte) error {
	id, err := c.findBackup(ctx, name)
	if err != nil {
		return err
	}

	meta := map[string]any{"name": name, "mimeType": "application/json"}
	method, target := http.MethodPost, c.uploadURL+"/files?uploadType=multipart"
	if id == "" {
		meta["parents"] = []string{"appDataFolder"}
	} else {
		method, target = http.MethodPatch, c.uploadURL+"/files/"+url.PathEscape(id)+"?uploadType=multipart"
	}

	body, contentType, err := multipartBody(meta, data)
	if err != nil {
		return err
	}
	if _, err := c.do(ctx, method, target, contentType, body); err != nil {
		return fmt.Errorf("uploading backup: %w", err)
	}
	return nil
}

// DownloadBackup fetches the named file. It returns ErrNoBackup if the file
// does not exist.
func (c *Client) DownloadBackup(ctx context.Context, name string) ([]byte, error) {
	id, err := c.findBackup(ctx, name)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrNoBackup
	}
	data, err := c.do(ctx, http.MethodGet, c.driveURL+"/files/"+url.PathEscape(id)+"?alt=media", "", nil)
	if err != nil {
		return nil, fmt.Errorf("downloading backup: %w", err)
	}
	return data, nil
}

// ListCalendars returns the user's calendar list.
func (c *Client) ListCalendars(ctx context.Context) ([]Calendar, error) {
	var list struct {
		Items []Calendar `json:"items"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.calendarURL+"/users/me/calendarList", nil, &list); err != nil {
		return nil, fmt.Errorf("listing calendars: %w", err)
	}
	return list.Items, nil
}

// CreateCalendar inserts a calendar with the given name.
func (c *Client) CreateCalendar(ctx context.Context, summary string) (Calendar, error) {
	var cal Calendar
	if err := c.doJSON(ctx, http.MethodPost, c.calendarURL+"/calendars", Calendar{Summary: summary}, &cal); err != nil {
		return Calendar{}, fmt.Errorf("creating calendar: %w", err)
	}
	return cal, nil
}

// InsertEvent adds ev to the calendar.
func (c *Client) InsertEvent(ctx context.Context, calendarID string, ev CalendarEvent) error {
	target := c.calendarURL + "/calendars/" + url.PathEscape(calendarID) + "/events"
	if err := c.doJSON(ctx, http.MethodPost, target, ev, nil); err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func multipartBody(meta any, content []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "application/json; charset=UTF-8")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if err := json.NewEncoder(part).Encode(meta); err != nil {
		return nil, "", fmt.Errorf("encoding metadata: %w", err)
	}

	header = textproto.MIMEHeader{}
	header.Set("Content-Type", "application/json")
	part, err = w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "multipart/related; boundary=" + w.Boundary(), nil
}

func (c *Client) doJSON(ctx context.Context, method, target string, body, result any) error {
	var data []byte
	contentType := ""
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, target, contentType, data)
	if err != nil {
		return err
	}
	if result == nil || len(resp) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, target, err)
	}
	return nil
}

// do sends the request and returns the response body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, target, contentType string, body []byte) ([]byte, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request %s %s: %w", method, target, err)
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("reading response body: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (429) on %s %s", method, target)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryAfterDuration(resp, attempt)):
				continue
			}
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: token rejected (401)", ErrNotAuthenticated)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			var apiErr apiError
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
				return nil, fmt.Errorf("google API error (%d) on %s %s: %s",
					resp.StatusCode, method, target, apiErr.Error.Message)
			}
			return nil, fmt.Errorf("unexpected status %d on %s %s: %s",
				resp.StatusCode, method, target, string(respBody))
		}
		return respBody, nil
	}
	return nil, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// retryAfterDuration honours Retry-After, falling back to exponential
// backoff capped at 30s.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
