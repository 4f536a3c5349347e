// Package client talks to the calendar REST API.  The .json endpoints are
// POSTed to, matching what the browser calendar does; games are fetched
// with GET and attendance is changed with PUT.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/iliyamo/hammers-calendar/internal/config"
	"github.com/iliyamo/hammers-calendar/internal/model"
)

// memoTTL bounds how stale the season list and bootstrap document may be.
// The memo holds two keys and expires them on read, so it runs no janitor.
const memoTTL = 30 * time.Second

// ErrEmptyBody is returned when a 2xx response carries no JSON document.
var ErrEmptyBody = errors.New("calendar api: empty response body")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("calendar api: status %d", e.Code)
	}
	return fmt.Sprintf("calendar api: status %d: %s", e.Code, e.Body)
}

// Client is safe for concurrent use.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
	memo  *cache.Cache
}

// New builds a client for cfg.BaseURL.  hc may be nil, in which case a
// client with cfg.Timeout is used.
func New(cfg config.ClientConfig, hc *http.Client) (*Client, error) {
	raw := cfg.BaseURL
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse base url: unsupported scheme %q", u.Scheme)
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		base:  u,
		token: cfg.Token,
		http:  hc,
		memo:  cache.New(memoTTL, 0),
	}, nil
}

// Base returns the latest season and the signed-in user's name.
func (c *Client) Base(ctx context.Context) (model.Base, error) {
	if v, ok := c.memo.Get("base"); ok {
		return v.(model.Base), nil
	}
	var b model.Base
	if err := c.do(ctx, http.MethodPost, "base.json", &b); err != nil {
		return model.Base{}, err
	}
	c.memo.SetDefault("base", b)
	return b, nil
}

// Seasons returns every season the calendar has games for.
func (c *Client) Seasons(ctx context.Context) ([]model.Season, error) {
	if v, ok := c.memo.Get("seasons"); ok {
		return v.([]model.Season), nil
	}
	var out []model.Season
	if err := c.do(ctx, http.MethodPost, "seasons.json", &out); err != nil {
		return nil, err
	}
	c.memo.SetDefault("seasons", out)
	return out, nil
}

// Games returns the games of a season.  Not memoised: attended flags change.
func (c *Client) Games(ctx context.Context, season int) ([]model.Game, error) {
	var out []model.Game
	if err := c.do(ctx, http.MethodPost, strconv.Itoa(season)+"/games.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Game returns a single game.
func (c *Client) Game(ctx context.Context, id uint64) (*model.Game, error) {
	var g model.Game
	if err := c.do(ctx, http.MethodGet, "game/"+strconv.FormatUint(id, 10), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Update sends PUT {direction}/{id} with no body and returns the game as
// the server now has it.  direction is "attend" or "unattend".  A 2xx reply
// without a body (204 from older servers) means the change was stored, so
// the returned game carries only the id and the attended flag it implies.
func (c *Client) Update(ctx context.Context, direction string, id uint64) (*model.Game, error) {
	var g model.Game
	err := c.do(ctx, http.MethodPut, direction+"/"+strconv.FormatUint(id, 10), &g)
	switch {
	case errors.Is(err, ErrEmptyBody):
		return &model.Game{ID: id, Attended: direction == "attend"}, nil
	case err != nil:
		return nil, err
	}
	return &g, nil
}

// forget drops memoised lookups.
func (c *Client) forget() { c.memo.Flush() }

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	target := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, target.String(), http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The bootstrap document names a user the token no longer proves.
		c.forget()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: errorMessage(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s %s: %w", method, path, ErrEmptyBody)
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage pulls "error" out of the server's JSON error body, falling
// back to the trimmed raw text.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
