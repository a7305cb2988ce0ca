package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"blah/internal/domain/types"
	"blah/internal/envelope"
)

// StatusError is a non-2xx response from the relay.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Msg    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay %s %s: %d %s", e.Method, e.URL, e.Code, e.Msg)
}

// Client talks to a relay server.
type Client struct {
	Base string
	HTTP *http.Client
}

// NewClient returns a client for the relay at base, e.g.
// http://127.0.0.1:8080.
func NewClient(base string) *Client {
	return &Client{Base: strings.TrimSuffix(base, "/"), HTTP: http.DefaultClient}
}

// Submit posts an encoded envelope.
func (c *Client) Submit(ctx context.Context, data []byte) (Receipt, error) {
	var out Receipt
	err := c.do(ctx, http.MethodPost, "/envelopes", bytes.NewReader(data), &out)
	return out, err
}

// Rooms lists the relay's rooms.
func (c *Client) Rooms(ctx context.Context) ([]types.Room, error) {
	var out []types.Room
	return out, c.do(ctx, http.MethodGet, "/rooms", nil, &out)
}

// Members returns the roster of room rid.
func (c *Client) Members(ctx context.Context, rid uuid.UUID) (types.RoomMemberList, error) {
	var out types.RoomMemberList
	return out, c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(rid.String())+"/members", nil, &out)
}

// Items returns up to limit archived envelopes of room rid, oldest
// first. A limit of zero returns all of them. Envelopes are decoded but
// not verified.
func (c *Client) Items(ctx context.Context, rid uuid.UUID, limit int) ([]envelope.Envelope[types.Payload], error) {
	path := "/rooms/" + url.PathEscape(rid.String()) + "/items"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	envs := make([]envelope.Envelope[types.Payload], 0, len(raw))
	for _, data := range raw {
		env, err := envelope.Decode(data)
		if err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}
	return envs, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	u := c.Base + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e errorBody
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		return &StatusError{Method: method, URL: u, Code: resp.StatusCode, Msg: e.Error}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
