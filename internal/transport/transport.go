// Package transport speaks HTTPS and WebSocket against the LCU's
// self-signed endpoint with the fixed "riot:<token>" basic auth scheme.
package transport

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/lolscout/agent/pkg/lcu"
	"go.uber.org/zap"
)

// ErrKind classifies a transport-level failure.
type ErrKind string

const (
	ErrKindTransport ErrKind = "transport"
	ErrKindDecode    ErrKind = "decode"
	ErrKindAuth      ErrKind = "auth"
)

// Error is returned for connect/read/decode failures; HTTP status errors
// use HTTPError instead so callers can branch on status code.
type Error struct {
	Kind ErrKind
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("transport(%s): %v", e.Kind, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// HTTPError represents a non-2xx response. Status 404 on session
// resources is meaningful ("not in that phase"), not an agent error;
// status 401 means the credentials need to be reacquired.
type HTTPError struct {
	Status int
	Path   string
}

func (e *HTTPError) Error() string { return fmt.Sprintf("http %d on %s", e.Status, e.Path) }

// IsNotFound reports whether err is an HTTPError with status 404.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is an HTTPError with status 401.
func IsUnauthorized(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusUnauthorized
}

const getTimeout = 5 * time.Second

// Frame is a decoded [opcode, eventType, payload] event frame.
type Frame struct {
	Opcode    int
	EventType string
	URI       string
	Data      json.RawMessage
	RawKind   string // event's own "eventType" (Create/Update/Delete), not the LCU opcode name
}

// Client owns one LCU session: an HTTP client for request/response calls
// and, once opened, the WebSocket event stream.
type Client struct {
	creds  lcu.Credentials
	log    *zap.Logger
	http   *http.Client
	ws     *websocket.Conn
	closed bool
}

// New builds a Client for creds. TLS verification is disabled only
// because BaseURL() is always loopback (§4.2); this dial never reaches a
// non-loopback host, so certificate pinning would add nothing here.
func New(creds lcu.Credentials, log *zap.Logger) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // loopback-only, self-signed by design (§4.2)
	}
	return &Client{
		creds: creds,
		log:   log,
		http:  &http.Client{Transport: transport, Timeout: getTimeout},
	}
}

func (c *Client) authHeader() string {
	raw := "riot:" + c.creds.AuthToken
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// Get performs an authenticated GET and decodes the JSON body into out.
// A nil out is valid when the caller only cares about the status.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, getTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.creds.BaseURL()+path, nil)
	if err != nil {
		return &Error{Kind: ErrKindTransport, Err: err}
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: ErrKindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return &HTTPError{Status: resp.StatusCode, Path: path}
	}
	if resp.StatusCode >= 400 {
		return &HTTPError{Status: resp.StatusCode, Path: path}
	}
	if out == nil {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: ErrKindTransport, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: ErrKindDecode, Err: err}
	}
	return nil
}

// OpenEvents dials the LCU's event-stream WebSocket and sends the
// subscription frame that requests all JSON API events.
func (c *Client) OpenEvents(ctx context.Context) error {
	header := http.Header{"Authorization": []string{c.authHeader()}}
	conn, _, err := websocket.Dial(ctx, c.creds.WebSocketURL(), &websocket.DialOptions{
		HTTPHeader: header,
		HTTPClient: c.http,
	})
	if err != nil {
		return &Error{Kind: ErrKindTransport, Err: err}
	}
	c.ws = conn

	sub, _ := json.Marshal([]any{5, "OnJsonApiEvent"})
	if err := conn.Write(ctx, websocket.MessageText, sub); err != nil {
		conn.Close(websocket.StatusInternalError, "subscribe failed")
		c.ws = nil
		return &Error{Kind: ErrKindTransport, Err: err}
	}
	return nil
}

// ReadFrame blocks for the next event frame. It has no read deadline of
// its own (§5) — cancel ctx from the Supervisor to unblock it.
func (c *Client) ReadFrame(ctx context.Context) (Frame, error) {
	if c.ws == nil {
		return Frame{}, &Error{Kind: ErrKindTransport, Err: errors.New("events stream not open")}
	}

	_, data, err := c.ws.Read(ctx)
	if err != nil {
		return Frame{}, &Error{Kind: ErrKindTransport, Err: err}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || len(raw) < 3 {
		return Frame{}, &Error{Kind: ErrKindDecode, Err: fmt.Errorf("malformed frame: %s", data)}
	}

	var opcode int
	var eventName string
	if err := json.Unmarshal(raw[0], &opcode); err != nil {
		return Frame{}, &Error{Kind: ErrKindDecode, Err: err}
	}
	_ = json.Unmarshal(raw[1], &eventName)

	var payload struct {
		URI       string          `json:"uri"`
		EventType string          `json:"eventType"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw[2], &payload); err != nil {
		return Frame{}, &Error{Kind: ErrKindDecode, Err: err}
	}

	return Frame{
		Opcode:    opcode,
		EventType: eventName,
		URI:       payload.URI,
		Data:      payload.Data,
		RawKind:   payload.EventType,
	}, nil
}

// Close tears down the WebSocket connection, if any. Safe to call more
// than once.
func (c *Client) Close() {
	if c.ws != nil && !c.closed {
		c.closed = true
		_ = c.ws.Close(websocket.StatusNormalClosure, "bye")
	}
}
