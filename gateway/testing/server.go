// Package testing provides a scriptable fake sequencer gateway and
// OpenTelemetry helpers for tests of code built on the gateway client.
//
// Usage:
//
//	gw := gwtest.NewGateway(t,
//		gwtest.Status(http.StatusServiceUnavailable),
//		gwtest.JSON(http.StatusOK, map[string]any{"block_number": 1}),
//	)
//	client, _ := gateway.NewClientBuilder(log).WithBaseURL(gw.URL).Build()
//	...
//	assert.Equal(t, 2, gw.Hits())
package testing

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

// ExhaustedCode is the error code returned once the response queue is empty
// and no fallback is set. It is served with status 400 so clients stop retrying.
const ExhaustedCode = "FakeGateway.QUEUE_EXHAUSTED"

// Response is one scripted reply.
type Response struct {
	Status int
	Body   []byte
	// Delay holds the reply back; the handler gives up early when the client goes away.
	Delay time.Duration
}

// Status returns an empty-bodied response with the given status.
func Status(status int) Response {
	return Response{Status: status}
}

// JSON returns a response with v encoded as the body. It panics if v cannot be encoded.
func JSON(status int, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("gwtest: encode body: %v", err))
	}
	return Response{Status: status, Body: body}
}

// Raw returns a response with a literal body.
func Raw(status int, body string) Response {
	return Response{Status: status, Body: []byte(body)}
}

// StarknetError returns a sequencer error response.
func StarknetError(status int, code, message string) Response {
	return JSON(status, map[string]string{"code": code, "message": message})
}

// Slow returns a response that is held back for delay.
func Slow(delay time.Duration) Response {
	return Response{Status: http.StatusOK, Body: []byte("{}"), Delay: delay}
}

// RecordedRequest is a request seen by the fake gateway.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Gateway is an echo-backed fake sequencer serving scripted responses in order.
type Gateway struct {
	*httptest.Server

	mu       sync.Mutex
	queue    []Response
	fallback *Response
	requests []RecordedRequest
}

// NewGateway starts a fake gateway serving responses in order. The server is
// closed when the test ends.
func NewGateway(t testing.TB, responses ...Response) *Gateway {
	t.Helper()

	g := &Gateway{queue: append([]Response(nil), responses...)}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Any("/*", g.handle)

	g.Server = httptest.NewServer(e)
	t.Cleanup(g.Close)
	return g
}

// Enqueue appends responses to the queue.
func (g *Gateway) Enqueue(responses ...Response) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append(g.queue, responses...)
}

// SetFallback serves r whenever the queue is empty.
func (g *Gateway) SetFallback(r Response) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fallback = &r
}

// Hits returns the number of requests received.
func (g *Gateway) Hits() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// Remaining returns the number of queued responses not yet served.
func (g *Gateway) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// Requests returns a copy of every request received so far.
func (g *Gateway) Requests() []RecordedRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]RecordedRequest(nil), g.requests...)
}

func (g *Gateway) handle(c echo.Context) error {
	req := c.Request()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	resp := g.next(RecordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Header: req.Header.Clone(),
		Body:   body,
	})

	if resp.Delay > 0 {
		timer := time.NewTimer(resp.Delay)
		defer timer.Stop()
		select {
		case <-req.Context().Done():
			return nil
		case <-timer.C:
		}
	}

	if len(resp.Body) == 0 {
		return c.NoContent(resp.Status)
	}
	return c.Blob(resp.Status, echo.MIMEApplicationJSON, resp.Body)
}

func (g *Gateway) next(rec RecordedRequest) Response {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, rec)
	if len(g.queue) > 0 {
		resp := g.queue[0]
		g.queue = g.queue[1:]
		return resp
	}
	if g.fallback != nil {
		return *g.fallback
	}
	return StarknetError(http.StatusBadRequest, ExhaustedCode, "no scripted response left")
}
