package gateway

import (
	"errors"
	"net/url"
	"slices"
	"strings"
)

// HeaderThrottlingBypass carries the API key that exempts the caller from gateway rate limits.
const HeaderThrottlingBypass = "X-Throttling-Bypass"

// ErrIncompleteRequest is returned, without any attempt, for a stage that was not
// built through NewRequest and a method selector.
var ErrIncompleteRequest = errors.New("sequencer request has no method or absolute base URL")

// RequestMetadata identifies a request for metrics and logs.
type RequestMetadata struct {
	Method string
	Tag    BlockTag
}

type queryPair struct {
	key   string
	value string
}

// request is the state shared by every stage. Stages are values: a transition
// copies it, and query pairs are copied on append so sibling stages never share them.
type request struct {
	client *Client
	url    url.URL
	query  []queryPair
	apiKey string
}

// MethodStage selects the sequencer method to call.
type MethodStage struct {
	req request
}

// ParamsStage collects query parameters; WithRetry finishes it.
type ParamsStage struct {
	req  request
	meta RequestMetadata
}

// FinalStage is a complete request ready to be executed with Get, GetAsBytes or PostWithJSON.
type FinalStage struct {
	req   request
	meta  RequestMetadata
	retry bool
}

// NewRequest starts a request against baseURL. A non-empty apiKey is sent as
// X-Throttling-Bypass on every attempt. A nil baseURL yields a request that
// fails with ErrIncompleteRequest when executed.
func NewRequest(c *Client, baseURL *url.URL, apiKey string) MethodStage {
	r := request{client: c, apiKey: apiKey}
	if baseURL != nil {
		r.url = *baseURL
	}
	return MethodStage{req: r}
}

func (s MethodStage) withMethod(m method) ParamsStage {
	r := s.req
	r.url = *r.url.JoinPath(string(m))
	return ParamsStage{
		req:  r,
		meta: RequestMetadata{Method: string(m), Tag: TagNone},
	}
}

// WithBlock adds the block selector and records its tag.
func (s ParamsStage) WithBlock(block BlockID) ParamsStage {
	key, value, tag := block.QueryParam()
	return s.UpdateTag(tag).AddParam(key, value)
}

// WithClassHash adds the classHash parameter.
func (s ParamsStage) WithClassHash(h ClassHash) ParamsStage {
	return s.AddParam(paramClassHash, h.String())
}

// WithTransactionHash adds the transactionHash parameter.
func (s ParamsStage) WithTransactionHash(h TransactionHash) ParamsStage {
	return s.AddParam(paramTransactionHash, h.String())
}

// WithOptionalToken adds the token parameter unless token is empty.
func (s ParamsStage) WithOptionalToken(token string) ParamsStage {
	if token == "" {
		return s
	}
	return s.AddParam(paramToken, token)
}

// AddParam appends a custom query parameter. Parameters keep insertion order.
func (s ParamsStage) AddParam(name, value string) ParamsStage {
	s.req.query = append(slices.Clip(s.req.query), queryPair{key: name, value: value})
	return s
}

// UpdateTag overrides the block tag reported to metrics.
func (s ParamsStage) UpdateTag(tag BlockTag) ParamsStage {
	s.meta.Tag = tag
	return s
}

// WithRetry fixes whether transient failures are retried.
func (s ParamsStage) WithRetry(retry bool) FinalStage {
	return FinalStage{req: s.req, meta: s.meta, retry: retry}
}

// Metadata returns the method and block tag of the request.
func (s FinalStage) Metadata() RequestMetadata {
	return s.meta
}

// Retry reports whether transient failures will be retried.
func (s FinalStage) Retry() bool {
	return s.retry
}

// complete reports whether the stage carries a method and an absolute base URL.
func (s FinalStage) complete() bool {
	return s.meta.Method != "" && s.req.url.Scheme != "" && s.req.url.Host != ""
}

// URL renders the full request URL.
func (s FinalStage) URL() string {
	return s.req.encodeURL()
}

func (r request) encodeURL() string {
	u := r.url
	if len(r.query) == 0 {
		return u.String()
	}

	var sb strings.Builder
	sb.WriteString(u.RawQuery)
	for _, p := range r.query {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.value))
	}
	u.RawQuery = sb.String()
	return u.String()
}
