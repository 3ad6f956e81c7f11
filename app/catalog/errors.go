package catalog

import (
	"fmt"
	"unicode/utf8"
)

// UpstreamError is returned for every failed Admin API call: transport errors,
// non-2xx statuses, undecodable bodies and GraphQL error payloads alike.
type UpstreamError struct {
	StatusCode int
	Message    string
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := "shopify: " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, truncateBody(e.Body))
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func truncateBody(body string) string {
	const limit = 512
	if len(body) <= limit {
		return body
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "..."
}
