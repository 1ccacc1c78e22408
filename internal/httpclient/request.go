package httpclient

import (
	"net/url"
	"strings"
)

// Request is the mutable outgoing request model. One pipeline invocation
// owns exactly one Request; scripts mutate it through the bridge view.
type Request struct {
	Method string
	URL    string
	Header *Header
	Params map[string]string
	Body   string
}

// NewRequest builds a Request with normalized method and empty collections.
func NewRequest(method, rawURL string) *Request {
	return &Request{
		Method: strings.ToUpper(strings.TrimSpace(method)),
		URL:    strings.TrimSpace(rawURL),
		Header: NewHeader(),
		Params: make(map[string]string),
	}
}

// BuildURL merges Params into the URL's query string. Existing query values
// in the URL are kept unless a param of the same name overrides them.
func (r *Request) BuildURL() string {
	if len(r.Params) == 0 {
		return r.URL
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	q := u.Query()
	for k, v := range r.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Clone returns a deep copy, used when the same configured item is replayed
// by concurrent performance-test workers.
func (r *Request) Clone() *Request {
	params := make(map[string]string, len(r.Params))
	for k, v := range r.Params {
		params[k] = v
	}
	return &Request{
		Method: r.Method,
		URL:    r.URL,
		Header: r.Header.Clone(),
		Params: params,
		Body:   r.Body,
	}
}
