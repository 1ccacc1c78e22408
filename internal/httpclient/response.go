package httpclient

import "time"

// Response is produced by Dispatch and immutable afterwards. Scripts see a
// read-only view of it; derived values travel through the variable store.
type Response struct {
	StatusCode int
	Status     string
	Header     *Header
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
