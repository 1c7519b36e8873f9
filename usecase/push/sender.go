package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

// HTTPSender posts {"push_token": ...} to the gateway with the session's
// bearer token.
type HTTPSender struct {
	endpoint string
	client   *fasthttp.Client
	timeout  time.Duration
}

func NewHTTPSender(endpoint string, timeout time.Duration, client *fasthttp.Client) *HTTPSender {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if client == nil {
		client = &fasthttp.Client{
			Name:         "academy-push",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		}
	}
	return &HTTPSender{endpoint: endpoint, client: client, timeout: timeout}
}

func (s *HTTPSender) Send(ctx context.Context, reg Registration) error {
	if reg.PushToken == "" {
		return ErrNoDeviceToken
	}
	body, err := json.Marshal(map[string]string{"push_token": reg.PushToken})
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	req.SetBody(body)

	if err := s.client.DoTimeout(req, resp, s.deadline(ctx)); err != nil {
		return err
	}
	if status := resp.StatusCode(); status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("push gateway returned %d", status)
	}
	return nil
}

// Ping reports whether the gateway answers at all; any HTTP status counts.
func (s *HTTPSender) Ping(ctx context.Context) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.endpoint)
	req.Header.SetMethod(fasthttp.MethodHead)
	resp.SkipBody = true
	return s.client.DoTimeout(req, resp, s.deadline(ctx))
}

func (s *HTTPSender) deadline(ctx context.Context) time.Duration {
	timeout := s.timeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}
