package httpx

import (
	"net"
	"net/http"
	"time"
)

// Client wraps http.Client and fills in default headers the caller left unset.
type Client struct {
	HTTP    *http.Client
	Headers http.Header
}

func New(timeout time.Duration, userAgent string) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	headers := make(http.Header)
	if userAgent != "" {
		headers.Set("User-Agent", userAgent)
	}
	return &Client{HTTP: &http.Client{Timeout: timeout, Transport: transport}, Headers: headers}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for k, vs := range c.Headers {
		if req.Header.Get(k) == "" && len(vs) > 0 {
			req.Header.Set(k, vs[0])
		}
	}
	return c.HTTP.Do(req)
}
