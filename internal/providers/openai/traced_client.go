package openai

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"

	"github.com/rs/zerolog"
)

// NetworkMetrics breaks down where request time went.
type NetworkMetrics struct {
	DNS        time.Duration
	TCP        time.Duration
	TLS        time.Duration
	ConnReused bool
	TTFB       time.Duration
	Total      time.Duration
}

type tracedResponse struct {
	Body       []byte
	StatusCode int
	Header     http.Header
	Metrics    *NetworkMetrics
}

// tracedClient wraps an http.Client and records per-request timings.
type tracedClient struct {
	client *http.Client
	log    zerolog.Logger
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        4,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

func (c *tracedClient) Do(req *http.Request) (*tracedResponse, error) {
	metrics := &NetworkMetrics{}
	var dnsStart, tcpStart, tlsStart, wroteRequest time.Time

	trace := &httptrace.ClientTrace{
		GotConn:           func(info httptrace.GotConnInfo) { metrics.ConnReused = info.Reused },
		DNSStart:          func(_ httptrace.DNSStartInfo) { dnsStart = time.Now() },
		DNSDone:           func(_ httptrace.DNSDoneInfo) { metrics.DNS = time.Since(dnsStart) },
		ConnectStart:      func(_, _ string) { tcpStart = time.Now() },
		ConnectDone:       func(_, _ string, _ error) { metrics.TCP = time.Since(tcpStart) },
		TLSHandshakeStart: func() { tlsStart = time.Now() },
		TLSHandshakeDone:  func(_ tls.ConnectionState, _ error) { metrics.TLS = time.Since(tlsStart) },
		WroteRequest:      func(_ httptrace.WroteRequestInfo) { wroteRequest = time.Now() },
		GotFirstResponseByte: func() {
			if !wroteRequest.IsZero() {
				metrics.TTFB = time.Since(wroteRequest)
			}
		},
	}

	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	metrics.Total = time.Since(start)

	c.log.Debug().
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Bool("reused", metrics.ConnReused).
		Dur("dns", metrics.DNS).
		Dur("tls", metrics.TLS).
		Dur("ttfb", metrics.TTFB).
		Dur("total", metrics.Total).
		Msg("request complete")

	return &tracedResponse{
		Body:       body,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Metrics:    metrics,
	}, nil
}
