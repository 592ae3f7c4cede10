package http

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Execute performs an HTTP request, retrying non-2xx and transport failures
// up to req.RetryCount times with backoff. 4xx responses are never retried
// (spec §4.1: "any non-2xx is retried ... up to a configured bound" applies
// to connectivity/5xx failures, not client errors).
func Execute(req *Request) (*Response, error) {
	start := time.Now()

	if req.Method == "" {
		return nil, fmt.Errorf("HTTP method is required")
	}
	if req.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}

	var lastErr error
	attempts := req.RetryCount + 1

	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := executeOnce(req)
		if err == nil {
			resp.Duration = time.Since(start)
			return resp, nil
		}
		lastErr = err

		if resp != nil && resp.IsClientError() {
			resp.Duration = time.Since(start)
			return resp, err
		}

		if attempt < attempts-1 {
			time.Sleep(calculateBackoff(attempt, req.RetryBackoff, req.RetryInterval))
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
}

func executeOnce(req *Request) (*Response, error) {
	var httpReq *http.Request
	var err error

	switch req.Method {
	case "GET", "HEAD", "DELETE", "OPTIONS":
		httpReq, err = buildSimpleRequest(req)
	case "POST", "PUT", "PATCH":
		httpReq, err = buildBodyRequest(req)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", req.Method)
	}
	if err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = 30
	}
	client := &http.Client{Timeout: time.Duration(timeout) * time.Second}

	transport := &http.Transport{}
	needsTransport := false
	if req.InsecureSkipVerify || req.ClientCertificate != nil {
		tlsConfig := &tls.Config{InsecureSkipVerify: req.InsecureSkipVerify}
		if req.ClientCertificate != nil {
			tlsConfig.Certificates = []tls.Certificate{*req.ClientCertificate}
		}
		transport.TLSClientConfig = tlsConfig
		needsTransport = true
	}
	if req.Proxy != "" {
		proxyURL, perr := url.Parse(req.Proxy)
		if perr != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", perr)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		needsTransport = true
	}
	if needsTransport {
		client.Transport = transport
	}

	if !req.FollowRedirect {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if req.MaxRedirects > 0 {
		maxRedirects := req.MaxRedirects
		client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		}
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    make(map[string]string, len(httpResp.Header)),
		Body:       body,
		BodyString: string(body),
	}
	for key, values := range httpResp.Header {
		if len(values) > 0 {
			resp.Headers[key] = values[0]
		}
	}

	if !resp.IsSuccess() {
		return resp, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp, nil
}

func buildSimpleRequest(req *Request) (*http.Request, error) {
	httpReq, err := http.NewRequest(req.Method, req.URL, nil)
	if err != nil {
		return nil, err
	}
	applyCommonHeaders(httpReq, req)
	return httpReq, nil
}

func buildBodyRequest(req *Request) (*http.Request, error) {
	var body io.Reader
	contentType := "application/json"

	switch {
	case req.JSONBody != "":
		body = strings.NewReader(req.JSONBody)
	case req.RawBody != nil:
		body = bytes.NewReader(req.RawBody)
		contentType = "application/octet-stream"
	default:
		return nil, fmt.Errorf("%s request requires a JSON or raw body", req.Method)
	}

	httpReq, err := http.NewRequest(req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", contentType)
	applyCommonHeaders(httpReq, req)
	return httpReq, nil
}

func applyCommonHeaders(httpReq *http.Request, req *Request) {
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if req.UserAgent != "" {
		httpReq.Header.Set("User-Agent", req.UserAgent)
	}
}

// calculateBackoff returns the sleep duration before the next attempt.
func calculateBackoff(attempt int, strategy string, initial time.Duration) time.Duration {
	if strategy == "linear" {
		return initial * time.Duration(attempt+1)
	}
	return initial * time.Duration(1<<uint(attempt))
}
