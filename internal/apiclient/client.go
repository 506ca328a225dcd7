// Package apiclient 调用 PartsHub REST 接口的类型化客户端。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/partshub/internal/constants"
	"github.com/partshub/internal/logger"
	"github.com/partshub/internal/session"
)

const (
	defaultTimeout = 15 * time.Second
	apiPrefix      = "/api/v1"
)

// Client REST 客户端
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 自定义 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New 创建客户端，sess 为空时所有请求都不携带凭证
func New(baseURL string, sess *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		session: sess,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session 当前会话
func (c *Client) Session() *session.Store {
	return c.session
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type requestOption func(*http.Request)

func withHeader(key, value string) requestOption {
	return func(req *http.Request) {
		if strings.TrimSpace(value) != "" {
			req.Header.Set(key, value)
		}
	}
}

func withIdempotencyKey(key string) requestOption {
	return withHeader(constants.HeaderIdempotencyKey, key)
}

// do 发送请求并把 data 解码到 out；out 为 nil 时忽略 data
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}, opts ...requestOption) error {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized || env.StatusCode == http.StatusUnauthorized {
		c.teardown(ctx, path)
		return &AuthError{Message: env.Msg}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || env.StatusCode != 0 {
		status := resp.StatusCode
		if status >= 200 && status <= 299 {
			status = env.StatusCode
		}
		message := env.Msg
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		if (status == http.StatusBadRequest || status == http.StatusConflict) && isTransitionMessage(message) {
			return &InvalidTransitionError{Status: status, Message: message}
		}
		return &ServerError{Status: status, Code: env.StatusCode, Message: message}
	}
	if decodeErr != nil {
		return &ServerError{Status: resp.StatusCode, Message: "invalid response body"}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &ServerError{Status: resp.StatusCode, Message: fmt.Sprintf("decode response data: %v", err)}
	}
	return nil
}

// teardown 任何 401 都视为会话失效
func (c *Client) teardown(ctx context.Context, path string) {
	if c.session == nil {
		return
	}
	logger.Infow("apiclient_unauthorized", "path", path)
	c.session.Teardown(ctx)
}
