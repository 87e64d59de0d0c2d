package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crmbridge/tools/httpclient"
	"crmbridge/tools/logger"
)

const AppName = "crm_client"

// Journal 业务日志
type Journal interface {
	Logf(category logger.Category, format string, args ...interface{})
}

// Options 客户端配置
type Options struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
	Retry      RetryPolicy
	Journal    Journal
	Logger     *logger.Logger
}

// Client CRM REST 客户端
type Client struct {
	endpoint string
	http     *http.Client
	retry    RetryPolicy
	journal  Journal
	logger   *logger.Logger
}

// NewClient 创建客户端，请求前缀为 {BaseURL}{AuthToken}/
func NewClient(opts Options) *Client {
	base := opts.BaseURL
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = httpclient.CreateClient()
	}
	// 未指定重试次数时使用默认策略：3 次，间隔 500ms
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = DefaultMaxAttempts
		if opts.Retry.Backoff <= 0 {
			opts.Retry.Backoff = DefaultBackoff
		}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger("info")
	}
	if opts.Journal == nil {
		opts.Journal = discardJournal{}
	}

	return &Client{
		endpoint: base + strings.Trim(opts.AuthToken, "/") + "/",
		http:     opts.HTTPClient,
		retry:    opts.Retry,
		journal:  opts.Journal,
		logger:   opts.Logger.With("crm"),
	}
}

// Init 满足 ioc.Object
func (c *Client) Init() error {
	return nil
}

// Endpoint 请求前缀
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Call POST {endpoint}{method}，失败按 RetryPolicy 重试。
// 每次失败写一条 error 日志；重试用尽返回 *CallError。
func (c *Client) Call(ctx context.Context, method string, params Params) (Response, error) {
	target := c.endpoint + method
	form := EncodeForm(params)
	start := time.Now()

	out := Retry(ctx, c.retry, func(ctx context.Context, attempt int) (Response, error) {
		resp, err := c.do(ctx, method, target, form)
		if err != nil {
			attemptFailures.WithLabelValues(method, failureReason(err)).Inc()
			c.journal.Logf(logger.CategoryError, "API call %s failed (attempt %d/%d): %v", method, attempt, c.retry.MaxAttempts, err)
			c.logger.Warn("API call %s failed (attempt %d/%d): %v", method, attempt, c.retry.MaxAttempts, err)
		}
		return resp, err
	})

	callDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if !out.OK() {
		apiCalls.WithLabelValues(method, "failed").Inc()
		c.logger.Error("API call %s gave up after %d attempt(s): %v", method, out.Attempts, out.Err)
		return nil, &CallError{Method: method, Attempts: out.Attempts, Err: out.Err}
	}

	apiCalls.WithLabelValues(method, "ok").Inc()
	c.logger.Debug("API call %s ok after %d attempt(s)", method, out.Attempts)
	return out.Value, nil
}

func (c *Client) do(ctx context.Context, method, target string, form url.Values) (Response, error) {
	body, status, err := httpclient.PostForm(ctx, c.http, target, form)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}

	if status != http.StatusOK {
		statusErr := &HTTPStatusError{Method: method, StatusCode: status}
		var apiErr struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if json.Unmarshal(body, &apiErr) == nil {
			statusErr.Code = apiErr.Error
			statusErr.Description = apiErr.Description
		}
		return nil, statusErr
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Method: method, Err: err}
	}
	return resp, nil
}

type discardJournal struct{}

func (discardJournal) Logf(logger.Category, string, ...interface{}) {}
