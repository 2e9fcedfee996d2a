package query

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const maxPageBytes = 5 * 1024 * 1024

// ErrUnexpectedPage 表示加载完成的地址不是期望的详情页（例如跳转到登录页）
var ErrUnexpectedPage = errors.New("unexpected page")

// StatusError 表示门户返回了非 2xx/3xx 状态码
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", e.URL, e.Code)
}

// Page 是一次加载完成的页面：最终地址 + 解析后的文档
type Page struct {
	URL string
	Doc *goquery.Document
}

// Options 用于配置门户客户端
type Options struct {
	Cookie    string
	UserAgent string
	Timeout   time.Duration
}

// Client 以已登录会话的身份请求 NAC 门户页面
type Client struct {
	client    *http.Client
	cookie    string
	userAgent string
	logger    *slog.Logger
}

// NewClient 创建门户客户端
func NewClient(opts Options, logger *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client:    &http.Client{Timeout: timeout},
		cookie:    opts.Cookie,
		userAgent: opts.UserAgent,
		logger:    logger.With(slog.String("component", "portal")),
	}
}

// Fetch 请求页面并解析为 HTML 文档；返回的 Page.URL 为跟随跳转后的最终地址
func (c *Client) Fetch(ctx context.Context, target string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}

	// 门户页面多为 ISO-8859-1，按 Content-Type / meta 声明转换为 UTF-8
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = resp.Body
	}
	body, err := io.ReadAll(io.LimitReader(reader, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html failed: %w", err)
	}

	c.logger.Debug("page loaded",
		slog.String("url", resp.Request.URL.String()),
		slog.Int("bytes", len(body)))

	return &Page{URL: resp.Request.URL.String(), Doc: doc}, nil
}
