// Package crawler 按顺序加载每个标识的详情页并生成报告记录。
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"nac_patrimony_crawler/internal/analysis"
	"nac_patrimony_crawler/internal/extract"
	"nac_patrimony_crawler/internal/model"
	"nac_patrimony_crawler/internal/query"
)

// PageLoader 加载一个详情页
type PageLoader interface {
	Fetch(ctx context.Context, target string) (*query.Page, error)
}

// Sink 接收按顺序完成的记录
type Sink interface {
	Add(model.DetailRecord)
}

// Options 控制抽取、超时、重试与加载间隔
type Options struct {
	DetailURL string
	Expect    *regexp.Regexp
	Timeout   time.Duration
	Retries   int
	Interval  time.Duration
}

// Crawler 驱动 Machine，一次只有一个加载在进行
type Crawler struct {
	loader    PageLoader
	extractor *extract.Extractor
	limiter   *rate.Limiter
	opts      Options
	logger    *slog.Logger
}

// New 创建 Crawler
func New(loader PageLoader, extractor *extract.Extractor, opts Options, logger *slog.Logger) *Crawler {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	return &Crawler{
		loader:    loader,
		extractor: extractor,
		limiter:   rate.NewLimiter(limit, 1),
		opts:      opts,
		logger:    logger.With(slog.String("component", "crawler")),
	}
}

// Run 依次处理 ids，每个标识恰好向 sink 提交一条记录（加载失败时为失败记录）
// 返回已处理的数量；context 被取消时提前结束并返回 context 错误
func (c *Crawler) Run(ctx context.Context, ids []model.Identifier, contextArg string, sink Sink) (int, error) {
	m := NewMachine(ids, c.opts.DetailURL, contextArg, c.opts.Expect)

	target, ok := m.Start()
	for ok {
		id := m.Current()
		c.logger.Info("正在检查", slog.String("identifier", string(id)),
			slog.Int("index", m.Index()+1), slog.Int("total", m.Len()))

		rec, err := c.visit(ctx, m, id, target)
		if err != nil {
			return m.Index(), err
		}
		sink.Add(rec)
		c.logger.Info("- "+string(rec.Status), slog.String("identifier", string(id)))

		target, ok = m.Advance()
	}
	return m.Len(), nil
}

// visit 加载单个详情页：单次超时 + 至多一次重试，仍失败则返回失败记录
func (c *Crawler) visit(ctx context.Context, m *Machine, id model.Identifier, target string) (model.DetailRecord, error) {
	// 加载间隔在单次超时之外等待，超时只约束加载本身
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return model.DetailRecord{}, ctx.Err()
		}
		return model.DetailRecord{}, fmt.Errorf("等待加载间隔: %w", err)
	}
	page, err := query.WithRetry(ctx, c.logger, target, c.opts.Retries, c.opts.Timeout, func(actx context.Context) (*query.Page, error) {
		page, err := c.loader.Fetch(actx, target)
		if err != nil {
			return nil, err
		}
		if !m.Ready(page.URL) {
			return nil, fmt.Errorf("%w: %s", query.ErrUnexpectedPage, page.URL)
		}
		return page, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return model.DetailRecord{}, ctx.Err()
		}
		c.logger.Warn("详情页加载失败，记录为失败", slog.String("identifier", string(id)), slog.Any("error", err))
		return analysis.FailedRecord(id), nil
	}

	return analysis.NewRecord(id, c.extractor.Extract(page.Doc)), nil
}
