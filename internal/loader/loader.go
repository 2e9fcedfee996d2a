package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"nac_patrimony_crawler/internal/model"
	"nac_patrimony_crawler/internal/query"
	"nac_patrimony_crawler/internal/util"
)

// Fetcher 获取并解析一个页面
type Fetcher interface {
	Fetch(ctx context.Context, target string) (*query.Page, error)
}

// Listing 是清单页的解析结果
type Listing struct {
	Identifiers []model.Identifier
	Context     string // blocoConsulta
	Skipped     int    // 格式不符被跳过的条目数
}

// Options 控制条目的收集方式
type Options struct {
	Selector    string // 默认 ".usado a"
	RequireIPv4 bool
}

// LoadListing 通过门户请求清单页并收集标识
func LoadListing(ctx context.Context, f Fetcher, listingURL string, opts Options, logger *slog.Logger) (*Listing, error) {
	page, err := f.Fetch(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("读取清单页失败: %w", err)
	}
	ids, skipped := CollectIdentifiers(page.Doc, opts, logger)
	return &Listing{Identifiers: ids, Context: ContextParam(listingURL), Skipped: skipped}, nil
}

// ReadListingFile 读取离线保存的清单页 HTML
// contextURL 为该页面原本的地址，用于取得上下文参数（可为空）
func ReadListingFile(path, contextURL string, opts Options, logger *slog.Logger) (*Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// 不是 UTF-8 时按 Windows-1252（ISO-8859-1 的超集）解码
	var r io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("解析清单文件失败: %w", err)
	}
	ids, skipped := CollectIdentifiers(doc, opts, logger)
	return &Listing{Identifiers: ids, Context: ContextParam(contextURL), Skipped: skipped}, nil
}

// CollectIdentifiers 按发现顺序收集标识；
// 缺少 href 或 href 中没有成对单引号的条目被跳过，重复标识只保留第一次
func CollectIdentifiers(doc *goquery.Document, opts Options, logger *slog.Logger) ([]model.Identifier, int) {
	selector := opts.Selector
	if selector == "" {
		selector = ".usado a"
	}

	ids := make([]model.Identifier, 0)
	seen := make(map[string]bool)
	skipped := 0

	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			skipped++
			logger.Warn("条目缺少 href，跳过", slog.Int("entry", i))
			return
		}
		id, ok := QuotedValue(href)
		if !ok {
			skipped++
			logger.Warn("条目格式不符，跳过", slog.Int("entry", i), slog.String("href", href))
			return
		}
		if opts.RequireIPv4 && !util.IsIPv4(id) {
			skipped++
			logger.Warn("非 IPv4 标识，跳过", slog.Int("entry", i), slog.String("identifier", id))
			return
		}
		if seen[id] {
			logger.Debug("重复标识，忽略", slog.String("identifier", id))
			return
		}
		seen[id] = true
		ids = append(ids, model.Identifier(id))
	})

	return ids, skipped
}

// QuotedValue 返回前两个单引号之间的内容，例如 javascript:detalhes('10.0.0.1') -> 10.0.0.1
func QuotedValue(s string) (string, bool) {
	first := strings.IndexByte(s, '\'')
	if first < 0 {
		return "", false
	}
	rest := s[first+1:]
	last := strings.IndexByte(rest, '\'')
	if last < 0 {
		return "", false
	}
	v := strings.TrimSpace(rest[:last])
	if v == "" {
		return "", false
	}
	return v, true
}

// ContextParam 返回地址中第一个 "=" 之后的全部内容；没有 "=" 时为空
func ContextParam(pageURL string) string {
	i := strings.IndexByte(pageURL, '=')
	if i < 0 {
		return ""
	}
	return pageURL[i+1:]
}
