package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"nac_patrimony_crawler/internal/analysis"
	"nac_patrimony_crawler/internal/config"
	"nac_patrimony_crawler/internal/crawler"
	"nac_patrimony_crawler/internal/database"
	"nac_patrimony_crawler/internal/exporter"
	"nac_patrimony_crawler/internal/extract"
	"nac_patrimony_crawler/internal/loader"
	"nac_patrimony_crawler/internal/model"
	"nac_patrimony_crawler/internal/prompt"
	"nac_patrimony_crawler/internal/query"
	"nac_patrimony_crawler/internal/util"
)

// Options 是命令行层面的运行参数
type Options struct {
	FileName    string // -o，非空时不再询问
	Interactive bool
	In          io.Reader
	Out         io.Writer
	Now         func() time.Time
}

// Result 汇总一次运行的产出
type Result struct {
	RunID      string
	TaskID     string
	ReportPath string
	Size       int64
	Records    []model.DetailRecord
	Skipped    int
	Cancelled  bool
}

// RunAll 收集清单 -> 逐个加载详情页 -> 分类 -> 导出报告 -> 保存运行历史
func RunAll(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Result, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	started := now()
	taskID := util.GenerateTaskID(started)
	resultsDir := filepath.Join(cfg.Output.BaseDir, taskID)

	timeout := time.Duration(cfg.Crawl.TimeoutSeconds) * time.Second
	client := query.NewClient(query.Options{
		Cookie:    cfg.Portal.Cookie,
		UserAgent: cfg.Portal.UserAgent,
		Timeout:   timeout,
	}, logger)

	// 读取清单
	listing, source, err := collect(ctx, cfg, client, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("清单读取完成",
		slog.String("source", source),
		slog.Int("identifiers", len(listing.Identifiers)),
		slog.Int("skipped", listing.Skipped),
		slog.String("context", listing.Context))

	expect, err := query.CompilePattern(cfg.Portal.DetailPattern, cfg.Portal.DetailURL)
	if err != nil {
		return nil, fmt.Errorf("详情页地址模式无效: %w", err)
	}

	// 顺序抓取
	asm := exporter.NewAssembler(len(listing.Identifiers))
	c := crawler.New(client, extract.New(cfg.Portal.DetailScope), crawler.Options{
		DetailURL: cfg.Portal.DetailURL,
		Expect:    expect,
		Timeout:   timeout,
		Retries:   cfg.Crawl.Retries,
		Interval:  time.Duration(cfg.Crawl.IntervalMillis) * time.Millisecond,
	}, logger)

	cancelled := false
	if _, err := c.Run(ctx, listing.Identifiers, listing.Context, asm); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("抓取失败: %w", err)
		}
		cancelled = true
		logger.Warn("运行被中断，导出已完成的记录",
			slog.Int("done", asm.Len()), slog.Int("total", len(listing.Identifiers)))
	}
	if !cancelled && asm.Len() != len(listing.Identifiers) {
		return nil, fmt.Errorf("记录数 %d 与标识数 %d 不一致", asm.Len(), len(listing.Identifiers))
	}

	// 导出报告
	locale := cfg.Report.Locale
	report := asm.Report(locale)
	name := resolveName(cfg, opts, cancelled)
	reportPath, size, err := exporter.Save(resultsDir, name, report, locale)
	if err != nil {
		return nil, err
	}
	logger.Info("报告已导出", slog.String("path", reportPath), slog.String("size", humanize.Bytes(uint64(size))))

	if cfg.Report.SegmentSummary {
		segPath := filepath.Join(resultsDir, util.GenerateCSVFileName(taskID, "segments"))
		if err := analysis.ExportSegments(analysis.SegmentBreakdown(report.Records), segPath); err != nil {
			logger.Warn("导出网段汇总失败", slog.Any("error", err))
		} else {
			logger.Info("网段汇总已导出", slog.String("path", segPath))
		}
	}

	logSummary(logger, report.Records)

	result := &Result{
		TaskID:     taskID,
		ReportPath: reportPath,
		Size:       size,
		Records:    report.Records,
		Skipped:    listing.Skipped,
		Cancelled:  cancelled,
	}

	// 保存运行历史；失败不影响已导出的报告
	status := database.RunCompleted
	if cancelled {
		status = database.RunCancelled
	}
	runID, err := saveHistory(context.WithoutCancel(ctx), cfg, database.Run{
		TaskID:     taskID,
		Source:     source,
		Context:    listing.Context,
		Status:     status,
		Skipped:    listing.Skipped,
		ReportPath: reportPath,
		StartedAt:  started,
		FinishedAt: now(),
	}, report.Records)
	if err != nil {
		logger.Warn("保存运行历史失败", slog.Any("error", err))
	} else {
		result.RunID = runID
		logger.Info("运行历史已保存", slog.String("run_id", runID), slog.String("db", cfg.Database.Path))
	}

	return result, nil
}

// RunExport 从运行历史重新导出指定运行的报告
func RunExport(ctx context.Context, cfg *config.Config, logger *slog.Logger, runID string, opts Options) (string, error) {
	db, err := database.InitDB(cfg.Database.Path)
	if err != nil {
		return "", fmt.Errorf("数据库初始化失败: %w", err)
	}
	defer db.Close()

	run, err := database.GetRun(ctx, db, runID)
	if err != nil {
		return "", fmt.Errorf("读取运行 %s 失败: %w", runID, err)
	}

	dir := filepath.Join(cfg.Output.BaseDir, run.TaskID)
	path, size, err := exporter.ExportRun(ctx, db, runID, dir, resolveName(cfg, opts, false), cfg.Report.Locale)
	if err != nil {
		return "", err
	}

	counts, err := database.StatusCounts(ctx, db, runID)
	if err == nil {
		for _, s := range model.Statuses {
			if counts[s] > 0 {
				logger.Info(string(s), slog.String("count", humanize.Comma(int64(counts[s]))))
			}
		}
	}
	logger.Info("报告已重新导出", slog.String("path", path), slog.String("size", humanize.Bytes(uint64(size))))
	return path, nil
}

func collect(ctx context.Context, cfg *config.Config, client *query.Client, logger *slog.Logger) (*loader.Listing, string, error) {
	opts := loader.Options{
		Selector:    cfg.Portal.EntrySelector,
		RequireIPv4: cfg.Input.RequireIPv4,
	}
	if cfg.Input.ListingFile != "" {
		listing, err := loader.ReadListingFile(cfg.Input.ListingFile, cfg.Portal.ListingURL, opts, logger)
		if err != nil {
			return nil, "", fmt.Errorf("读取清单文件失败: %w", err)
		}
		return listing, cfg.Input.ListingFile, nil
	}
	listing, err := loader.LoadListing(ctx, client, cfg.Portal.ListingURL, opts, logger)
	if err != nil {
		return nil, "", err
	}
	return listing, cfg.Portal.ListingURL, nil
}

// resolveName 按 -o、配置、交互询问、默认名的顺序确定报告名
func resolveName(cfg *config.Config, opts Options, cancelled bool) string {
	if opts.FileName != "" {
		return opts.FileName
	}
	if cfg.Output.FileName != "" {
		return cfg.Output.FileName
	}
	if cfg.Output.Prompt && opts.Interactive && !cancelled && opts.In != nil && opts.Out != nil {
		return prompt.FileName(opts.In, opts.Out, util.DefaultReportName)
	}
	return util.DefaultReportName
}

func saveHistory(ctx context.Context, cfg *config.Config, run database.Run, records []model.DetailRecord) (string, error) {
	if cfg.Database.Path == "" {
		return "", errors.New("database.path 未配置")
	}
	db, err := database.InitDB(cfg.Database.Path)
	if err != nil {
		return "", err
	}
	defer db.Close()
	return database.SaveRun(ctx, db, run, records)
}

func logSummary(logger *slog.Logger, records []model.DetailRecord) {
	counts := analysis.StatusCounts(records)
	for _, s := range model.Statuses {
		if counts[s] == 0 {
			continue
		}
		logger.Info(string(s), slog.String("count", humanize.Comma(int64(counts[s]))))
	}
	logger.Info("统计完成", slog.String("records", humanize.Comma(int64(len(records)))))
}
