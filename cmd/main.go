package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"nac_patrimony_crawler/internal/config"
	"nac_patrimony_crawler/internal/logging"
	"nac_patrimony_crawler/internal/prompt"
	"nac_patrimony_crawler/internal/runner"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "config.yaml", "配置文件路径")
		fileName   = flag.String("o", "", "报告文件名（不询问）")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "用法: %s [-config config.yaml] [-o 名称] [crawl [-o 名称] | export -run <run-id> [-o 名称]]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cmd, sub, err := parseSubcommand(flag.Args(), *fileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		return 2
	}

	// 1. 读取配置
	cfg, shouldExit, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		return 1
	}
	if shouldExit {
		fmt.Println("程序已退出，请配置好相关文件后重新运行。")
		return 0
	}

	// 2. 日志
	logger, closer := logging.New(logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.FilePath,
	})
	if closer != nil {
		defer closer.Close() //nolint:errcheck
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := runner.Options{
		FileName:    sub.fileName,
		Interactive: prompt.IsInteractive(),
		In:          os.Stdin,
		Out:         os.Stdout,
	}

	switch cmd {
	case "crawl":
		res, err := runner.RunAll(ctx, cfg, logger, opts)
		if err != nil {
			logger.Error("运行失败", slog.Any("error", err))
			return 1
		}
		fmt.Printf("[+] 报告已保存到: %s\n", res.ReportPath)
		if res.RunID != "" {
			fmt.Printf("[*] 运行ID: %s\n", res.RunID)
		}
		if res.Cancelled {
			fmt.Printf("[!] 运行被中断，报告只包含已完成的 %d 条记录\n", len(res.Records))
		}
		fmt.Println("[✔] 主流程执行完毕")

	case "export":
		if sub.runID == "" {
			fmt.Fprintln(os.Stderr, "export 需要 -run <run-id>")
			return 2
		}
		path, err := runner.RunExport(ctx, cfg, logger, sub.runID, opts)
		if err != nil {
			logger.Error("导出失败", slog.Any("error", err))
			return 1
		}
		fmt.Printf("[+] 报告已保存到: %s\n", path)

	default:
		flag.Usage()
		return 2
	}
	return 0
}

type subArgs struct {
	fileName string
	runID    string
}

// parseSubcommand 解析子命令及其参数；子命令中的 -o 覆盖全局 -o
func parseSubcommand(args []string, fileName string) (string, subArgs, error) {
	cmd := "crawl"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	sub := subArgs{fileName: fileName}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&sub.fileName, "o", fileName, "报告文件名（不询问）")
	switch cmd {
	case "crawl":
	case "export":
		fs.StringVar(&sub.runID, "run", "", "要重新导出的运行ID")
	default:
		return cmd, sub, fmt.Errorf("未知子命令: %s", cmd)
	}
	if err := fs.Parse(args); err != nil {
		return cmd, sub, err
	}
	if fs.NArg() > 0 {
		return cmd, sub, fmt.Errorf("%s: 多余的参数 %v", cmd, fs.Args())
	}
	return cmd, sub, nil
}
