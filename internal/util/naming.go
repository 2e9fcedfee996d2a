package util

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultReportName 报告文件的默认基础名
const DefaultReportName = "relatorio-nac-patrimonio"

// ReportExt 报告文件扩展名
const ReportExt = ".csv"

// GenerateTaskID 生成统一的任务ID
func GenerateTaskID(now time.Time) string {
	dateStr := now.Format("20060102")
	tsStr := fmt.Sprintf("%d", now.Unix())
	shortTS := tsStr[len(tsStr)-8:]
	return fmt.Sprintf("%s_%s", dateStr, shortTS)
}

// GenerateCSVFileName 生成附加文件名，例如网段汇总
func GenerateCSVFileName(taskID, suffix string) string {
	return fmt.Sprintf("%s_%s%s", taskID, suffix, ReportExt)
}

// ResolveReportFileName 将操作员输入的名称规整为报告文件名
// 空输入使用默认名；去掉目录部分与重复的 .csv 后缀
func ResolveReportFileName(name string) string {
	name = strings.TrimSpace(name)
	name = filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	if strings.EqualFold(filepath.Ext(name), ReportExt) {
		name = name[:len(name)-len(ReportExt)]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = DefaultReportName
	}
	return name + ReportExt
}
