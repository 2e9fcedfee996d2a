package exporter

import (
	"context"
	"database/sql"
	"fmt"

	"nac_patrimony_crawler/internal/database"
	"nac_patrimony_crawler/internal/model"
)

// ExportRun 从运行历史中重新导出一次运行的报告
func ExportRun(ctx context.Context, db *sql.DB, runID, dir, name, locale string) (string, int64, error) {
	records, err := database.LoadRecords(ctx, db, runID)
	if err != nil {
		return "", 0, fmt.Errorf("读取运行 %s 的记录失败: %w", runID, err)
	}
	report := model.Report{Header: Header(locale), Records: records}
	return Save(dir, name, report, locale)
}
