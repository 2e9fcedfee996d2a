package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"nac_patrimony_crawler/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// 运行状态
const (
	RunCompleted = "completed"
	RunCancelled = "cancelled"
)

// Run 是一次抓取运行的元数据
type Run struct {
	ID         string
	TaskID     string
	Source     string // 清单地址或离线文件路径
	Context    string
	Status     string
	Total      int
	Skipped    int
	ReportPath string
	StartedAt  time.Time
	FinishedAt time.Time
}

// InitDB 打开 SQLite 数据库并执行迁移
func InitDB(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// SaveRun 在一个事务中保存运行及其全部记录，返回运行 ID
func SaveRun(ctx context.Context, db *sql.DB, run Run, records []model.DetailRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, task_id, source, context_param, status, total, skipped, report_path, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.TaskID, run.Source, run.Context, run.Status, len(records), run.Skipped, run.ReportPath,
		run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("写入运行失败: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO records (run_id, position, identifier, asset_id, user_name, owner, co_owner, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, run.ID, i, string(r.Identifier), r.AssetID, r.User, r.PrimaryOwner, r.CoOwner, string(r.Status)); err != nil {
			return "", fmt.Errorf("写入记录 %s 失败: %w", r.Identifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// LoadRecords 按原始顺序读取一次运行的全部记录
func LoadRecords(ctx context.Context, db *sql.DB, runID string) ([]model.DetailRecord, error) {
	if _, err := GetRun(ctx, db, runID); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
SELECT identifier, asset_id, user_name, owner, co_owner, status
FROM records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.DetailRecord, 0)
	for rows.Next() {
		var r model.DetailRecord
		var id, status string
		if err := rows.Scan(&id, &r.AssetID, &r.User, &r.PrimaryOwner, &r.CoOwner, &status); err != nil {
			return nil, err
		}
		r.Identifier = model.Identifier(id)
		r.Status = model.Status(status)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetRun 读取一次运行的元数据；不存在时返回 sql.ErrNoRows
func GetRun(ctx context.Context, db *sql.DB, runID string) (*Run, error) {
	var run Run
	var started, finished string
	err := db.QueryRowContext(ctx, `
SELECT id, task_id, source, context_param, status, total, skipped, report_path, started_at, finished_at
FROM runs WHERE id = ?`, runID).Scan(
		&run.ID, &run.TaskID, &run.Source, &run.Context, &run.Status,
		&run.Total, &run.Skipped, &run.ReportPath, &started, &finished)
	if err != nil {
		return nil, err
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, started)
	run.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return &run, nil
}
