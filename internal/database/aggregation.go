package database

import (
	"context"
	"database/sql"

	"nac_patrimony_crawler/internal/model"
)

// StatusCounts 统计一次运行中各状态的记录数
func StatusCounts(ctx context.Context, db *sql.DB, runID string) (map[model.Status]int, error) {
	rows, err := db.QueryContext(ctx, `
SELECT status, COUNT(*) FROM records WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[model.Status(status)] = n
	}
	return counts, rows.Err()
}
