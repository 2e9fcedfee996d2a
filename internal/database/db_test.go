package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nac_patrimony_crawler/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "sub", "res.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecords() []model.DetailRecord {
	return []model.DetailRecord{
		{Identifier: "10.0.0.2", AssetID: "-", User: "ANA", PrimaryOwner: "-", CoOwner: "-", Status: model.StatusNoOwnership},
		{Identifier: "10.0.0.1", AssetID: "554433", User: "BRUNO", PrimaryOwner: "BRUNO", CoOwner: "CARLA", Status: model.StatusOwnerIsUser},
		{Identifier: "10.0.0.9", AssetID: "-", User: "-", PrimaryOwner: "-", CoOwner: "-", Status: model.StatusLoadFailed},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	id, err := SaveRun(ctx, db, Run{
		TaskID:     "20250301_00000001",
		Source:     "https://portal/lista.php?blocoConsulta=4",
		Context:    "4",
		Status:     RunCompleted,
		Skipped:    1,
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
	}, testRecords())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("expected uuid run id, got %q", id)
	}

	run, err := GetRun(ctx, db, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Total != 3 || run.Skipped != 1 || run.Context != "4" || !run.StartedAt.Equal(started) {
		t.Errorf("unexpected run %+v", run)
	}

	records, err := LoadRecords(ctx, db, id)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	want := testRecords()
	if len(records) != len(want) {
		t.Fatalf("records = %d", len(records))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, records[i], want[i])
		}
	}
}

func TestLoadRecordsUnknownRun(t *testing.T) {
	db := openTestDB(t)
	_, err := LoadRecords(context.Background(), db, "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestEmptyRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	id, err := SaveRun(ctx, db, Run{TaskID: "t", Source: "s", Status: RunCompleted}, nil)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	records, err := LoadRecords(ctx, db, id)
	if err != nil || records == nil || len(records) != 0 {
		t.Errorf("records=%v err=%v", records, err)
	}
}

func TestStatusCounts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	id, err := SaveRun(ctx, db, Run{TaskID: "t", Source: "s", Status: RunCompleted}, testRecords())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	counts, err := StatusCounts(ctx, db, id)
	if err != nil {
		t.Fatalf("StatusCounts: %v", err)
	}
	if counts[model.StatusOwnerIsUser] != 1 || counts[model.StatusLoadFailed] != 1 || counts[model.StatusNotLinked] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestInitDBTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "res.db")
	for i := 0; i < 2; i++ {
		db, err := InitDB(path)
		if err != nil {
			t.Fatalf("InitDB #%d: %v", i+1, err)
		}
		db.Close()
	}
}
