package db

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arencloud/sitedeploy/internal/config"
	"github.com/arencloud/sitedeploy/internal/deploy"
	"github.com/arencloud/sitedeploy/internal/logging"
	"github.com/arencloud/sitedeploy/internal/models"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	cfg := &config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "nested", "deploys.db")}
	gdb, err := Open(cfg, logging.New("test"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	return NewHistory(gdb)
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "postgres"}, logging.New("test"))
	if err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestHistoryRecordAndGet(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()
	start := time.Now().Add(-2 * time.Second)
	res := &deploy.Result{
		Bucket: "color-block", Region: "ap-south-1",
		URL:   deploy.WebsiteURL("color-block", "ap-south-1"),
		Stage: deploy.StageDone,
		Objects: []deploy.UploadItem{
			{Key: "sub/b.js", ContentType: "text/javascript", Size: 14},
			{Key: "a.html", ContentType: "text/html", Size: 13},
		},
		Bytes:   27,
		Started: start,
		Ended:   start.Add(time.Second),
	}
	if err := h.Record(ctx, res); err != nil {
		t.Fatalf("record: %v", err)
	}
	rows, err := h.List(ctx, 10)
	if err != nil || len(rows) != 1 {
		t.Fatalf("list: %v %d", err, len(rows))
	}
	got, err := h.Get(ctx, rows[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusSucceeded || got.Stage != "done" || got.URL != res.URL {
		t.Fatalf("unexpected row %+v", got)
	}
	if got.Files != 2 || got.Bytes != 27 || got.DurationNs != int64(time.Second) {
		t.Fatalf("unexpected counters %+v", got)
	}
	if len(got.Objects) != 2 || got.Objects[0].Key != "a.html" || got.Objects[1].Key != "sub/b.js" {
		t.Fatalf("unexpected objects %+v", got.Objects)
	}
}

func TestHistoryRecordsFailureStage(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()
	res := &deploy.Result{
		Bucket: "color-block", Region: "ap-south-1",
		Stage:   deploy.StageFailed,
		Err:     &deploy.StageError{Stage: deploy.StageBuilt, Err: errors.New("access denied")},
		Started: time.Now(), Ended: time.Now(),
	}
	if err := h.Record(ctx, res); err != nil {
		t.Fatal(err)
	}
	rows, _ := h.List(ctx, 0)
	if len(rows) != 1 || rows[0].Status != models.StatusFailed || rows[0].Stage != "built" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if rows[0].Error != "ensure bucket: access denied" {
		t.Fatalf("error = %q", rows[0].Error)
	}
}

func TestHistoryListNewestFirstAndNotFound(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 3; i++ {
		started := base.Add(time.Duration(i) * time.Minute)
		if err := h.Record(ctx, &deploy.Result{Bucket: "b", Stage: deploy.StageDone, Started: started, Ended: started}); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := h.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || !rows[0].StartedAt.After(rows[1].StartedAt) {
		t.Fatalf("expected 2 rows newest first, got %+v", rows)
	}
	if _, err := h.Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// interruptedStore cancels the deploy while the bucket is being created.
type interruptedStore struct{ cancel context.CancelFunc }

func (s interruptedStore) CreateBucket(ctx context.Context, _, _ string) error {
	s.cancel()
	return ctx.Err()
}
func (interruptedStore) PutWebsite(context.Context, string, string, string) error { return nil }
func (interruptedStore) PutPolicy(context.Context, string, string) error          { return nil }
func (interruptedStore) Upload(context.Context, string, string, io.Reader, int64, string) error {
	return nil
}

func TestInterruptedDeployIsRecorded(t *testing.T) {
	h := openTestHistory(t)
	dist := t.TempDir()
	if err := os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	target := deploy.Target{Bucket: "color-block", Region: "ap-south-1", OutputDir: dist, SkipBuild: true}
	d := deploy.New(target, interruptedStore{cancel: cancel}, nil, logging.New("test")).WithRecorder(h)
	if _, err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	rows, err := h.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Status != models.StatusFailed || rows[0].Stage != string(deploy.StageBuilt) {
		t.Fatalf("expected one failed row, got %+v", rows)
	}
}
