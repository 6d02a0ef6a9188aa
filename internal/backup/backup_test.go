package backup

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/rfduarte/feira/internal/database"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu       sync.Mutex
	objects  map[string][]byte
	modified map[string]time.Time
	putErr   error
	delErr   error
	listErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{
		objects:  make(map[string][]byte),
		modified: make(map[string]time.Time),
	}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	m.modified[*input.Key] = time.Now().UTC()
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) ListObjectsV2(_ context.Context, input *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var contents []types.Object
	for key := range m.objects {
		if input.Prefix != nil && !strings.HasPrefix(key, *input.Prefix) {
			continue
		}
		mod := m.modified[key]
		contents = append(contents, types.Object{Key: aws.String(key), LastModified: &mod})
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	delete(m.modified, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func testConfig() Config {
	return Config{
		S3:            S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase:    "test-passphrase",
		RetentionDays: 30,
	}
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config -> disabled
	m := NewManager(Config{}, nil, nil, slog.Default())
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	// Missing passphrase -> still disabled
	cfg := testConfig()
	cfg.Passphrase = ""
	m2 := NewManager(cfg, nil, nil, slog.Default())
	if m2.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q without passphrase", m2.Status().State, StateDisabled)
	}

	// Full config -> idle
	m3 := NewManager(testConfig(), nil, nil, slog.Default())
	if m3.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m3.Status().State, StateIdle)
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(testConfig(), nil, cb, slog.Default())

	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning {
		t.Errorf("first callback state = %q, want %q", received[0].State, StateRunning)
	}
	if received[1].State != StateIdle {
		t.Errorf("second callback state = %q, want %q", received[1].State, StateIdle)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(testConfig(), nil, nil, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, nil, slog.Default())

	ctx := context.Background()
	m.Start(ctx) // should be a no-op for disabled state

	// Stop should not block
	m.Stop()
}

func setupBackupDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "feira.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, dbPath
}

func TestRunNowUploadsEncryptedSnapshot(t *testing.T) {
	db, dbPath := setupBackupDB(t)

	cfg := testConfig()
	cfg.DBPath = dbPath
	m := NewManager(cfg, db, nil, slog.Default())
	mock := newMockS3()
	m.client = mock

	if err := m.RunNow(context.Background()); err != nil {
		t.Fatalf("run backup: %v", err)
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	if len(mock.objects) != 1 {
		t.Fatalf("uploaded %d objects, want 1", len(mock.objects))
	}
	for key, data := range mock.objects {
		if !strings.HasPrefix(key, keyPrefix) {
			t.Errorf("key = %q, want %q prefix", key, keyPrefix)
		}
		if !strings.HasSuffix(key, ".db.enc") {
			t.Errorf("key = %q, want .db.enc suffix", key)
		}
		// SQLite files start with a fixed magic header; ciphertext must not.
		if strings.HasPrefix(string(data), "SQLite format 3") {
			t.Error("uploaded data is not encrypted")
		}
	}

	status := m.Status()
	if status.State != StateIdle || status.LastBackup == nil {
		t.Errorf("status after backup = %+v", status)
	}
}

func TestRunNowUnconfigured(t *testing.T) {
	m := NewManager(Config{}, nil, nil, slog.Default())
	if err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected error when not configured")
	}
}

func TestCleanupDeletesOldSnapshots(t *testing.T) {
	cfg := testConfig()
	cfg.RetentionDays = 7
	m := NewManager(cfg, nil, nil, slog.Default())
	mock := newMockS3()
	m.client = mock

	mock.objects[keyPrefix+"backup-old.db.enc"] = []byte("old")
	mock.modified[keyPrefix+"backup-old.db.enc"] = time.Now().UTC().AddDate(0, 0, -10)
	mock.objects[keyPrefix+"backup-new.db.enc"] = []byte("new")
	mock.modified[keyPrefix+"backup-new.db.enc"] = time.Now().UTC()

	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	if _, ok := mock.objects[keyPrefix+"backup-old.db.enc"]; ok {
		t.Error("old snapshot should have been deleted")
	}
	if _, ok := mock.objects[keyPrefix+"backup-new.db.enc"]; !ok {
		t.Error("recent snapshot should have been kept")
	}
}
