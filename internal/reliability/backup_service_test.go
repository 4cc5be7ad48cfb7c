package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aristath/riskanalyzer/internal/database"
	"github.com/aristath/riskanalyzer/internal/events"
	testdb "github.com/aristath/riskanalyzer/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	listErr   error
	deleteErr map[string]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte), deleteErr: make(map[string]error)}
}

func (m *memoryStore) Upload(ctx context.Context, key string, body io.Reader, size int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, SizeBytes: int64(len(data))})
		}
	}
	return out, nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	if err := m.deleteErr[key]; err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var backupNow = time.Date(2025, 3, 14, 2, 30, 0, 0, time.UTC)

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	files := make(map[string][]byte)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[hdr.Name] = content
	}
	return files
}

func TestBackupService_CreateAndUploadBackup(t *testing.T) {
	analysisDB := testdb.NewTestDB(t, database.NameAnalysis)
	cacheDB := testdb.NewTestDB(t, database.NameCache)

	_, err := analysisDB.Conn().Exec(`INSERT INTO analyses
		(id, ticker, period, data_source, risk_level, risk_score, risk_free_rate, payload, created_at)
		VALUES ('a1', 'AAPL', '1y', 'simulated', 'Low', -3, 0.02, x'00', 1)`)
	require.NoError(t, err)

	bus := events.NewBus()
	sub := bus.Subscribe(4, events.BackupCompleted)
	defer sub.Close()

	store := newMemoryStore()
	service := NewBackupService(store, []*database.DB{analysisDB, cacheDB}, t.TempDir(), events.NewManager(bus, zerolog.Nop()), zerolog.Nop())
	service.now = func() time.Time { return backupNow }

	key, err := service.CreateAndUploadBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "riskanalyzer-backup-2025-03-14-023000.tar.gz", key)
	require.Equal(t, []string{key}, store.keys())

	files := readArchive(t, store.objects[key])
	require.Contains(t, files, "analysis.db")
	require.Contains(t, files, "cache.db")
	require.Contains(t, files, metadataFilename)

	var metadata BackupMetadata
	require.NoError(t, json.Unmarshal(files[metadataFilename], &metadata))
	assert.True(t, metadata.Timestamp.Equal(backupNow))
	require.Len(t, metadata.Databases, 2)
	assert.Equal(t, "analysis", metadata.Databases[0].Name)
	assert.Equal(t, fmt.Sprintf("sha256:%x", sha256.Sum256(files["analysis.db"])), metadata.Databases[0].Checksum)
	assert.Equal(t, int64(len(files["cache.db"])), metadata.Databases[1].SizeBytes)

	select {
	case evt := <-sub.C():
		assert.Equal(t, events.BackupCompleted, evt.Type)
		assert.Equal(t, key, evt.Data["key"])
	case <-time.After(time.Second):
		t.Fatal("expected backup completed event")
	}
}

func TestBackupService_CreateAndUploadBackup_SnapshotFailure(t *testing.T) {
	db := testdb.NewTestDB(t, database.NameAnalysis)
	require.NoError(t, db.Close())

	store := newMemoryStore()
	service := NewBackupService(store, []*database.DB{db}, t.TempDir(), nil, zerolog.Nop())

	_, err := service.CreateAndUploadBackup(context.Background())
	assert.Error(t, err)
	assert.Empty(t, store.keys())
}

func seedBackups(store *memoryStore, ages ...time.Duration) []string {
	keys := make([]string, len(ages))
	for i, age := range ages {
		keys[i] = backupPrefix + backupNow.Add(-age).Format(backupTimeLayout) + backupSuffix
		store.objects[keys[i]] = []byte("x")
	}
	return keys
}

func TestBackupService_ListBackups(t *testing.T) {
	store := newMemoryStore()
	keys := seedBackups(store, 48*time.Hour, time.Hour)
	store.objects[backupPrefix+"garbage"+backupSuffix] = []byte("x")

	service := NewBackupService(store, nil, t.TempDir(), nil, zerolog.Nop())
	service.now = func() time.Time { return backupNow }

	backups, err := service.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, keys[1], backups[0].Key)
	assert.EqualValues(t, 1, backups[0].AgeHours)
	assert.Equal(t, keys[0], backups[1].Key)
	assert.EqualValues(t, 48, backups[1].AgeHours)
}

func TestBackupService_RotateOldBackups(t *testing.T) {
	day := 24 * time.Hour
	store := newMemoryStore()
	keys := seedBackups(store, 1*day, 2*day, 10*day, 20*day, 30*day)

	service := NewBackupService(store, nil, t.TempDir(), nil, zerolog.Nop())
	service.now = func() time.Time { return backupNow }

	deleted, err := service.RotateOldBackups(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining := store.keys()
	assert.Len(t, remaining, 3)
	assert.Contains(t, remaining, keys[2], "the newest three are kept even when expired")
	assert.NotContains(t, remaining, keys[3])
	assert.NotContains(t, remaining, keys[4])
}

func TestBackupService_RotateOldBackups_KeepsMinimum(t *testing.T) {
	day := 24 * time.Hour
	store := newMemoryStore()
	seedBackups(store, 40*day, 50*day, 60*day)

	service := NewBackupService(store, nil, t.TempDir(), nil, zerolog.Nop())
	service.now = func() time.Time { return backupNow }

	deleted, err := service.RotateOldBackups(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Len(t, store.keys(), 3)

	deleted, err = service.RotateOldBackups(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestBackupService_RotateOldBackups_DeleteFailureContinues(t *testing.T) {
	day := 24 * time.Hour
	store := newMemoryStore()
	keys := seedBackups(store, 1*day, 2*day, 3*day, 20*day, 30*day)
	store.deleteErr[keys[3]] = errors.New("denied")

	service := NewBackupService(store, nil, t.TempDir(), nil, zerolog.Nop())
	service.now = func() time.Time { return backupNow }

	deleted, err := service.RotateOldBackups(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Contains(t, store.keys(), keys[3])
}

func TestBackupService_ListError(t *testing.T) {
	store := newMemoryStore()
	store.listErr = errors.New("unreachable")
	service := NewBackupService(store, nil, t.TempDir(), nil, zerolog.Nop())

	_, err := service.RotateOldBackups(context.Background(), 7)
	assert.Error(t, err)
}
