package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
)

var testDB *gorm.DB

// TestMain connects to TEST_DB_HOST when set, otherwise to a throwaway postgres container
func TestMain(m *testing.M) {
	ctx := context.Background()

	dsn, terminate, err := testDSN(ctx)
	if err != nil {
		fmt.Printf("Failed to prepare test database: %v\n", err)
		os.Exit(1)
	}

	code := 1
	if testDB, err = openTestDB(dsn); err != nil {
		fmt.Printf("Failed to initialize test database: %v\n", err)
	} else {
		code = m.Run()
	}

	terminate()
	os.Exit(code)
}

func testDSN(ctx context.Context) (string, func(), error) {
	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host,
			envOr("TEST_DB_PORT", "5432"),
			envOr("TEST_DB_USER", "postgres"),
			envOr("TEST_DB_PASSWORD", "postgres"),
			envOr("TEST_DB_NAME", "collection_indexer_test"))
		return dsn, func() {}, nil
	}

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("collection_indexer_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return "", nil, fmt.Errorf("failed to start postgres container: %w", err)
	}
	terminate := func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate postgres container: %v\n", err)
		}
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("failed to get connection string: %w", err)
	}
	return dsn, terminate, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openTestDB connects and applies db/init_pg_db.sql
func openTestDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	ddl, err := os.ReadFile(filepath.Join("..", "..", "db", "init_pg_db.sql")) //nolint:gosec,G304
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if _, err := sqlDB.Exec(string(ddl)); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}

// newTxStore returns a store bound to a transaction rolled back at the end of the test
func newTxStore(t *testing.T) Store {
	tx := testDB.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })
	return NewPGStore(tx)
}

func TestPostgreSQLStore(t *testing.T) {
	require.NotNil(t, testDB, "test database not initialized")
	RunStoreTests(t, newTxStore)
}

// TestLockNextWaitingSnapshotJobConcurrent checks that concurrent workers never lock the same job.
// It runs against committed data, so it cleans up after itself.
func TestLockNextWaitingSnapshotJobConcurrent(t *testing.T) {
	require.NotNil(t, testDB, "test database not initialized")

	ctx := context.Background()
	store := NewPGStore(testDB)

	const collections = 5
	const workers = 10

	partitions := make([]string, 0, collections)
	for i := 0; i < collections; i++ {
		contract := fmt.Sprintf("0x%040x", 0xc0ffee00+i)
		collection, err := store.UpsertOrSelectCollection(ctx, domain.ChainEthereumMainnet, contract)
		require.NoError(t, err)
		partitions = append(partitions, collection.Partition)
	}

	t.Cleanup(func() {
		testDB.Exec("DELETE FROM indexed_collections WHERE partition IN ?", partitions)
	})

	var mu sync.Mutex
	locked := make(map[domain.Partition]string)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			job, err := store.LockNextWaitingSnapshotJob(ctx, LockSnapshotJobInput{
				LockOwner:   fmt.Sprintf("snap-worker-%d", worker),
				TargetBlock: 100,
				Now:         time.Now().UTC(),
				StaleBefore: time.Now().UTC().Add(-30 * time.Minute),
			})
			assert.NoError(t, err)
			if job == nil {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if previous, ok := locked[job.Partition]; ok {
				t.Errorf("partition %s locked by both %s and %s", job.Partition, previous, job.LockOwner)
			}
			locked[job.Partition] = job.LockOwner
		}(w)
	}
	wg.Wait()

	assert.Len(t, locked, collections)
}

// TestLockNextWaitingSnapshotJobSingleEligible races many lockers for one waiting partition.
// Exactly one must win; every other locker gets nil without an error.
func TestLockNextWaitingSnapshotJobSingleEligible(t *testing.T) {
	require.NotNil(t, testDB, "test database not initialized")

	ctx := context.Background()
	store := NewPGStore(testDB)

	collection, err := store.UpsertOrSelectCollection(ctx, domain.ChainEthereumMainnet, "0x00000000000000000000000000000000c0ffee99")
	require.NoError(t, err)
	t.Cleanup(func() {
		testDB.Exec("DELETE FROM indexed_collections WHERE partition = ?", collection.Partition)
	})

	const lockers = 12
	now := time.Now().UTC()

	type outcome struct {
		job *SnapshotJob
		err error
	}
	outcomes := make(chan outcome, lockers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for w := 0; w < lockers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			<-start
			job, err := store.LockNextWaitingSnapshotJob(ctx, LockSnapshotJobInput{
				LockOwner:   fmt.Sprintf("snap-single-%d", worker),
				TargetBlock: 100,
				Now:         now,
				StaleBefore: now.Add(-16 * time.Minute),
			})
			outcomes <- outcome{job: job, err: err}
		}(w)
	}
	close(start)
	wg.Wait()
	close(outcomes)

	var winners []*SnapshotJob
	nils := 0
	for o := range outcomes {
		require.NoError(t, o.err)
		if o.job == nil {
			nils++
			continue
		}
		winners = append(winners, o.job)
	}

	require.Len(t, winners, 1)
	assert.Equal(t, lockers-1, nils)
	assert.Equal(t, domain.Partition(collection.Partition), winners[0].Partition)

	stored, err := store.FindCollectionInfo(ctx, domain.Partition(collection.Partition))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.IndexingStatusSnapshotting, stored.Status)
	require.NotNil(t, stored.SnapshotLockOwner)
	assert.Equal(t, winners[0].LockOwner, *stored.SnapshotLockOwner)
}
