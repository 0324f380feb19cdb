package receipt

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils/tests"
)

// sqlRecorder captures the SQL gorm builds so queries can be checked
// without a live database.
type sqlRecorder struct {
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface     { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {
}
func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.statements = append(r.statements, sql)
}

func dryRunDB(t *testing.T, recorder *sqlRecorder) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true, Logger: recorder})
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	if len(r.statements) == 0 {
		t.Fatal("expected a query to be built")
	}
	return r.statements[len(r.statements)-1]
}

func TestGetReceiptsQueriesNewestFirst(t *testing.T) {
	recorder := &sqlRecorder{}
	repo := NewReceiptRepository(dryRunDB(t, recorder))

	if _, err := repo.GetReceipts(context.Background(), testUserID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sql := recorder.last(t)
	if !strings.Contains(sql, "ORDER BY created_at desc") {
		t.Fatalf("expected newest-first ordering, got %q", sql)
	}
	if !strings.Contains(sql, "user_id") {
		t.Fatalf("expected owner scoping, got %q", sql)
	}
}

func TestGetReceiptByIDScopesByOwner(t *testing.T) {
	recorder := &sqlRecorder{}
	repo := NewReceiptRepository(dryRunDB(t, recorder))

	repo.GetReceiptByID(context.Background(), "b2a7c921-0000-0000-0000-000000000000", testUserID)

	sql := recorder.last(t)
	if !strings.Contains(sql, "id = ") || !strings.Contains(sql, "user_id = ") {
		t.Fatalf("expected lookup scoped by id and owner, got %q", sql)
	}
}
