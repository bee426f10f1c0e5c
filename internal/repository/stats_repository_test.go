package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/studentperks/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupStatsRepositoryTest(t *testing.T) *GormStatsRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:stats_repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.StudentBranchStats{}, &models.StudentMerchantStats{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewStatsRepository(db)
}

func TestIncrementBranchStatsCreatesAndAccumulates(t *testing.T) {
	repo := setupStatsRepositoryTest(t)
	now := time.Now()
	savings := models.NewMoneyFromDecimal(decimal.RequireFromString("2.50"))

	if err := repo.IncrementBranchStats(1, 7, savings, now); err != nil {
		t.Fatalf("first increment error: %v", err)
	}
	if err := repo.IncrementBranchStats(1, 7, savings, now); err != nil {
		t.Fatalf("second increment error: %v", err)
	}

	stats, err := repo.GetBranchStats(1, 7)
	if err != nil {
		t.Fatalf("GetBranchStats error: %v", err)
	}
	if stats == nil {
		t.Fatalf("expected stats row")
	}
	if stats.RedemptionCount != 2 {
		t.Fatalf("expected count 2, got %d", stats.RedemptionCount)
	}
	if !stats.TotalSavings.Decimal.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected savings 5.00, got %s", stats.TotalSavings.String())
	}
	if stats.LastRedemptionAt == nil {
		t.Fatalf("expected last_redemption_at to be set")
	}
}

func TestDecrementBranchStatsGuard(t *testing.T) {
	repo := setupStatsRepositoryTest(t)
	now := time.Now()
	savings := models.NewMoneyFromDecimal(decimal.NewFromInt(3))

	if err := repo.IncrementBranchStats(2, 9, savings, now); err != nil {
		t.Fatalf("increment error: %v", err)
	}

	affected, err := repo.DecrementBranchStats(2, 9, savings, now)
	if err != nil {
		t.Fatalf("decrement error: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	// The row is exhausted, a second decrement must not go negative.
	affected, err = repo.DecrementBranchStats(2, 9, savings, now)
	if err != nil {
		t.Fatalf("decrement error: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected guard to reject decrement, got %d rows", affected)
	}

	stats, err := repo.GetBranchStats(2, 9)
	if err != nil {
		t.Fatalf("GetBranchStats error: %v", err)
	}
	if stats.RedemptionCount != 0 || !stats.TotalSavings.Decimal.Equal(decimal.Zero) {
		t.Fatalf("expected zeroed stats, got count=%d savings=%s", stats.RedemptionCount, stats.TotalSavings.String())
	}
}

func TestDecrementMerchantStatsMissingRow(t *testing.T) {
	repo := setupStatsRepositoryTest(t)

	affected, err := repo.DecrementMerchantStats(3, 11, models.NewMoneyFromDecimal(decimal.NewFromInt(1)), time.Now())
	if err != nil {
		t.Fatalf("decrement error: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows for missing stats, got %d", affected)
	}
}
