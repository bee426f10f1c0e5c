package service

import (
	"errors"
	"testing"
	"time"

	"github.com/studentperks/internal/constants"
	"github.com/studentperks/internal/models"
	"github.com/studentperks/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type discountServiceFixture struct {
	db       *gorm.DB
	service  *DiscountService
	merchant models.Merchant
	branch   models.Branch
	student  models.Student
}

func setupDiscountServiceTest(t *testing.T, name string, strategies ...RedemptionStrategy) *discountServiceFixture {
	t.Helper()
	db := openRedemptionTestDB(t, name)

	fixture := &discountServiceFixture{db: db}
	fixture.merchant = models.Merchant{Name: "Bonus Merchant", Status: constants.MerchantStatusActive}
	if err := db.Create(&fixture.merchant).Error; err != nil {
		t.Fatalf("create merchant failed: %v", err)
	}
	fixture.branch = models.Branch{MerchantID: fixture.merchant.ID, Name: "Bonus Branch", IsActive: true}
	if err := db.Create(&fixture.branch).Error; err != nil {
		t.Fatalf("create branch failed: %v", err)
	}
	fixture.student = createVerifiedStudent(t, db, "bonus@test.local")

	fixture.service = NewDiscountService(
		repository.NewRedemptionRepository(db),
		repository.NewBonusSettingRepository(db),
		repository.NewStatsRepository(db),
		strategies...,
	)
	return fixture
}

func baseOffer(merchantID uint) *models.Offer {
	return &models.Offer{
		MerchantID:    merchantID,
		Title:         "Base Offer",
		DiscountType:  constants.DiscountTypeFixed,
		DiscountValue: models.NewMoneyFromDecimal(decimal.RequireFromString("3.50")),
	}
}

func TestResolveBaseOffer(t *testing.T) {
	fixture := setupDiscountServiceTest(t, "discount_base")

	resolution, err := fixture.service.ResolveTx(fixture.db, &fixture.student, baseOffer(fixture.merchant.ID), &fixture.branch, time.Now())
	if err != nil {
		t.Fatalf("ResolveTx error: %v", err)
	}
	if resolution.DiscountType != constants.DiscountTypeFixed {
		t.Fatalf("expected fixed discount, got %s", resolution.DiscountType)
	}
	if !resolution.DiscountValue.Decimal.Equal(decimal.RequireFromString("3.50")) {
		t.Fatalf("expected 3.50, got %s", resolution.DiscountValue.String())
	}
	if resolution.BonusApplied {
		t.Fatalf("expected no bonus on base resolution")
	}
}

func TestResolveBranchBonusNthVisit(t *testing.T) {
	fixture := setupDiscountServiceTest(t, "discount_bonus_nth")

	bonus := models.BranchBonusSetting{
		BranchID:            fixture.branch.ID,
		RedemptionsRequired: 3,
		DiscountType:        constants.DiscountTypePercent,
		DiscountValue:       models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		MaxDiscount:         models.NewMoneyFromDecimal(decimal.NewFromInt(8)),
		RewardDescription:   "every third visit half price",
		IsActive:            true,
	}
	if err := fixture.db.Create(&bonus).Error; err != nil {
		t.Fatalf("create bonus setting failed: %v", err)
	}
	stats := models.StudentBranchStats{StudentID: fixture.student.ID, BranchID: fixture.branch.ID, RedemptionCount: 2}
	if err := fixture.db.Create(&stats).Error; err != nil {
		t.Fatalf("create stats failed: %v", err)
	}

	resolution, err := fixture.service.ResolveTx(fixture.db, &fixture.student, baseOffer(fixture.merchant.ID), &fixture.branch, time.Now())
	if err != nil {
		t.Fatalf("ResolveTx error: %v", err)
	}
	if !resolution.BonusApplied {
		t.Fatalf("expected bonus on the third visit")
	}
	if resolution.DiscountType != constants.DiscountTypePercent {
		t.Fatalf("expected percent bonus, got %s", resolution.DiscountType)
	}
	// The configured 50 percent is clamped by the bonus cap.
	if !resolution.DiscountValue.Decimal.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("expected capped value 8, got %s", resolution.DiscountValue.String())
	}
	if resolution.Note != "every third visit half price" {
		t.Fatalf("unexpected note: %q", resolution.Note)
	}
}

func TestResolveBranchBonusNotNthVisit(t *testing.T) {
	fixture := setupDiscountServiceTest(t, "discount_bonus_skip")

	bonus := models.BranchBonusSetting{
		BranchID:            fixture.branch.ID,
		RedemptionsRequired: 3,
		DiscountType:        constants.DiscountTypeFixed,
		DiscountValue:       models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive:            true,
	}
	if err := fixture.db.Create(&bonus).Error; err != nil {
		t.Fatalf("create bonus setting failed: %v", err)
	}
	stats := models.StudentBranchStats{StudentID: fixture.student.ID, BranchID: fixture.branch.ID, RedemptionCount: 1}
	if err := fixture.db.Create(&stats).Error; err != nil {
		t.Fatalf("create stats failed: %v", err)
	}

	resolution, err := fixture.service.ResolveTx(fixture.db, &fixture.student, baseOffer(fixture.merchant.ID), &fixture.branch, time.Now())
	if err != nil {
		t.Fatalf("ResolveTx error: %v", err)
	}
	if resolution.BonusApplied {
		t.Fatalf("expected base discount before the third visit")
	}
	if !resolution.DiscountValue.Decimal.Equal(decimal.RequireFromString("3.50")) {
		t.Fatalf("expected base value 3.50, got %s", resolution.DiscountValue.String())
	}
}

func TestResolveStrategyOverridesBonus(t *testing.T) {
	fixture := setupDiscountServiceTest(t, "discount_strategy_override", NewStreakStrategy())

	bonus := models.BranchBonusSetting{
		BranchID:            fixture.branch.ID,
		RedemptionsRequired: 1,
		DiscountType:        constants.DiscountTypeFixed,
		DiscountValue:       models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive:            true,
	}
	if err := fixture.db.Create(&bonus).Error; err != nil {
		t.Fatalf("create bonus setting failed: %v", err)
	}

	offer := baseOffer(fixture.merchant.ID)
	offer.StrategyID = constants.StrategyStreak
	resolution, err := fixture.service.ResolveTx(fixture.db, &fixture.student, offer, &fixture.branch, time.Now())
	if err != nil {
		t.Fatalf("ResolveTx error: %v", err)
	}
	if resolution.BonusApplied {
		t.Fatalf("strategy result must not carry the branch bonus flag")
	}
	if resolution.DiscountType != constants.DiscountTypePercent {
		t.Fatalf("expected strategy percent discount, got %s", resolution.DiscountType)
	}
	if !resolution.DiscountValue.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected first streak visit 20%%, got %s", resolution.DiscountValue.String())
	}
}

func TestResolveUnknownStrategy(t *testing.T) {
	fixture := setupDiscountServiceTest(t, "discount_strategy_unknown")

	offer := baseOffer(fixture.merchant.ID)
	offer.StrategyID = "strategy_missing"
	if _, err := fixture.service.ResolveTx(fixture.db, &fixture.student, offer, &fixture.branch, time.Now()); !errors.Is(err, ErrStrategyUnknown) {
		t.Fatalf("expected ErrStrategyUnknown, got %v", err)
	}
}
