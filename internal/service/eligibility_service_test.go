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

type eligibilityFixture struct {
	db       *gorm.DB
	service  *EligibilityService
	merchant models.Merchant
	branch   models.Branch
}

func setupEligibilityTest(t *testing.T, name string) *eligibilityFixture {
	t.Helper()
	db := openRedemptionTestDB(t, name)

	fixture := &eligibilityFixture{db: db}
	fixture.merchant = models.Merchant{Name: "Schedule Merchant", Status: constants.MerchantStatusActive}
	if err := db.Create(&fixture.merchant).Error; err != nil {
		t.Fatalf("create merchant failed: %v", err)
	}
	fixture.branch = models.Branch{MerchantID: fixture.merchant.ID, Name: "Schedule Branch", IsActive: true}
	if err := db.Create(&fixture.branch).Error; err != nil {
		t.Fatalf("create branch failed: %v", err)
	}

	fixture.service = NewEligibilityService(
		repository.NewOfferRepository(db),
		repository.NewRedemptionRepository(db),
	)
	return fixture
}

func (f *eligibilityFixture) createOffer(t *testing.T, mutate func(*models.Offer)) *models.Offer {
	t.Helper()
	now := time.Now()
	offer := &models.Offer{
		MerchantID:    f.merchant.ID,
		Title:         "Schedule Offer",
		DiscountType:  constants.DiscountTypePercent,
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		ValidFrom:     now.AddDate(0, 0, -7),
		ValidUntil:    now.AddDate(0, 1, 0),
		IsActive:      true,
		ScheduleType:  constants.ScheduleTypeAlways,
	}
	if mutate != nil {
		mutate(offer)
	}
	if err := f.db.Create(offer).Error; err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	assignment := models.OfferBranch{OfferID: offer.ID, IsActive: true}
	if err := f.db.Create(&assignment).Error; err != nil {
		t.Fatalf("create assignment failed: %v", err)
	}
	return offer
}

func TestCheckOfferValidationOrder(t *testing.T) {
	fixture := setupEligibilityTest(t, "eligibility_order")
	now := time.Now()

	inactive := fixture.createOffer(t, func(o *models.Offer) {
		o.IsActive = false
		o.ValidUntil = now.AddDate(0, 0, -1) // also expired, inactive wins
	})
	if err := fixture.service.CheckOfferTx(fixture.db, inactive, fixture.branch.ID, now); !errors.Is(err, ErrOfferInactive) {
		t.Fatalf("expected ErrOfferInactive, got %v", err)
	}

	future := fixture.createOffer(t, func(o *models.Offer) {
		o.ValidFrom = now.AddDate(0, 0, 1)
	})
	if err := fixture.service.CheckOfferTx(fixture.db, future, fixture.branch.ID, now); !errors.Is(err, ErrOfferNotStarted) {
		t.Fatalf("expected ErrOfferNotStarted, got %v", err)
	}

	expired := fixture.createOffer(t, func(o *models.Offer) {
		o.ValidUntil = now.AddDate(0, 0, -1)
	})
	if err := fixture.service.CheckOfferTx(fixture.db, expired, fixture.branch.ID, now); !errors.Is(err, ErrOfferExpired) {
		t.Fatalf("expected ErrOfferExpired, got %v", err)
	}

	unassigned := fixture.createOffer(t, nil)
	if err := fixture.db.Where("offer_id = ?", unassigned.ID).Delete(&models.OfferBranch{}).Error; err != nil {
		t.Fatalf("remove assignment failed: %v", err)
	}
	if err := fixture.service.CheckOfferTx(fixture.db, unassigned, fixture.branch.ID, now); !errors.Is(err, ErrOfferNotAtBranch) {
		t.Fatalf("expected ErrOfferNotAtBranch, got %v", err)
	}

	exhausted := fixture.createOffer(t, func(o *models.Offer) {
		o.TotalLimit = 10
		o.CurrentRedemptions = 10
	})
	if err := fixture.service.CheckOfferTx(fixture.db, exhausted, fixture.branch.ID, now); !errors.Is(err, ErrOfferTotalLimit) {
		t.Fatalf("expected ErrOfferTotalLimit, got %v", err)
	}

	ok := fixture.createOffer(t, nil)
	if err := fixture.service.CheckOfferTx(fixture.db, ok, fixture.branch.ID, now); err != nil {
		t.Fatalf("expected eligible offer, got %v", err)
	}
}

func TestCheckOfferDailyLimit(t *testing.T) {
	fixture := setupEligibilityTest(t, "eligibility_daily")
	now := time.Now()

	offer := fixture.createOffer(t, func(o *models.Offer) {
		o.DailyLimit = 1
	})
	student := createVerifiedStudent(t, fixture.db, "daily@test.local")
	redemption := models.Redemption{
		StudentID:      student.ID,
		OfferID:        offer.ID,
		BranchID:       fixture.branch.ID,
		Status:         constants.RedemptionStatusVerified,
		DiscountType:   constants.DiscountTypePercent,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		CreatedAt:      now.Add(-time.Minute),
	}
	if err := fixture.db.Create(&redemption).Error; err != nil {
		t.Fatalf("create redemption failed: %v", err)
	}

	if err := fixture.service.CheckOfferTx(fixture.db, offer, fixture.branch.ID, now); !errors.Is(err, ErrOfferDailyLimit) {
		t.Fatalf("expected ErrOfferDailyLimit, got %v", err)
	}

	// Rejected redemptions do not count towards the limit.
	rejectedAt := now
	if err := fixture.db.Model(&models.Redemption{}).Where("id = ?", redemption.ID).
		Updates(map[string]interface{}{"status": constants.RedemptionStatusRejected, "rejected_at": rejectedAt}).Error; err != nil {
		t.Fatalf("reject redemption failed: %v", err)
	}
	if err := fixture.service.CheckOfferTx(fixture.db, offer, fixture.branch.ID, now); err != nil {
		t.Fatalf("expected eligible after rejection, got %v", err)
	}
}

func TestScheduleAllows(t *testing.T) {
	weekdayOffer := &models.Offer{
		ScheduleType: constants.ScheduleTypeCustom,
		AllowedDays:  "[1,2,3,4,5]",
		StartTime:    "09:00",
		EndTime:      "17:00",
	}
	lateNightOffer := &models.Offer{
		ScheduleType: constants.ScheduleTypeCustom,
		StartTime:    "22:00",
		EndTime:      "02:00",
	}

	cases := []struct {
		name  string
		offer *models.Offer
		now   time.Time
		want  bool
	}{
		{"weekday in window", weekdayOffer, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), true},  // Tuesday
		{"weekday before window", weekdayOffer, time.Date(2026, 3, 10, 8, 59, 0, 0, time.UTC), false},
		{"weekday window inclusive end", weekdayOffer, time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC), true},
		{"weekend excluded", weekdayOffer, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), false},  // Saturday
		{"late night before midnight", lateNightOffer, time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC), true},
		{"late night after midnight", lateNightOffer, time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC), true},
		{"late night out of window", lateNightOffer, time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := scheduleAllows(tc.offer, tc.now)
			if err != nil {
				t.Fatalf("scheduleAllows error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("scheduleAllows = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScheduleRejectsBadConfig(t *testing.T) {
	offer := &models.Offer{
		ScheduleType: constants.ScheduleTypeCustom,
		AllowedDays:  "[7]",
	}
	if _, err := scheduleAllows(offer, time.Now()); err == nil {
		t.Fatalf("expected error for out of range weekday")
	}
}
