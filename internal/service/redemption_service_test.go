package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/studentperks/internal/constants"
	"github.com/studentperks/internal/models"
	"github.com/studentperks/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type redemptionServiceFixture struct {
	db       *gorm.DB
	service  *RedemptionService
	merchant models.Merchant
	branch   models.Branch
	staff    models.BranchStaff
	student  models.Student
	offer    models.Offer
}

func openRedemptionTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Student{},
		&models.Merchant{},
		&models.Branch{},
		&models.BranchStaff{},
		&models.Offer{},
		&models.OfferBranch{},
		&models.BranchBonusSetting{},
		&models.Redemption{},
		&models.StudentBranchStats{},
		&models.StudentMerchantStats{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func buildRedemptionService(db *gorm.DB, policy RedemptionPolicy) *RedemptionService {
	redemptionRepo := repository.NewRedemptionRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	bonusRepo := repository.NewBonusSettingRepository(db)
	eligibility := NewEligibilityService(offerRepo, redemptionRepo)
	discount := NewDiscountService(redemptionRepo, bonusRepo, statsRepo, NewStreakStrategy())
	return NewRedemptionService(redemptionRepo, offerRepo, studentRepo, branchRepo, statsRepo, eligibility, discount, nil, policy)
}

func setupRedemptionServiceTest(t *testing.T, name string, policy RedemptionPolicy) *redemptionServiceFixture {
	t.Helper()
	db := openRedemptionTestDB(t, name)

	now := time.Now()
	fixture := &redemptionServiceFixture{db: db}

	fixture.merchant = models.Merchant{Name: "Test Merchant", Status: constants.MerchantStatusActive}
	if err := db.Create(&fixture.merchant).Error; err != nil {
		t.Fatalf("create merchant failed: %v", err)
	}
	fixture.branch = models.Branch{MerchantID: fixture.merchant.ID, Name: "Main Branch", IsActive: true}
	if err := db.Create(&fixture.branch).Error; err != nil {
		t.Fatalf("create branch failed: %v", err)
	}
	fixture.staff = models.BranchStaff{BranchID: fixture.branch.ID, Name: "Clerk", Email: "clerk@test.local", PasswordHash: "hash", IsActive: true}
	if err := db.Create(&fixture.staff).Error; err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	verifiedAt := now.AddDate(0, -1, 0)
	fixture.student = models.Student{
		Code:       models.NewStudentCode(),
		Name:       "Test Student",
		Email:      "student@test.local",
		Status:     constants.StudentStatusVerified,
		VerifiedAt: &verifiedAt,
	}
	if err := db.Create(&fixture.student).Error; err != nil {
		t.Fatalf("create student failed: %v", err)
	}
	fixture.offer = models.Offer{
		MerchantID:    fixture.merchant.ID,
		Title:         "Test Offer",
		DiscountType:  constants.DiscountTypeFixed,
		DiscountValue: models.NewMoneyFromDecimal(decimal.RequireFromString("5.00")),
		ValidFrom:     now.AddDate(0, 0, -7),
		ValidUntil:    now.AddDate(0, 1, 0),
		IsActive:      true,
		ScheduleType:  constants.ScheduleTypeAlways,
	}
	if err := db.Create(&fixture.offer).Error; err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	assignment := models.OfferBranch{OfferID: fixture.offer.ID, IsActive: true}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("create offer assignment failed: %v", err)
	}

	fixture.service = buildRedemptionService(db, policy)
	return fixture
}

func createVerifiedStudent(t *testing.T, db *gorm.DB, email string) models.Student {
	t.Helper()
	student := models.Student{
		Code:   models.NewStudentCode(),
		Name:   "Extra Student",
		Email:  email,
		Status: constants.StudentStatusVerified,
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("create student failed: %v", err)
	}
	return student
}

func TestCreateRedemptionSuccess(t *testing.T) {
	fixture := setupRedemptionServiceTest(t, "redemption_create", RedemptionPolicy{AllowSameDayRepeat: true})

	redemption, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: fixture.student.Code,
		OfferID:     fixture.offer.ID,
		Notes:       "flat white",
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	})
	if err != nil {
		t.Fatalf("CreateRedemption error: %v", err)
	}
	if redemption.Status != constants.RedemptionStatusVerified {
		t.Fatalf("expected verified status, got %s", redemption.Status)
	}
	if redemption.DiscountType != constants.DiscountTypeFixed {
		t.Fatalf("expected fixed discount, got %s", redemption.DiscountType)
	}
	if !redemption.DiscountAmount.Decimal.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected discount 5.00, got %s", redemption.DiscountAmount.String())
	}
	if redemption.VerifiedByID == nil || *redemption.VerifiedByID != fixture.staff.ID {
		t.Fatalf("expected verified_by %d, got %+v", fixture.staff.ID, redemption.VerifiedByID)
	}

	var student models.Student
	if err := fixture.db.First(&student, fixture.student.ID).Error; err != nil {
		t.Fatalf("reload student failed: %v", err)
	}
	if student.TotalRedemptions != 1 {
		t.Fatalf("expected 1 total redemption, got %d", student.TotalRedemptions)
	}
	if !student.TotalSavings.Decimal.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected savings 5.00, got %s", student.TotalSavings.String())
	}

	var offer models.Offer
	if err := fixture.db.First(&offer, fixture.offer.ID).Error; err != nil {
		t.Fatalf("reload offer failed: %v", err)
	}
	if offer.CurrentRedemptions != 1 {
		t.Fatalf("expected offer counter 1, got %d", offer.CurrentRedemptions)
	}

	var branchStats models.StudentBranchStats
	if err := fixture.db.Where("student_id = ? AND branch_id = ?", fixture.student.ID, fixture.branch.ID).First(&branchStats).Error; err != nil {
		t.Fatalf("expected branch stats row: %v", err)
	}
	if branchStats.RedemptionCount != 1 {
		t.Fatalf("expected branch stats count 1, got %d", branchStats.RedemptionCount)
	}

	var merchantStats models.StudentMerchantStats
	if err := fixture.db.Where("student_id = ? AND merchant_id = ?", fixture.student.ID, fixture.merchant.ID).First(&merchantStats).Error; err != nil {
		t.Fatalf("expected merchant stats row: %v", err)
	}
	if !merchantStats.TotalSavings.Decimal.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected merchant savings 5.00, got %s", merchantStats.TotalSavings.String())
	}
}

func TestCreateRedemptionDuplicateWindow(t *testing.T) {
	fixture := setupRedemptionServiceTest(t, "redemption_duplicate", RedemptionPolicy{AllowSameDayRepeat: true})

	input := CreateRedemptionInput{
		StudentCode: fixture.student.Code,
		OfferID:     fixture.offer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	}
	if _, err := fixture.service.CreateRedemption(input); err != nil {
		t.Fatalf("first redemption error: %v", err)
	}
	if _, err := fixture.service.CreateRedemption(input); !errors.Is(err, ErrDuplicateRedemption) {
		t.Fatalf("expected ErrDuplicateRedemption, got %v", err)
	}
}

func TestCreateRedemptionTotalLimit(t *testing.T) {
	fixture := setupRedemptionServiceTest(t, "redemption_total_limit", RedemptionPolicy{AllowSameDayRepeat: true})
	if err := fixture.db.Model(&models.Offer{}).Where("id = ?", fixture.offer.ID).UpdateColumn("total_limit", 1).Error; err != nil {
		t.Fatalf("set total limit failed: %v", err)
	}

	if _, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: fixture.student.Code,
		OfferID:     fixture.offer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	}); err != nil {
		t.Fatalf("first redemption error: %v", err)
	}

	other := createVerifiedStudent(t, fixture.db, "second@test.local")
	if _, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: other.Code,
		OfferID:     fixture.offer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	}); !errors.Is(err, ErrOfferTotalLimit) {
		t.Fatalf("expected ErrOfferTotalLimit, got %v", err)
	}
}

func TestCreateRedemptionDailyLimit(t *testing.T) {
	fixture := setupRedemptionServiceTest(t, "redemption_daily_limit", RedemptionPolicy{AllowSameDayRepeat: true})
	if err := fixture.db.Model(&models.Offer{}).Where("id = ?", fixture.offer.ID).UpdateColumn("daily_limit", 1).Error; err != nil {
		t.Fatalf("set daily limit failed: %v", err)
	}

	if _, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: fixture.student.Code,
		OfferID:     fixture.offer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	}); err != nil {
		t.Fatalf("first redemption error: %v", err)
	}

	other := createVerifiedStudent(t, fixture.db, "third@test.local")
	if _, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: other.Code,
		OfferID:     fixture.offer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	}); !errors.Is(err, ErrOfferDailyLimit) {
		t.Fatalf("expected ErrOfferDailyLimit, got %v", err)
	}
}

func TestCreateRedemptionStudentStatus(t *testing.T) {
	fixture := setupRedemptionServiceTest(t, "redemption_student_status", RedemptionPolicy{AllowSameDayRepeat: true})

	if err := fixture.db.Model(&models.Student{}).Where("id = ?", fixture.student.ID).UpdateColumn("status", constants.StudentStatusSuspended).Error; err != nil {
		t.Fatalf("suspend student failed: %v", err)
	}
	if _, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: fixture.student.Code,
		OfferID:     fixture.offer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	}); !errors.Is(err, ErrStudentSuspended) {
		t.Fatalf("expected ErrStudentSuspended, got %v", err)
	}

	if err := fixture.db.Model(&models.Student{}).Where("id = ?", fixture.student.ID).UpdateColumn("status", constants.StudentStatusPending).Error; err != nil {
		t.Fatalf("reset student status failed: %v", err)
	}
	if _, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: fixture.student.Code,
		OfferID:     fixture.offer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	}); !errors.Is(err, ErrStudentNotVerified) {
		t.Fatalf("expected ErrStudentNotVerified, got %v", err)
	}
}

func TestCreateRedemptionOfferWrongMerchant(t *testing.T) {
	fixture := setupRedemptionServiceTest(t, "redemption_wrong_merchant", RedemptionPolicy{AllowSameDayRepeat: true})

	otherMerchant := models.Merchant{Name: "Other Merchant", Status: constants.MerchantStatusActive}
	if err := fixture.db.Create(&otherMerchant).Error; err != nil {
		t.Fatalf("create merchant failed: %v", err)
	}
	otherOffer := models.Offer{
		MerchantID:    otherMerchant.ID,
		Title:         "Foreign Offer",
		DiscountType:  constants.DiscountTypeFixed,
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(2)),
		ValidFrom:     time.Now().AddDate(0, 0, -1),
		ValidUntil:    time.Now().AddDate(0, 1, 0),
		IsActive:      true,
		ScheduleType:  constants.ScheduleTypeAlways,
	}
	if err := fixture.db.Create(&otherOffer).Error; err != nil {
		t.Fatalf("create offer failed: %v", err)
	}

	if _, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: fixture.student.Code,
		OfferID:     otherOffer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	}); !errors.Is(err, ErrOfferNotAtBranch) {
		t.Fatalf("expected ErrOfferNotAtBranch, got %v", err)
	}
}

func TestCreateRedemptionSameDayBlocked(t *testing.T) {
	fixture := setupRedemptionServiceTest(t, "redemption_same_day", RedemptionPolicy{AllowSameDayRepeat: false})

	earlier := models.Redemption{
		StudentID:      fixture.student.ID,
		OfferID:        fixture.offer.ID,
		BranchID:       fixture.branch.ID,
		Status:         constants.RedemptionStatusVerified,
		DiscountType:   constants.DiscountTypeFixed,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		CreatedAt:      time.Now().Add(-2 * time.Hour),
	}
	if err := fixture.db.Create(&earlier).Error; err != nil {
		t.Fatalf("create earlier redemption failed: %v", err)
	}

	if _, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: fixture.student.Code,
		OfferID:     fixture.offer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	}); !errors.Is(err, ErrAlreadyRedeemedToday) {
		t.Fatalf("expected ErrAlreadyRedeemedToday, got %v", err)
	}
}

func TestRejectRedemptionRoundTrip(t *testing.T) {
	fixture := setupRedemptionServiceTest(t, "redemption_reject", RedemptionPolicy{AllowSameDayRepeat: true})

	created, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: fixture.student.Code,
		OfferID:     fixture.offer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	})
	if err != nil {
		t.Fatalf("CreateRedemption error: %v", err)
	}

	rejected, err := fixture.service.RejectRedemption(RejectRedemptionInput{
		RedemptionID: created.ID,
		StaffID:      fixture.staff.ID,
		BranchID:     fixture.branch.ID,
		Reason:       "student left before pickup",
	})
	if err != nil {
		t.Fatalf("RejectRedemption error: %v", err)
	}
	if rejected.Status != constants.RedemptionStatusRejected {
		t.Fatalf("expected rejected status, got %s", rejected.Status)
	}
	if rejected.VerifiedByID != nil {
		t.Fatalf("expected verified_by cleared, got %v", *rejected.VerifiedByID)
	}
	if rejected.RejectedByID == nil || *rejected.RejectedByID != fixture.staff.ID {
		t.Fatalf("expected rejected_by %d, got %+v", fixture.staff.ID, rejected.RejectedByID)
	}
	if rejected.RejectReason != "student left before pickup" {
		t.Fatalf("unexpected reject reason: %s", rejected.RejectReason)
	}
	if rejected.RejectedAt == nil {
		t.Fatalf("expected rejected_at to be set")
	}

	var student models.Student
	if err := fixture.db.First(&student, fixture.student.ID).Error; err != nil {
		t.Fatalf("reload student failed: %v", err)
	}
	if student.TotalRedemptions != 0 {
		t.Fatalf("expected student totals restored to 0, got %d", student.TotalRedemptions)
	}
	if !student.TotalSavings.Decimal.Equal(decimal.Zero) {
		t.Fatalf("expected savings restored to 0, got %s", student.TotalSavings.String())
	}

	var offer models.Offer
	if err := fixture.db.First(&offer, fixture.offer.ID).Error; err != nil {
		t.Fatalf("reload offer failed: %v", err)
	}
	if offer.CurrentRedemptions != 0 {
		t.Fatalf("expected offer counter restored to 0, got %d", offer.CurrentRedemptions)
	}

	var branchStats models.StudentBranchStats
	if err := fixture.db.Where("student_id = ? AND branch_id = ?", fixture.student.ID, fixture.branch.ID).First(&branchStats).Error; err != nil {
		t.Fatalf("reload branch stats failed: %v", err)
	}
	if branchStats.RedemptionCount != 0 || !branchStats.TotalSavings.Decimal.Equal(decimal.Zero) {
		t.Fatalf("expected branch stats restored, got count=%d savings=%s", branchStats.RedemptionCount, branchStats.TotalSavings.String())
	}
}

func TestRejectRedemptionTwice(t *testing.T) {
	fixture := setupRedemptionServiceTest(t, "redemption_reject_twice", RedemptionPolicy{AllowSameDayRepeat: true})

	created, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: fixture.student.Code,
		OfferID:     fixture.offer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	})
	if err != nil {
		t.Fatalf("CreateRedemption error: %v", err)
	}

	input := RejectRedemptionInput{
		RedemptionID: created.ID,
		StaffID:      fixture.staff.ID,
		BranchID:     fixture.branch.ID,
		Reason:       "mistake",
	}
	if _, err := fixture.service.RejectRedemption(input); err != nil {
		t.Fatalf("first reject error: %v", err)
	}
	if _, err := fixture.service.RejectRedemption(input); !errors.Is(err, ErrRedemptionAlreadyRejected) {
		t.Fatalf("expected ErrRedemptionAlreadyRejected, got %v", err)
	}
}

func TestRejectRedemptionWrongBranch(t *testing.T) {
	fixture := setupRedemptionServiceTest(t, "redemption_reject_branch", RedemptionPolicy{AllowSameDayRepeat: true})

	created, err := fixture.service.CreateRedemption(CreateRedemptionInput{
		StudentCode: fixture.student.Code,
		OfferID:     fixture.offer.ID,
		StaffID:     fixture.staff.ID,
		BranchID:    fixture.branch.ID,
	})
	if err != nil {
		t.Fatalf("CreateRedemption error: %v", err)
	}

	otherBranch := models.Branch{MerchantID: fixture.merchant.ID, Name: "Second Branch", IsActive: true}
	if err := fixture.db.Create(&otherBranch).Error; err != nil {
		t.Fatalf("create branch failed: %v", err)
	}

	if _, err := fixture.service.RejectRedemption(RejectRedemptionInput{
		RedemptionID: created.ID,
		StaffID:      fixture.staff.ID,
		BranchID:     otherBranch.ID,
		Reason:       "not ours",
	}); !errors.Is(err, ErrRedemptionWrongBranch) {
		t.Fatalf("expected ErrRedemptionWrongBranch, got %v", err)
	}
}
