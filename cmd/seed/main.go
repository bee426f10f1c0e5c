package main

import (
	"time"

	"github.com/studentperks/internal/config"
	"github.com/studentperks/internal/constants"
	"github.com/studentperks/internal/logger"
	"github.com/studentperks/internal/models"
	"github.com/studentperks/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	now := time.Now()

	// 商户
	merchant := models.Merchant{
		Name:     "Campus Coffee Collective",
		Category: "food_and_drink",
		Status:   constants.MerchantStatusActive,
	}
	var existingMerchant models.Merchant
	if err := models.DB.Where("name = ?", merchant.Name).First(&existingMerchant).Error; err != nil {
		if err := models.DB.Create(&merchant).Error; err != nil {
			stdLog.Fatalf("Failed to create merchant: %v", err)
		}
		stdLog.Printf("Created merchant: %s", merchant.Name)
	} else {
		merchant = existingMerchant
		stdLog.Printf("Merchant already exists: %s", merchant.Name)
	}

	// 门店
	branches := []models.Branch{
		{MerchantID: merchant.ID, Name: "High Street", Address: "12 High Street", IsActive: true},
		{MerchantID: merchant.ID, Name: "Union Square", Address: "3 Union Square", IsActive: true},
	}
	for i := range branches {
		var existing models.Branch
		if err := models.DB.Where("merchant_id = ? AND name = ?", merchant.ID, branches[i].Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&branches[i]).Error; err != nil {
				stdLog.Fatalf("Failed to create branch %s: %v", branches[i].Name, err)
			}
			stdLog.Printf("Created branch: %s", branches[i].Name)
		} else {
			branches[i] = existing
			stdLog.Printf("Branch already exists: %s", branches[i].Name)
		}
	}

	// 门店员工
	staffPassword, err := service.HashPassword("staff123456")
	if err != nil {
		stdLog.Fatalf("Failed to hash staff password: %v", err)
	}
	staffMembers := []models.BranchStaff{
		{BranchID: branches[0].ID, Name: "Ama Mensah", Email: "ama@campuscoffee.test", PasswordHash: staffPassword, IsActive: true},
		{BranchID: branches[1].ID, Name: "Leo Fischer", Email: "leo@campuscoffee.test", PasswordHash: staffPassword, IsActive: true},
	}
	for _, member := range staffMembers {
		var existing models.BranchStaff
		if err := models.DB.Where("email = ?", member.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&member).Error; err != nil {
				stdLog.Printf("Failed to create staff %s: %v", member.Email, err)
			} else {
				stdLog.Printf("Created staff: %s", member.Email)
			}
		} else {
			stdLog.Printf("Staff already exists: %s", member.Email)
		}
	}

	// 优惠
	offers := []models.Offer{
		{
			MerchantID:    merchant.ID,
			Title:         "Student Coffee Discount",
			Description:   "Percent discount on any drink, grows with your visit streak.",
			DiscountType:  constants.DiscountTypePercent,
			DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			ValidFrom:     now.AddDate(0, -1, 0),
			ValidUntil:    now.AddDate(1, 0, 0),
			IsActive:      true,
			ScheduleType:  constants.ScheduleTypeAlways,
			StrategyID:    constants.StrategyStreak,
		},
		{
			MerchantID:     merchant.ID,
			Title:          "Lunch Deal",
			Description:    "Fixed amount off any lunch order, weekdays only.",
			DiscountType:   constants.DiscountTypeFixed,
			DiscountValue:  models.NewMoneyFromDecimal(decimal.NewFromFloat(3.50)),
			MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			ValidFrom:      now.AddDate(0, -1, 0),
			ValidUntil:     now.AddDate(0, 6, 0),
			DailyLimit:     50,
			IsActive:       true,
			ScheduleType:   constants.ScheduleTypeCustom,
			AllowedDays:    "[1,2,3,4,5]",
			StartTime:      "11:00",
			EndTime:        "15:00",
		},
		{
			MerchantID:    merchant.ID,
			Title:         "Late Night Pastry",
			Description:   "Free pastry with any order, evenings across midnight.",
			DiscountType:  constants.DiscountTypeFreeItem,
			DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromFloat(2.80)),
			ValidFrom:     now.AddDate(0, -1, 0),
			ValidUntil:    now.AddDate(0, 3, 0),
			TotalLimit:    500,
			IsActive:      true,
			ScheduleType:  constants.ScheduleTypeCustom,
			AllowedDays:   "[0,4,5,6]",
			StartTime:     "22:00",
			EndTime:       "02:00",
		},
	}
	for i := range offers {
		var existing models.Offer
		if err := models.DB.Where("merchant_id = ? AND title = ?", merchant.ID, offers[i].Title).First(&existing).Error; err != nil {
			if err := models.DB.Create(&offers[i]).Error; err != nil {
				stdLog.Printf("Failed to create offer %s: %v", offers[i].Title, err)
				continue
			}
			stdLog.Printf("Created offer: %s", offers[i].Title)
		} else {
			offers[i] = existing
			stdLog.Printf("Offer already exists: %s", offers[i].Title)
		}
	}

	// 投放关系：咖啡折扣全门店，午餐仅 High Street
	assignments := []models.OfferBranch{
		{OfferID: offers[0].ID, BranchID: nil, IsActive: true},
		{OfferID: offers[1].ID, BranchID: &branches[0].ID, IsActive: true},
		{OfferID: offers[2].ID, BranchID: nil, IsActive: true},
	}
	for _, assignment := range assignments {
		query := models.DB.Where("offer_id = ?", assignment.OfferID)
		if assignment.BranchID == nil {
			query = query.Where("branch_id IS NULL")
		} else {
			query = query.Where("branch_id = ?", *assignment.BranchID)
		}
		var existing models.OfferBranch
		if err := query.First(&existing).Error; err != nil {
			if err := models.DB.Create(&assignment).Error; err != nil {
				stdLog.Printf("Failed to create offer assignment: %v", err)
			}
		}
	}

	// 门店忠诚奖励：Union Square 每 5 次核销送一次额外折扣
	bonus := models.BranchBonusSetting{
		BranchID:            branches[1].ID,
		RedemptionsRequired: 5,
		DiscountType:        constants.DiscountTypePercent,
		DiscountValue:       models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		MaxDiscount:         models.NewMoneyFromDecimal(decimal.NewFromInt(8)),
		RewardDescription:   "every 5th visit half price",
		IsActive:            true,
	}
	var existingBonus models.BranchBonusSetting
	if err := models.DB.Where("branch_id = ?", bonus.BranchID).First(&existingBonus).Error; err != nil {
		if err := models.DB.Create(&bonus).Error; err != nil {
			stdLog.Printf("Failed to create bonus setting: %v", err)
		} else {
			stdLog.Printf("Created bonus setting for branch: %s", branches[1].Name)
		}
	}

	// 学生
	verifiedAt := now.AddDate(0, -2, 0)
	students := []models.Student{
		{Code: models.NewStudentCode(), Name: "Priya Raman", Email: "priya@uni.test", University: "Metro University", Status: constants.StudentStatusVerified, VerifiedAt: &verifiedAt},
		{Code: models.NewStudentCode(), Name: "Tomás Silva", Email: "tomas@uni.test", University: "Metro University", Status: constants.StudentStatusVerified, VerifiedAt: &verifiedAt},
		{Code: models.NewStudentCode(), Name: "Hana Sato", Email: "hana@uni.test", University: "Riverside College", Status: constants.StudentStatusPending},
	}
	for _, student := range students {
		var existing models.Student
		if err := models.DB.Where("email = ?", student.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&student).Error; err != nil {
				stdLog.Printf("Failed to create student %s: %v", student.Email, err)
			} else {
				stdLog.Printf("Created student: %s (code %s)", student.Email, student.Code)
			}
		} else {
			stdLog.Printf("Student already exists: %s (code %s)", existing.Email, existing.Code)
		}
	}

	stdLog.Printf("Seed finished")
}
