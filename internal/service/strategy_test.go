package service

import (
	"testing"
	"time"

	"github.com/studentperks/internal/constants"
	"github.com/studentperks/internal/models"

	"github.com/shopspring/decimal"
)

func streakHistory(now time.Time, agesInDays ...int) []models.Redemption {
	history := make([]models.Redemption, 0, len(agesInDays))
	for _, age := range agesInDays {
		history = append(history, models.Redemption{
			Status:    constants.RedemptionStatusVerified,
			CreatedAt: now.AddDate(0, 0, -age),
		})
	}
	return history
}

func TestStreakStrategyTiers(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	strategy := NewStreakStrategy()

	cases := []struct {
		name        string
		history     []models.Redemption
		wantPercent int64
		wantNote    string
	}{
		{
			name:        "no history is first visit",
			history:     nil,
			wantPercent: 20,
			wantNote:    "streak visit 1: 20% off",
		},
		{
			name:        "one recent visit",
			history:     streakHistory(now, 2),
			wantPercent: 30,
			wantNote:    "streak visit 2: 30% off",
		},
		{
			name:        "three recent visits cap the tier",
			history:     streakHistory(now, 1, 4, 9),
			wantPercent: 40,
			wantNote:    "streak visit 4: 40% off",
		},
		{
			name:        "five visits stay at top tier",
			history:     streakHistory(now, 1, 3, 5, 8, 12),
			wantPercent: 40,
			wantNote:    "streak visit 6: 40% off",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolution, err := strategy.Resolve(StrategyInput{History: tc.history, Now: now})
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			if resolution.DiscountType != constants.DiscountTypePercent {
				t.Fatalf("expected percent discount, got %s", resolution.DiscountType)
			}
			if !resolution.DiscountValue.Decimal.Equal(decimal.NewFromInt(tc.wantPercent)) {
				t.Fatalf("expected %d%%, got %s", tc.wantPercent, resolution.DiscountValue.String())
			}
			if resolution.Note != tc.wantNote {
				t.Fatalf("unexpected note: %q", resolution.Note)
			}
		})
	}
}

func TestStreakStrategyGapBreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	strategy := NewStreakStrategy()

	// A gap of more than ten days resets the streak.
	resolution, err := strategy.Resolve(StrategyInput{History: streakHistory(now, 11), Now: now})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !resolution.DiscountValue.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected streak reset to 20%%, got %s", resolution.DiscountValue.String())
	}

	// Exactly ten days keeps the streak alive.
	resolution, err = strategy.Resolve(StrategyInput{History: streakHistory(now, 10), Now: now})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !resolution.DiscountValue.Decimal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected 30%% for a ten day gap, got %s", resolution.DiscountValue.String())
	}

	// A break in the middle only counts the visits before it.
	resolution, err = strategy.Resolve(StrategyInput{History: streakHistory(now, 2, 4, 20, 22), Now: now})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if resolution.Note != "streak visit 3: 40% off" {
		t.Fatalf("expected streak of two before the break, got %q", resolution.Note)
	}
}
