package service

import "errors"

// 实体缺失类错误
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrOfferNotFound      = errors.New("offer not found")
	ErrBranchNotFound     = errors.New("branch not found")
	ErrStaffNotFound      = errors.New("staff not found")
	ErrRedemptionNotFound = errors.New("redemption not found")
)

// 资格校验类错误
var (
	ErrStudentNotVerified = errors.New("student not verified")
	ErrStudentSuspended   = errors.New("student suspended")
	ErrBranchInactive     = errors.New("branch inactive")
	ErrOfferInactive      = errors.New("offer inactive")
	ErrOfferNotStarted    = errors.New("offer not started")
	ErrOfferExpired       = errors.New("offer expired")
	ErrOfferNotAtBranch   = errors.New("offer not available at this branch")
	ErrOfferOutOfSchedule = errors.New("offer out of schedule")
	ErrOfferTotalLimit    = errors.New("offer total limit reached")
	ErrOfferDailyLimit    = errors.New("offer daily limit reached")
)

// 冲突类错误
var (
	ErrDuplicateRedemption       = errors.New("duplicate redemption within window")
	ErrAlreadyRedeemedToday      = errors.New("already redeemed today")
	ErrRedemptionAlreadyRejected = errors.New("redemption already rejected")
)

// 权限类错误
var (
	ErrRedemptionWrongBranch = errors.New("redemption belongs to another branch")
	ErrStaffInactive         = errors.New("staff account disabled")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// 内部一致性类错误
var (
	ErrStrategyUnknown = errors.New("unknown redemption strategy")
	ErrStatsCorrupted  = errors.New("aggregate stats inconsistent")
)
