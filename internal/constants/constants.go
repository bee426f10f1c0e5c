package constants

// 学生状态常量
const (
	StudentStatusPending   = "pending"
	StudentStatusVerified  = "verified"
	StudentStatusSuspended = "suspended"
)

// 商户状态常量
const (
	MerchantStatusActive   = "active"
	MerchantStatusInactive = "inactive"
)

// 折扣类型常量
const (
	DiscountTypePercent  = "percent"
	DiscountTypeFixed    = "fixed"
	DiscountTypeFreeItem = "free_item"
)

// 优惠时段类型常量
const (
	ScheduleTypeAlways = "always"
	ScheduleTypeCustom = "custom"
)

// 核销记录状态常量
const (
	RedemptionStatusVerified = "verified"
	RedemptionStatusRejected = "rejected"
)

// 核销策略标识常量
const (
	StrategyStreak = "strategy_streak"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskRedemptionReceipt = "redemption:receipt"
)

// 默认配置常量
const (
	DefaultDuplicateWindowSeconds = 5
	DefaultTxTimeoutSeconds       = 20
)
