package repository

import "time"

// RedemptionListFilter 查询核销记录列表的过滤条件
type RedemptionListFilter struct {
	Page        int
	PageSize    int
	StudentID   uint
	OfferID     uint
	BranchID    uint
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OfferListFilter 查询优惠列表的过滤条件
type OfferListFilter struct {
	Page       int
	PageSize   int
	MerchantID uint
	OnlyActive bool
	Search     string
}
