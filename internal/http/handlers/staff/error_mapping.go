package staff

import (
	"errors"

	"github.com/studentperks/internal/http/response"
	"github.com/studentperks/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var redemptionLookupErrorRules = []mappedHandlerError{
	{target: service.ErrRedemptionNotFound, code: response.CodeNotFound, key: "redemption.not_found"},
	{target: service.ErrRedemptionWrongBranch, code: response.CodeForbidden, key: "redemption.wrong_branch"},
}

var redemptionCreateErrorRules = []mappedHandlerError{
	{target: service.ErrStudentNotFound, code: response.CodeNotFound, key: "student.not_found"},
	{target: service.ErrStudentNotVerified, code: response.CodeUnprocessable, key: "student.not_verified"},
	{target: service.ErrStudentSuspended, code: response.CodeUnprocessable, key: "student.suspended"},
	{target: service.ErrBranchNotFound, code: response.CodeNotFound, key: "branch.not_found"},
	{target: service.ErrBranchInactive, code: response.CodeUnprocessable, key: "branch.inactive"},
	{target: service.ErrOfferNotFound, code: response.CodeNotFound, key: "offer.not_found"},
	{target: service.ErrOfferInactive, code: response.CodeUnprocessable, key: "offer.inactive"},
	{target: service.ErrOfferNotStarted, code: response.CodeUnprocessable, key: "offer.not_started"},
	{target: service.ErrOfferExpired, code: response.CodeUnprocessable, key: "offer.expired"},
	{target: service.ErrOfferNotAtBranch, code: response.CodeUnprocessable, key: "offer.not_at_branch"},
	{target: service.ErrOfferOutOfSchedule, code: response.CodeUnprocessable, key: "offer.out_of_schedule"},
	{target: service.ErrOfferTotalLimit, code: response.CodeUnprocessable, key: "offer.total_limit_reached"},
	{target: service.ErrOfferDailyLimit, code: response.CodeUnprocessable, key: "offer.daily_limit_reached"},
	{target: service.ErrDuplicateRedemption, code: response.CodeConflict, key: "redemption.duplicate"},
	{target: service.ErrAlreadyRedeemedToday, code: response.CodeConflict, key: "redemption.already_today"},
	{target: service.ErrStrategyUnknown, code: response.CodeInternal, key: "redemption.strategy_unknown"},
}

var redemptionRejectErrorRules = []mappedHandlerError{
	{target: service.ErrRedemptionAlreadyRejected, code: response.CodeConflict, key: "redemption.already_rejected"},
	{target: service.ErrBranchNotFound, code: response.CodeNotFound, key: "branch.not_found"},
	{target: service.ErrStatsCorrupted, code: response.CodeInternal, key: "redemption.stats_corrupted"},
}

func respondRedemptionCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, redemptionCreateErrorRules, response.CodeInternal, "error.redemption_failed")
}

func respondRedemptionRejectError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(redemptionLookupErrorRules, redemptionRejectErrorRules), response.CodeInternal, "error.reject_failed")
}
