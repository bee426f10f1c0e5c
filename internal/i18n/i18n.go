package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 支持的语言
const (
	LocaleEN = "en-US"
	LocaleZH = "zh-CN"
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleEN

var catalogs = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":               "invalid request",
		"error.unauthorized":              "unauthorized",
		"error.forbidden":                 "forbidden",
		"error.not_found":                 "resource not found",
		"error.internal":                  "internal server error",
		"error.rate_limited":              "too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":    "rate limiter unavailable",
		"error.login_too_many":            "too many login attempts, please retry in %d seconds",
		"error.scan_too_many":             "too many scans, please retry in %d seconds",
		"error.jwt_secret_missing":        "server auth is misconfigured",
		"error.auth_header_missing":       "authorization header is missing",
		"error.auth_header_invalid":       "authorization header is malformed",
		"error.token_invalid":             "token is invalid or expired",
		"error.staff_id_invalid":          "staff id is invalid",
		"error.staff_id_type_invalid":     "staff id type is invalid",
		"error.branch_id_invalid":         "branch id is invalid",
		"error.branch_id_type_invalid":    "branch id type is invalid",
		"error.login_failed":              "login failed",
		"error.redemption_failed":         "redemption failed",
		"error.redemption_fetch_failed":   "failed to fetch redemptions",
		"error.offer_fetch_failed":        "failed to fetch offers",
		"error.reject_failed":             "failed to reject redemption",
		"error.invalid_id":                "invalid id",
		"error.invalid_id_type":           "invalid id type",
		"auth.invalid_credentials":        "invalid email or password",
		"auth.staff_inactive":             "staff account is disabled",
		"student.not_found":               "student not found",
		"student.not_verified":            "student is not verified",
		"student.suspended":               "student account is suspended",
		"branch.not_found":                "branch not found",
		"branch.inactive":                 "branch is inactive",
		"offer.not_found":                 "offer not found",
		"offer.inactive":                  "offer is not active",
		"offer.not_started":               "offer has not started yet",
		"offer.expired":                   "offer has expired",
		"offer.not_at_branch":             "offer is not redeemable at this branch",
		"offer.out_of_schedule":           "offer is outside its redemption schedule",
		"offer.total_limit_reached":       "offer redemption limit reached",
		"offer.daily_limit_reached":       "offer daily limit reached at this branch",
		"redemption.not_found":            "redemption not found",
		"redemption.duplicate":            "duplicate redemption, please wait a moment",
		"redemption.already_today":        "offer already redeemed by this student today",
		"redemption.already_rejected":     "redemption has already been rejected",
		"redemption.wrong_branch":         "redemption belongs to another branch",
		"redemption.strategy_unknown":     "discount strategy is not available",
		"redemption.stats_corrupted":      "redemption totals are inconsistent",
		"redemption.reject_reason_needed": "a rejection reason is required",
	},
	LocaleZH: {
		"error.bad_request":               "请求参数错误",
		"error.unauthorized":              "未登录或登录已过期",
		"error.forbidden":                 "没有权限执行该操作",
		"error.not_found":                 "资源不存在",
		"error.internal":                  "服务器内部错误",
		"error.rate_limited":              "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":    "限流服务不可用",
		"error.login_too_many":            "登录尝试过于频繁，请 %d 秒后再试",
		"error.scan_too_many":             "扫码过于频繁，请 %d 秒后再试",
		"error.jwt_secret_missing":        "服务端鉴权配置缺失",
		"error.auth_header_missing":       "缺少鉴权头",
		"error.auth_header_invalid":       "鉴权头格式错误",
		"error.token_invalid":             "令牌无效或已过期",
		"error.staff_id_invalid":          "员工 ID 无效",
		"error.staff_id_type_invalid":     "员工 ID 类型无效",
		"error.branch_id_invalid":         "门店 ID 无效",
		"error.branch_id_type_invalid":    "门店 ID 类型无效",
		"error.login_failed":              "登录失败",
		"error.redemption_failed":         "核销失败",
		"error.redemption_fetch_failed":   "获取核销记录失败",
		"error.offer_fetch_failed":        "获取优惠列表失败",
		"error.reject_failed":             "拒绝核销失败",
		"error.invalid_id":                "ID 无效",
		"error.invalid_id_type":           "ID 类型无效",
		"auth.invalid_credentials":        "邮箱或密码错误",
		"auth.staff_inactive":             "员工账号已停用",
		"student.not_found":               "学生不存在",
		"student.not_verified":            "学生尚未完成认证",
		"student.suspended":               "学生账号已被冻结",
		"branch.not_found":                "门店不存在",
		"branch.inactive":                 "门店已停用",
		"offer.not_found":                 "优惠不存在",
		"offer.inactive":                  "优惠未启用",
		"offer.not_started":               "优惠尚未开始",
		"offer.expired":                   "优惠已过期",
		"offer.not_at_branch":             "优惠不适用于当前门店",
		"offer.out_of_schedule":           "当前时间不在优惠可用时段内",
		"offer.total_limit_reached":       "优惠已达核销总量上限",
		"offer.daily_limit_reached":       "该门店今日核销已达上限",
		"redemption.not_found":            "核销记录不存在",
		"redemption.duplicate":            "重复提交，请稍候再试",
		"redemption.already_today":        "该学生今日已核销过此优惠",
		"redemption.already_rejected":     "核销记录已被拒绝",
		"redemption.wrong_branch":         "核销记录属于其他门店",
		"redemption.strategy_unknown":     "折扣策略不可用",
		"redemption.stats_corrupted":      "核销统计数据不一致",
		"redemption.reject_reason_needed": "请填写拒绝原因",
	},
}

// ResolveLocale 解析请求语言，优先 query 参数，其次 Accept-Language 头。
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		if normalized, ok := normalizeLocale(lang); ok {
			return normalized
		}
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if normalized, ok := normalizeLocale(tag); ok {
			return normalized
		}
	}
	return DefaultLocale
}

// T 按语言翻译消息 key，找不到时回退默认语言，再回退 key 本身。
func T(locale, key string) string {
	if catalog, ok := catalogs[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := catalogs[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译带格式化参数的消息 key。
func Sprintf(locale, key string, args ...interface{}) string {
	template := T(locale, key)
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

func normalizeLocale(tag string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(tag))
	switch {
	case lowered == "":
		return "", false
	case strings.HasPrefix(lowered, "zh"):
		return LocaleZH, true
	case strings.HasPrefix(lowered, "en"):
		return LocaleEN, true
	default:
		return "", false
	}
}
