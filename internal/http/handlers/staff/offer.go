package staff

import (
	"errors"

	"github.com/studentperks/internal/http/response"
	"github.com/studentperks/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOffers 获取本门店当前可核销的优惠列表
func (h *Handler) ListOffers(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}

	offers, err := h.RedemptionService.ListBranchOffers(branchID)
	if err != nil {
		if errors.Is(err, service.ErrBranchNotFound) {
			respondError(c, response.CodeNotFound, "branch.not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.offer_fetch_failed", err)
		return
	}

	response.Success(c, offers)
}
