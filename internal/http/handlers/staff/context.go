package staff

import (
	handlershared "github.com/studentperks/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, key, invalidKey, typeInvalidKey)
}

func getStaffID(c *gin.Context) (uint, bool) {
	return getContextUintWithKeys(c, "staff_id", "error.staff_id_invalid", "error.staff_id_type_invalid")
}

func getBranchID(c *gin.Context) (uint, bool) {
	return getContextUintWithKeys(c, "branch_id", "error.branch_id_invalid", "error.branch_id_type_invalid")
}
