package public

import (
	handlershared "github.com/akiranaka1984/affiliate/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAffiliateUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "affiliate_user_id")
}
