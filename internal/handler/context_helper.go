package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hall-booking-api/internal/middleware"
	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
	"github.com/noah-isme/hall-booking-api/pkg/response"
)

// actorFromContext builds the service actor from verified claims plus the
// request's client metadata. It writes a 401 and returns false when the
// route was reached without claims.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Actor{}, false
	}
	actor := models.ActorFromClaims(claims)
	actor.IP = c.ClientIP()
	actor.UserAgent = c.GetHeader("User-Agent")
	return actor, true
}

func bindJSON(c *gin.Context, dest interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, msg))
		return false
	}
	return true
}
