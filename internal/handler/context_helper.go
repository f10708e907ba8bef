package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dorm-admin-api/internal/middleware"
	"github.com/noah-isme/dorm-admin-api/internal/models"
	appErrors "github.com/noah-isme/dorm-admin-api/pkg/errors"
)

func scopeFromContext(c *gin.Context) models.Scope {
	return models.ScopeFor(middleware.PrincipalFromContext(c))
}

// pathID parses the :id segment. Non-numeric ids cannot name a record.
func pathID(c *gin.Context, resource string) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, resource+" not found")
	}
	return id, nil
}
