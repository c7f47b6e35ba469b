package server

import (
	"net/http"
	"strconv"

	apperrors "github.com/Freeeeeet/skill_swap/internal/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error *apperrors.Error `json:"error"`
}

// respondError отдаёт бизнес-ошибку с её статусом, остальное логирует как 500
func (s *Server) respondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok {
		c.JSON(apperrors.HTTPStatus(err), errorResponse{Error: appErr})
		return
	}

	s.logger.Error("Request failed",
		zap.String("request_id", c.GetString(contextKeyRequestID)),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: &apperrors.Error{
		Kind:    apperrors.KindInternal,
		Message: "Internal server error.",
	}})
}

// bindJSON разбирает тело; при ошибке ответ уже отправлен
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, apperrors.Validation("Malformed request body.", map[string]string{"body": err.Error()}))
		return false
	}
	return true
}

// pathID читает :id; нечисловой id ничему не соответствует
func (s *Server) pathID(c *gin.Context, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.respondError(c, apperrors.NotFound(entity))
		return 0, false
	}
	return id, true
}
