package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/dieselnoi/course_go_server/internal/api/middleware"
	"github.com/dieselnoi/course_go_server/internal/pkg/response"
	"github.com/dieselnoi/course_go_server/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// List 当前用户的订阅列表
// GET /api/v1/subscription/me
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	infos, err := h.subscriptionService.ListByUser(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, infos)
}
