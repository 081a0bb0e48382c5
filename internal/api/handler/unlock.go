package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dieselnoi/course_go_server/internal/pkg/response"
	"github.com/dieselnoi/course_go_server/internal/service"
)

type UnlockHandler struct {
	unlockService *service.UnlockService
}

func NewUnlockHandler(unlockService *service.UnlockService) *UnlockHandler {
	return &UnlockHandler{
		unlockService: unlockService,
	}
}

func unlockParams(c *gin.Context) (userID, lessonID int64, ok bool) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "用户 ID 无效")
		return 0, 0, false
	}
	lessonID, err = strconv.ParseInt(c.Param("lesson_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "课时 ID 无效")
		return 0, 0, false
	}
	return userID, lessonID, true
}

// Grant 为用户手动解锁课时
// POST /api/v1/admin/users/:user_id/unlocks/:lesson_id
func (h *UnlockHandler) Grant(c *gin.Context) {
	userID, lessonID, ok := unlockParams(c)
	if !ok {
		return
	}

	if err := h.unlockService.Grant(c.Request.Context(), userID, lessonID); err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "解锁成功", nil)
}

// Revoke 撤销手动解锁
// DELETE /api/v1/admin/users/:user_id/unlocks/:lesson_id
func (h *UnlockHandler) Revoke(c *gin.Context) {
	userID, lessonID, ok := unlockParams(c)
	if !ok {
		return
	}

	if err := h.unlockService.Revoke(c.Request.Context(), userID, lessonID); err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "已撤销解锁", nil)
}
