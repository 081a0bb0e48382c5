package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dieselnoi/course_go_server/internal/api/middleware"
	"github.com/dieselnoi/course_go_server/internal/entitlement"
	"github.com/dieselnoi/course_go_server/internal/model/dto"
	"github.com/dieselnoi/course_go_server/internal/pkg/response"
	"github.com/dieselnoi/course_go_server/internal/service"
)

type PlaybackHandler struct {
	playbackService *service.PlaybackService
}

func NewPlaybackHandler(playbackService *service.PlaybackService) *PlaybackHandler {
	return &PlaybackHandler{
		playbackService: playbackService,
	}
}

// Resolve 解析课时播放凭证
// GET /api/v1/lessons/:id/playback
//
// 拒绝时按理由返回不同业务码，前端据此展示订阅引导或解锁倒计时；
// 系统故障一律 5000，绝不能把故障包装成付费墙
func (h *PlaybackHandler) Resolve(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	lessonID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "课时 ID 无效")
		return
	}

	res, err := h.playbackService.Resolve(c.Request.Context(), userID, lessonID)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "播放服务暂时不可用，请稍后重试")
		return
	}

	if !res.Decision.Allowed {
		h.denied(c, res)
		return
	}

	cred := &dto.PlaybackCredential{
		AssetRef:  res.Credential.AssetRef,
		SignedRef: res.Credential.SignedRef(),
		ExpiresAt: res.Credential.ExpiresAt.Format(time.RFC3339),
	}
	if res.Credential.Token != nil {
		cred.Token = *res.Credential.Token
	}

	response.Success(c, &dto.PlaybackResult{
		Allowed:    true,
		Reason:     string(res.Decision.Reason),
		Credential: cred,
	})
}

func (h *PlaybackHandler) denied(c *gin.Context, res *service.Resolution) {
	switch res.Decision.Reason {
	case entitlement.ReasonNotYetReleased:
		data := gin.H{"reason": string(res.Decision.Reason)}
		if res.UnlockDate != nil {
			data["unlock_date"] = res.UnlockDate.UTC().Format("2006-01-02")
		}
		response.ErrorWithData(c, response.CodeLessonLocked, "课时尚未解锁", data)
	case entitlement.ReasonNoSubscription:
		response.SubscriptionError(c, "订阅后才能观看该课时")
	case entitlement.ReasonSubscriptionLapsed:
		response.SubscriptionError(c, "订阅已过期，续订后继续观看")
	default:
		response.ServerError(c, "")
	}
}
