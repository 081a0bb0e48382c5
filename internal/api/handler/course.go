package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dieselnoi/course_go_server/internal/api/middleware"
	"github.com/dieselnoi/course_go_server/internal/pkg/response"
	"github.com/dieselnoi/course_go_server/internal/service"
)

type CourseHandler struct {
	courseService *service.CourseService
}

func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
	}
}

// List 课程列表
// GET /api/v1/courses?page=1&page_size=10
func (h *CourseHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}

	courses, total, err := h.courseService.List(page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, courses)
}

// Get 课程详情（含当前用户视角的课时锁定状态）
// GET /api/v1/courses/:slug
func (h *CourseHandler) Get(c *gin.Context) {
	slug := c.Param("slug")

	// 未登录按游客处理
	userID, _ := middleware.GetUserID(c)

	detail, err := h.courseService.GetBySlug(c.Request.Context(), slug, userID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, detail)
}

// UploadThumbnail 上传课程封面
// POST /api/v1/admin/courses/:course_id/thumbnail
func (h *CourseHandler) UploadThumbnail(c *gin.Context) {
	courseID, err := strconv.ParseInt(c.Param("course_id"), 10, 64)
	if err != nil || courseID <= 0 {
		response.ParamError(c, "课程 ID 无效")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请选择文件")
		return
	}

	// 验证文件大小 (5MB)
	if file.Size > 5*1024*1024 {
		response.ParamError(c, "文件大小不能超过5MB")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/webp" {
		response.ParamError(c, "只支持 jpg/png/webp 格式")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "文件读取失败")
		return
	}
	defer f.Close()

	thumbnailURL, err := h.courseService.UploadThumbnail(courseID, f, file.Filename)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "上传失败")
		return
	}

	response.SuccessWithMessage(c, "上传成功", gin.H{
		"thumbnail_url": thumbnailURL,
	})
}
