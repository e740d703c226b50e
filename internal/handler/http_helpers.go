package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/auth"
	"github.com/tourcms/internal/service"
	"go.uber.org/zap"
)

var notFoundErrors = []error{
	service.ErrPostNotFound,
	service.ErrRegionNotFound,
	service.ErrHotelNotFound,
	service.ErrActivityNotFound,
	service.ErrVideoNotFound,
	service.ErrGalleryNotFound,
	service.ErrPhotoNotFound,
	service.ErrCommentNotFound,
	service.ErrHeroSlideNotFound,
	service.ErrPageNotFound,
	service.ErrTagNotFound,
	service.ErrUserNotFound,
	service.ErrContentAbsent,
}

var conflictErrors = []error{
	service.ErrSlugTaken,
	service.ErrTagExists,
	service.ErrTagInUse,
	service.ErrRegionInUse,
	service.ErrUsernameTaken,
	service.ErrUserHasContent,
}

var validationErrors = []error{
	service.ErrSlugInvalid,
	service.ErrStatusInvalid,
	service.ErrCoverInvalid,
	service.ErrOrderInvalid,
	service.ErrContentType,
	service.ErrPostTitleMissing,
	service.ErrCoverRequired,
	service.ErrInvalidPublishState,
	service.ErrRegionNameMissing,
	service.ErrTagNameMissing,
	service.ErrHotelNameMissing,
	service.ErrHotelStars,
	service.ErrPriceInvalid,
	service.ErrCurrencyInvalid,
	service.ErrActivityTitleMissing,
	service.ErrDurationInvalid,
	service.ErrVideoTitleMissing,
	service.ErrVideoURLUnsupported,
	service.ErrGalleryTitleMissing,
	service.ErrPhotoImageMissing,
	service.ErrCommentBodyMissing,
	service.ErrCommentBodyTooLong,
	service.ErrCommentAuthor,
	service.ErrCommentEmail,
	service.ErrCommentTarget,
	service.ErrCommentParent,
	service.ErrCommentTooDeep,
	service.ErrCommentStatus,
	service.ErrHeroSlideKind,
	service.ErrHeroSlideTitle,
	service.ErrHeroSlideWindow,
	service.ErrHeroSlideOrder,
	service.ErrLinkSource,
	service.ErrLinkTarget,
	service.ErrLinkSelf,
	service.ErrPageTitleMissing,
	service.ErrPageContentMissing,
	service.ErrSettingEmailInvalid,
	service.ErrVisitorMissing,
	service.ErrUsernameInvalid,
	service.ErrPasswordTooShort,
	service.ErrRoleInvalid,
	service.ErrUserEmailInvalid,
	service.ErrDeleteSelf,
}

var unauthorizedErrors = []error{
	service.ErrInvalidCredentials,
	service.ErrSessionRevoked,
	auth.ErrTokenInvalid,
	auth.ErrTokenExpired,
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor 将服务层的哨兵错误映射为 HTTP 状态码，未知错误返回 0。
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrCommentRateLimited):
		return http.StatusTooManyRequests
	case matchesAny(err, unauthorizedErrors):
		return http.StatusUnauthorized
	case matchesAny(err, notFoundErrors):
		return http.StatusNotFound
	case matchesAny(err, conflictErrors):
		return http.StatusConflict
	case matchesAny(err, validationErrors):
		return http.StatusBadRequest
	default:
		return 0
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondServiceError 输出已知错误的原始信息；未知错误记录日志后返回 fallback。
func (a *API) respondServiceError(c *gin.Context, err error, fallback string) {
	if status := statusFor(err); status != 0 {
		respondError(c, status, err.Error())
		return
	}
	a.log.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
	respondError(c, http.StatusInternalServerError, fallback)
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// idParam 解析路径中的 id，失败时直接写出 400。
func idParam(c *gin.Context, key, message string) (uint, bool) {
	id, err := parseUintParam(c, key)
	if err != nil {
		respondError(c, http.StatusBadRequest, message)
		return 0, false
	}
	return id, true
}

func parsePositiveInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func queryInt(c *gin.Context, key string, fallback int) int {
	return parsePositiveInt(c.Query(key), fallback)
}

func queryUint(c *gin.Context, key string) uint {
	return uint(parsePositiveInt(c.Query(key), 0))
}

type reorderRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}
