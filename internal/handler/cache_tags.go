package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 缓存标签：公开接口按其读取的实体打标签，后台写操作按其影响的实体失效。
const (
	TagPost        = "Post"
	TagTag         = "Tag"
	TagRegion      = "Region"
	TagHotel       = "Hotel"
	TagActivity    = "Activity"
	TagVideo       = "Video"
	TagGallery     = "Gallery"
	TagComment     = "Comment"
	TagHeroSlide   = "HeroSlide"
	TagContentLink = "ContentLink"
	TagPage        = "Page"
	TagSettings    = "Settings"
)

// ContentTags 覆盖所有可被引用的内容实体，首页、站点地图等聚合接口使用。
var ContentTags = []string{TagPost, TagRegion, TagHotel, TagActivity, TagVideo, TagGallery}

// invalidate 失效给定标签；缓存故障只记录日志，不影响写操作的结果。
func (a *API) invalidate(c *gin.Context, tags ...string) {
	if err := a.cache.Invalidate(c.Request.Context(), tags...); err != nil {
		a.log.Warn("cache invalidate failed", zap.Strings("tags", tags), zap.Error(err))
	}
}

// invalidateContent 用于内容删除：内容本身、引用它的关联与轮播都需要刷新。
func (a *API) invalidateContent(c *gin.Context, tags ...string) {
	a.invalidate(c, append(tags, TagContentLink, TagHeroSlide, TagComment)...)
}
