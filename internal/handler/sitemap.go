package handler

import (
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"
)

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap 输出已发布内容的 sitemap.xml
func (a *API) Sitemap(c *gin.Context) {
	entries, err := a.sitemap.Entries()
	if err != nil {
		a.respondServiceError(c, err, "生成站点地图失败")
		return
	}

	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(entries)),
	}
	for _, entry := range entries {
		item := sitemapURL{Loc: a.siteURL + entry.Path}
		if !entry.LastMod.IsZero() {
			item.LastMod = entry.LastMod.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, item)
	}

	c.XML(http.StatusOK, set)
}
