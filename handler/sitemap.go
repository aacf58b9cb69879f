package handler

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lanternblog/lantern"
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

// Sitemap walks every post page and emits a sitemap.xml for crawlers.
func (h *Handler) Sitemap(c echo.Context) error {
	base := "https://" + c.Request().Host
	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []sitemapURL{{Loc: base + "/"}},
	}

	ctx := c.Request().Context()
	var after *lantern.Cursor
	for {
		page := h.blog.FetchPage(ctx, h.pageSize, after)
		for _, post := range page.Posts {
			ref := post.Slug
			if ref == "" {
				ref = post.ID
			}
			set.URLs = append(set.URLs, sitemapURL{
				Loc:     base + "/posts/" + ref,
				LastMod: post.UpdatedAt.Format(time.RFC3339),
			})
		}
		if page.Cursor == nil {
			break
		}
		after = page.Cursor
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "sitemap generation failed")
	}
	return c.Blob(http.StatusOK, "application/xml", append([]byte(xml.Header), out...))
}
