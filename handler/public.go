package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lanternblog/lantern"
)

type pageResponse struct {
	Posts     []*lantern.Post `json:"posts"`
	NextToken string          `json:"nextToken,omitempty"`
}

// Home returns the most recent posts under the low-latency budget. It always
// answers 200: when the store is slow or down the list is simply empty, and
// the page renders degraded rather than erroring.
func (h *Handler) Home(c echo.Context) error {
	posts := h.blog.RecentPosts(c.Request().Context(), h.limit(c))
	return c.JSON(http.StatusOK, pageResponse{Posts: posts})
}

// Posts returns one page of all posts, with a token for the next page.
func (h *Handler) Posts(c echo.Context) error {
	after := h.cursorFor(c.QueryParam("after"))
	page := h.blog.FetchPage(c.Request().Context(), h.limit(c), after)
	return c.JSON(http.StatusOK, pageResponse{
		Posts:     page.Posts,
		NextToken: h.tokenFor(page.Cursor),
	})
}

// Post resolves a single post by slug or ID.
func (h *Handler) Post(c echo.Context) error {
	post := h.blog.PostBySlug(c.Request().Context(), c.Param("slug"))
	if post == nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	return c.JSON(http.StatusOK, post)
}

// Category returns the latest posts in one category.
func (h *Handler) Category(c echo.Context) error {
	id := c.Param("id")
	if !lantern.IsValidCategoryID(id) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category id")
	}
	posts := h.blog.PostsByCategory(c.Request().Context(), id, h.limit(c))
	return c.JSON(http.StatusOK, pageResponse{Posts: posts})
}

// Feed merges several categories into one recency-ordered list. Categories
// come as a comma-separated "categories" parameter; absent, the configured
// category set is used.
func (h *Handler) Feed(c echo.Context) error {
	ids := splitList(c.QueryParam("categories"))
	if len(ids) == 0 {
		ids = h.blog.Config().Categories.IDs()
	}
	for _, id := range ids {
		if !lantern.IsValidCategoryID(id) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category id")
		}
	}
	posts := h.blog.PostsByCategories(c.Request().Context(), ids, h.limit(c))
	return c.JSON(http.StatusOK, pageResponse{Posts: posts})
}

// Search scans recent posts for a substring match.
func (h *Handler) Search(c echo.Context) error {
	posts := h.blog.Search(c.Request().Context(), c.QueryParam("q"), h.limit(c))
	return c.JSON(http.StatusOK, pageResponse{Posts: posts})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Contact forwards a reader message to the configured mailbox.
func (h *Handler) Contact(c echo.Context) error {
	if h.mailer == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "contact is not configured")
	}

	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and message are required")
	}

	err := h.mailer.Send(lantern.Email{
		Subject: "Contact form message from " + req.Name,
		Text:    "From: " + req.Name + " <" + req.Email + ">\n\n" + req.Message,
	})
	if err != nil {
		h.logger.Error("contact mail delivery failed", "error", err.Error())
		return echo.NewHTTPError(http.StatusBadGateway, "message could not be delivered")
	}
	return c.NoContent(http.StatusAccepted)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
