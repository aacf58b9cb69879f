package handler

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/lanternblog/lantern"
)

// RequireEditor is admin-group middleware that checks the JWT role claim.
// The token itself is verified by the echo-jwt middleware before this runs.
func RequireEditor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["role"] != "editor" {
			return echo.NewHTTPError(http.StatusForbidden, "editor role required")
		}
		return next(c)
	}
}

// CreatePost publishes a new post. Write failures come back loud, with the
// validation detail in the response.
func (h *Handler) CreatePost(c echo.Context) error {
	var draft lantern.Post
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	created, err := h.blog.CreatePost(c.Request().Context(), &draft)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdatePost revises an existing post.
func (h *Handler) UpdatePost(c echo.Context) error {
	var revision lantern.Post
	if err := c.Bind(&revision); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	updated, err := h.blog.UpdatePost(c.Request().Context(), c.Param("id"), &revision)
	if err != nil {
		return writeError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeletePost removes a post permanently.
func (h *Handler) DeletePost(c echo.Context) error {
	if err := h.blog.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListPosts pages through all posts for the admin table.
func (h *Handler) ListPosts(c echo.Context) error {
	after := h.cursorFor(c.QueryParam("after"))
	page := h.blog.FetchPage(c.Request().Context(), h.limit(c), after)
	return c.JSON(http.StatusOK, pageResponse{
		Posts:     page.Posts,
		NextToken: h.tokenFor(page.Cursor),
	})
}

// UploadAsset stores a cover image and returns its public URL.
func (h *Handler) UploadAsset(c echo.Context) error {
	if h.assets == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "asset uploads are not configured")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a file field is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer src.Close()

	url, err := h.assets.Store(file.Filename, src)
	if err != nil {
		h.logger.Error("asset upload failed", "name", file.Filename, "error", err.Error())
		return echo.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}
	return c.JSON(http.StatusCreated, map[string]string{"url": url})
}

func writeError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, lantern.ErrInvalidPost), errors.Is(err, lantern.ErrInvalidCategory):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, lantern.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, lantern.ErrPostExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
