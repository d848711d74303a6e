package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"starides-api/apperr"
	"starides-api/media"
	"starides-api/middleware"
	"starides-api/models"
)

// setAsset records an uploaded asset and returns the public id it replaced.
type setAsset func(ctx context.Context, url, publicID string) (string, error)

// upload stores the "image" form file under folder and hands it to set. The
// new asset is removed again if set fails; the replaced one is removed after.
func (h *Handler) upload(c *gin.Context, folder string, set setAsset) {
	if h.media == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Code:    string(apperr.KindUnavailable),
			Message: "media uploads are not configured",
		})
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		h.fail(c, apperr.InvalidInput("image file required"))
		return
	}
	if err := media.ValidateImageFile(fh); err != nil {
		h.fail(c, apperr.InvalidInput(err.Error()))
		return
	}
	ctx := c.Request.Context()
	url, publicID, err := h.store(ctx, fh, folder)
	if err != nil {
		h.fail(c, apperr.Internal(err))
		return
	}
	previous, err := set(ctx, url, publicID)
	if err != nil {
		h.discard(ctx, publicID)
		h.fail(c, err)
		return
	}
	if previous != "" {
		h.discard(ctx, previous)
	}
	respond(c, http.StatusOK, "Image uploaded", gin.H{"url": url})
}

func (h *Handler) store(ctx context.Context, fh *multipart.FileHeader, folder string) (string, string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", "", err
	}
	defer f.Close()
	return h.media.UploadImage(ctx, f, fh.Filename, folder)
}

func (h *Handler) discard(ctx context.Context, publicID string) {
	if err := h.media.DeleteImage(ctx, publicID); err != nil {
		h.log.Warn("failed to delete image", "action", "delete_image", "public_id", publicID, "error", err)
	}
}

// UploadRestaurantLogo godoc
// @Summary Upload restaurant logo
// @Tags Vendor
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param image formData file true "jpg, jpeg, png, gif or webp, up to 10MB"
// @Success 200 {object} models.Response
// @Failure 503 {object} models.ErrorResponse
// @Router /vendor/restaurants/{id}/logo [post]
func (h *Handler) UploadRestaurantLogo(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	ident := middleware.GetIdentity(c)
	if err := h.restaurants.CanManage(c.Request.Context(), ident, id); err != nil {
		h.fail(c, err)
		return
	}
	h.upload(c, "restaurants", func(ctx context.Context, url, publicID string) (string, error) {
		return h.restaurants.SetLogo(ctx, ident, id, url, publicID)
	})
}

// UploadMenuItemImage godoc
// @Summary Upload menu item photo
// @Tags Vendor
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Menu item ID"
// @Param image formData file true "jpg, jpeg, png, gif or webp, up to 10MB"
// @Success 200 {object} models.Response
// @Failure 503 {object} models.ErrorResponse
// @Router /vendor/menu-items/{id}/image [post]
func (h *Handler) UploadMenuItemImage(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	ident := middleware.GetIdentity(c)
	h.upload(c, "menu-items", func(ctx context.Context, url, publicID string) (string, error) {
		return h.menu.SetImage(ctx, ident, id, url, publicID)
	})
}
