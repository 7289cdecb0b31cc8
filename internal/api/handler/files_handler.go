package handler

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/tesloshop/catalog-api/internal/infrastructure/storage"
)

// FilesHandler owns the image-byte surface: uploads go to disk, the core only
// ever sees the resulting URL strings.
type FilesHandler struct {
	store    *storage.Disk
	basePath string
}

func NewFilesHandler(store *storage.Disk, basePath string) *FilesHandler {
	return &FilesHandler{store: store, basePath: basePath}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload handles POST /api/files/product.
//
// @Summary      Upload a product image
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Image file (jpg, jpeg, png, gif)"
// @Success      201   {object}  uploadResponse
// @Failure      400   {object}  map[string]string
// @Router       /files/product [post]
func (h *FilesHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	if !storage.Allowed(fileHeader.Filename) {
		return echo.NewHTTPError(http.StatusBadRequest, "file type not allowed, expected jpg, jpeg, png, or gif")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer src.Close()

	name, err := h.store.Save(fileHeader.Filename, src)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, uploadResponse{
		SecureURL: h.basePath + "/api/files/product/" + name,
	})
}

// Get handles GET /api/files/product/:imageName.
//
// @Summary      Serve a product image
// @Tags         files
// @Produce      image/*
// @Param        imageName  path  string  true  "Stored image name"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /files/product/{imageName} [get]
func (h *FilesHandler) Get(c echo.Context) error {
	path, err := h.store.Path(c.Param("imageName"))
	if err != nil {
		if os.IsNotExist(err) {
			return echo.NewHTTPError(http.StatusNotFound, "image not found")
		}
		return err
	}
	return c.File(path)
}
