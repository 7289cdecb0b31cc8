package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SeedRunner abstracts the seed service.
type SeedRunner interface {
	Run(ctx context.Context) error
}

type SeedHandler struct {
	seed SeedRunner
}

func NewSeedHandler(seed SeedRunner) *SeedHandler {
	return &SeedHandler{seed: seed}
}

// Run handles POST /api/seed — wipes the catalog and loads the sample set.
//
// @Summary      Run the seed
// @Tags         seed
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /seed [post]
func (h *SeedHandler) Run(c echo.Context) error {
	if err := h.seed.Run(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "seed executed"})
}
