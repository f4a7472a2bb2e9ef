package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zivahealth/ziva/internal/platform/auth"
	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Savings figures are public marketing data; edits are admin-only.
	api.GET("/settings/prime-savings", h.PrimeSavings)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/settings", h.Get)
	admin.PUT("/settings", h.Update)
}

func (h *Handler) Get(c echo.Context) error {
	s, err := h.svc.Get(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(xerrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Update(c echo.Context) error {
	var s PlatformSettings
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Update(c.Request().Context(), &s); err != nil {
		return echo.NewHTTPError(xerrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) PrimeSavings(c echo.Context) error {
	savings, percent, err := h.svc.PrimeSavings(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(xerrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]float64{
		"annual_savings":  savings,
		"savings_percent": percent,
	})
}
