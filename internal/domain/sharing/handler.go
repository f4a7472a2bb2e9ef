package sharing

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zivahealth/ziva/internal/platform/auth"
	"github.com/zivahealth/ziva/internal/platform/xerrors"
	"github.com/zivahealth/ziva/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	patient := api.Group("", auth.RequireRole(auth.RolePatient))
	patient.POST("/shares", h.Grant)
	patient.GET("/shares", h.ListMine)
	patient.POST("/shares/:id/revoke", h.Revoke)
	patient.GET("/results/:resultId/shares", h.ListByResult)

	api.GET("/shares/:id", h.Get)
	api.GET("/shares/:id/access", h.CheckAccess)

	sponsor := api.Group("", auth.RequireRole(auth.RoleSponsor))
	sponsor.GET("/shares/sponsored", h.ListSponsored)
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(xerrors.HTTPStatus(err), err.Error())
}

func (h *Handler) Grant(c echo.Context) error {
	var p GrantParams
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if p.PatientID == uuid.Nil {
		if uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
			p.PatientID = uid
		}
	}
	g, err := h.svc.Grant(c.Request().Context(), p, time.Now())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	g, err := h.svc.Get(c.Request().Context(), id, time.Now())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) Revoke(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	g, err := h.svc.Revoke(c.Request().Context(), id, time.Now())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) CheckAccess(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ok, err := h.svc.CheckAccess(c.Request().Context(), id, time.Now())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"accessible": ok})
}

func (h *Handler) ListMine(c echo.Context) error {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), uid, time.Now(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByResult(c echo.Context) error {
	resultID, err := uuid.Parse(c.Param("resultId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid result id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByResult(c.Request().Context(), resultID, time.Now(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListSponsored(c echo.Context) error {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBySponsor(c.Request().Context(), uid, time.Now(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
