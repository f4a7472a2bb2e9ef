package assessment

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
	sponsor := api.Group("", auth.RequireRole(auth.RoleSponsor))
	sponsor.POST("/assessment-codes", h.Issue)
	sponsor.GET("/assessment-codes", h.ListMine)

	patient := api.Group("", auth.RequireRole(auth.RolePatient))
	patient.GET("/assessment-codes/redeemed", h.ListRedeemed)

	api.GET("/assessment-codes/:id", h.Get)
	api.POST("/assessment-codes/validate", h.Validate)

	center := api.Group("", auth.RequireRole(auth.RoleCenter))
	center.POST("/assessment-codes/redeem", h.Redeem)
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(xerrors.HTTPStatus(err), err.Error())
}

func (h *Handler) Issue(c echo.Context) error {
	var p IssueParams
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if p.SponsorID == uuid.Nil {
		if uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
			p.SponsorID = uid
		}
	}
	a, err := h.svc.Issue(c.Request().Context(), p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id, time.Now())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListMine(c echo.Context) error {
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

// ListRedeemed returns the codes the calling patient has redeemed.
func (h *Handler) ListRedeemed(c echo.Context) error {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), uid, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// Validate checks a code without consuming it. The code value travels in the
// body so it stays out of access logs.
func (h *Handler) Validate(c echo.Context) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Validate(c.Request().Context(), body.Code, time.Now())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Redeem(c echo.Context) error {
	var p RedeemParams
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Redeem(c.Request().Context(), p, time.Now())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}
