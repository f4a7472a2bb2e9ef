package catalog

import (
	"net/http"
	"strings"

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
	// Browsing is open to any authenticated role.
	api.GET("/test-standards", h.ListStandards)
	api.GET("/test-standards/:id", h.GetStandard)
	api.GET("/add-ons", h.ListAddOns)
	api.GET("/centers", h.ListCenters)
	api.GET("/centers/:id", h.GetCenter)
	api.GET("/centers/:id/prices", h.ListCenterPrices)
	api.GET("/quote", h.Quote)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/test-standards", h.CreateStandard)
	admin.PUT("/test-standards/:id", h.UpdateStandard)
	admin.DELETE("/test-standards/:id", h.DeleteStandard)
	admin.POST("/add-ons", h.CreateAddOn)
	admin.PUT("/add-ons/:id", h.UpdateAddOn)
	admin.DELETE("/add-ons/:id", h.DeleteAddOn)
	admin.POST("/centers", h.CreateCenter)
	admin.PUT("/centers/:id", h.UpdateCenter)
	admin.DELETE("/centers/:id", h.DeleteCenter)
	admin.POST("/centers/:id/verify", h.VerifyCenter)

	center := api.Group("", auth.RequireRole(auth.RoleCenter))
	center.PUT("/centers/:id/prices/:standardId", h.SetCenterPrice)
	center.DELETE("/centers/:id/prices/:standardId", h.RemoveCenterPrice)
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(xerrors.HTTPStatus(err), err.Error())
}

// -- TestStandard --

func (h *Handler) CreateStandard(c echo.Context) error {
	var ts TestStandard
	if err := c.Bind(&ts); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateStandard(c.Request().Context(), &ts); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, ts)
}

func (h *Handler) GetStandard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ts, err := h.svc.GetStandard(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ts)
}

func (h *Handler) ListStandards(c echo.Context) error {
	pg := pagination.FromContext(c)
	activeOnly := c.QueryParam("active") != "false"
	items, total, err := h.svc.ListStandards(c.Request().Context(), activeOnly, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateStandard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ts TestStandard
	if err := c.Bind(&ts); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ts.ID = id
	if err := h.svc.UpdateStandard(c.Request().Context(), &ts); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ts)
}

func (h *Handler) DeleteStandard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteStandard(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- AddOn --

func (h *Handler) CreateAddOn(c echo.Context) error {
	var a AddOn
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateAddOn(c.Request().Context(), &a); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAddOns(c echo.Context) error {
	pg := pagination.FromContext(c)
	activeOnly := c.QueryParam("active") != "false"
	items, total, err := h.svc.ListAddOns(c.Request().Context(), activeOnly, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAddOn(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var a AddOn
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = id
	if err := h.svc.UpdateAddOn(c.Request().Context(), &a); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAddOn(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteAddOn(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- DiagnosticCenter --

func (h *Handler) CreateCenter(c echo.Context) error {
	var dc DiagnosticCenter
	if err := c.Bind(&dc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateCenter(c.Request().Context(), &dc); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dc)
}

func (h *Handler) GetCenter(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	dc, err := h.svc.GetCenter(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dc)
}

func (h *Handler) ListCenters(c echo.Context) error {
	pg := pagination.FromContext(c)
	city := c.QueryParam("city")
	verifiedOnly := c.QueryParam("verified") == "true"
	items, total, err := h.svc.ListCenters(c.Request().Context(), city, verifiedOnly, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateCenter(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var dc DiagnosticCenter
	if err := c.Bind(&dc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dc.ID = id
	if err := h.svc.UpdateCenter(c.Request().Context(), &dc); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dc)
}

func (h *Handler) DeleteCenter(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteCenter(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) VerifyCenter(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	dc, err := h.svc.VerifyCenter(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dc)
}

// -- Pricing --

func (h *Handler) SetCenterPrice(c echo.Context) error {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid center id")
	}
	standardID, err := uuid.Parse(c.Param("standardId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid standard id")
	}
	var body struct {
		Price float64 `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := &CenterPrice{CenterID: centerID, StandardID: standardID, Price: body.Price}
	if err := h.svc.SetCenterPrice(c.Request().Context(), p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) RemoveCenterPrice(c echo.Context) error {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid center id")
	}
	standardID, err := uuid.Parse(c.Param("standardId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid standard id")
	}
	if err := h.svc.RemoveCenterPrice(c.Request().Context(), centerID, standardID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListCenterPrices(c echo.Context) error {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid center id")
	}
	prices, err := h.svc.ListCenterPrices(c.Request().Context(), centerID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, prices)
}

// Quote prices standard + add-ons at a center.
// GET /quote?standard_id=&center_id=&add_on_ids=a,b,c
func (h *Handler) Quote(c echo.Context) error {
	standardID, err := uuid.Parse(c.QueryParam("standard_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid standard_id")
	}
	centerID, err := uuid.Parse(c.QueryParam("center_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid center_id")
	}
	var addOnIDs []uuid.UUID
	if raw := c.QueryParam("add_on_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid add_on_ids")
			}
			addOnIDs = append(addOnIDs, id)
		}
	}
	q, err := h.svc.QuoteOrder(c.Request().Context(), standardID, centerID, addOnIDs)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, q)
}
