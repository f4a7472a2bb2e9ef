package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	return h, e
}

func TestHandler_CreateStandard(t *testing.T) {
	h, e := newTestHandler()
	body := `{"name":"Standard 5","base_price":3500,"active":true}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.CreateStandard(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_CreateStandard_NegativePrice(t *testing.T) {
	h, e := newTestHandler()
	body := `{"name":"Standard 5","base_price":-1}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h.CreateStandard(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_GetStandard_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	err := h.GetStandard(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_ListStandards(t *testing.T) {
	h, e := newTestHandler()
	seedStandard(t, h.svc, 3500)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.ListStandards(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Quote(t *testing.T) {
	h, e := newTestHandler()
	ts := seedStandard(t, h.svc, 3500)
	dc := seedCenter(t, h.svc)
	if err := h.svc.SetCenterPrice(context.Background(), &CenterPrice{CenterID: dc.ID, StandardID: ts.ID, Price: 3000}); err != nil {
		t.Fatalf("set price: %v", err)
	}
	home := seedAddOn(t, h.svc, "Home sample collection", 500)
	consult := seedAddOn(t, h.svc, "Doctor consultation", 750)

	url := "/?standard_id=" + ts.ID.String() + "&center_id=" + dc.ID.String() +
		"&add_on_ids=" + home.ID.String() + "," + consult.ID.String()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Quote(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var q Quote
	if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if q.Total != 4250 {
		t.Errorf("expected total 4250, got %v", q.Total)
	}
}

func TestHandler_Quote_InvalidStandardID(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?standard_id=nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h.Quote(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_SetCenterPrice(t *testing.T) {
	h, e := newTestHandler()
	ts := seedStandard(t, h.svc, 3500)
	dc := seedCenter(t, h.svc)

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"price":3000}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "standardId")
	c.SetParamValues(dc.ID.String(), ts.ID.String())
	if err := h.SetCenterPrice(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	price, err := h.svc.StandardPriceAt(context.Background(), ts.ID, dc.ID)
	if err != nil {
		t.Fatalf("price lookup: %v", err)
	}
	if price != 3000 {
		t.Errorf("expected 3000 after override, got %v", price)
	}
}

func TestHandler_VerifyCenter(t *testing.T) {
	h, e := newTestHandler()
	dc := seedCenter(t, h.svc)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(dc.ID.String())
	if err := h.VerifyCenter(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
