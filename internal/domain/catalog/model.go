package catalog

import (
	"time"

	"github.com/google/uuid"
)

// TestStandard maps to the test_standard table. BasePrice is the
// platform-wide price in naira; centers may override it per standard.
type TestStandard struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Description    *string   `db:"description" json:"description,omitempty"`
	BasePrice      float64   `db:"base_price" json:"base_price"`
	TestsIncluded  []string  `db:"tests_included" json:"tests_included"`
	TurnaroundHrs  int       `db:"turnaround_hours" json:"turnaround_hours"`
	WindowPeriodID *string   `db:"window_period" json:"window_period,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// AddOn maps to the add_on table. Add-ons attach to any standard.
type AddOn struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Price       float64   `db:"price" json:"price"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DiagnosticCenter maps to the diagnostic_center table.
type DiagnosticCenter struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Address       string    `db:"address" json:"address"`
	City          string    `db:"city" json:"city"`
	Latitude      *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude     *float64  `db:"longitude" json:"longitude,omitempty"`
	Rating        float64   `db:"rating" json:"rating"`
	Verified      bool      `db:"verified" json:"verified"`
	OperatingHrs  *string   `db:"operating_hours" json:"operating_hours,omitempty"`
	ContactPhone  *string   `db:"contact_phone" json:"contact_phone,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CenterPrice maps to the center_price table. One row per center and
// standard; its presence overrides the standard's base price at that center.
type CenterPrice struct {
	CenterID   uuid.UUID `db:"center_id" json:"center_id"`
	StandardID uuid.UUID `db:"standard_id" json:"standard_id"`
	Price      float64   `db:"price" json:"price"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// QuoteLine is one priced component of an order quote.
type QuoteLine struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price float64   `json:"price"`
}

// Quote is the priced breakdown of a standard plus selected add-ons at a
// given center.
type Quote struct {
	StandardID    uuid.UUID   `json:"standard_id"`
	CenterID      uuid.UUID   `json:"center_id"`
	StandardPrice float64     `json:"standard_price"`
	AddOns        []QuoteLine `json:"add_ons"`
	Total         float64     `json:"total"`
}
