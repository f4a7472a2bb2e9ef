// Package notification provides the Email/SMS dispatch used after domain
// state transitions (code issued, result shared, withdrawal settled). Sends
// are fire-and-forget from the caller's perspective: failures are recorded
// and retryable, never propagated into the transition that triggered them.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Type is the channel used to deliver a notification.
type Type string

const (
	TypeEmail Type = "email"
	TypeSMS   Type = "sms"
)

// Delivery statuses.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Notification is a single outbound message.
type Notification struct {
	ID           string            `json:"id"`
	Type         Type              `json:"type"`
	Recipient    string            `json:"recipient"`
	Subject      string            `json:"subject,omitempty"`
	Body         string            `json:"body"`
	TemplateID   string            `json:"template_id,omitempty"`
	TemplateData map[string]string `json:"template_data,omitempty"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender is the interface for sending SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Template defines a reusable notification template.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Type    Type   `json:"type"`
}

// Built-in template ids, one per notifying state transition.
const (
	TemplateCodeIssued       = "code-issued"
	TemplateCodeRedeemed     = "code-redeemed"
	TemplateResultShared     = "result-shared"
	TemplateShareRevoked     = "share-revoked"
	TemplateWithdrawalPaid   = "withdrawal-paid"
	TemplateWithdrawalFailed = "withdrawal-failed"
)

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      TemplateCodeIssued,
			Name:    "Assessment Code Issued",
			Subject: "Your assessment code",
			Body:    "Dear {{patient_name}}, your assessment code is {{code}}. Present it at any partner diagnostic center before {{valid_until}}.",
			Type:    TypeEmail,
		},
		{
			ID:      TemplateCodeRedeemed,
			Name:    "Assessment Code Redeemed",
			Subject: "Code redeemed at {{center_name}}",
			Body:    "Dear {{patient_name}}, your assessment code {{code}} was redeemed at {{center_name}}. Results are typically ready within {{turnaround}}.",
			Type:    TypeEmail,
		},
		{
			ID:      TemplateResultShared,
			Name:    "Result Shared",
			Subject: "A test result has been shared with you",
			Body:    "A {{access_level}} view of a test result has been shared with you. Access expires on {{expires_at}}.",
			Type:    TypeEmail,
		},
		{
			ID:      TemplateShareRevoked,
			Name:    "Result Access Revoked",
			Subject: "Result access revoked",
			Body:    "Your access to a shared test result has been revoked by the patient.",
			Type:    TypeEmail,
		},
		{
			ID:      TemplateWithdrawalPaid,
			Name:    "Withdrawal Processed",
			Subject: "Withdrawal of NGN {{amount}} processed",
			Body:    "Your withdrawal of NGN {{amount}} to {{bank_name}} ({{account_number}}) was processed. Net payout: NGN {{net}}.",
			Type:    TypeSMS,
		},
		{
			ID:      TemplateWithdrawalFailed,
			Name:    "Withdrawal Failed",
			Subject: "Withdrawal of NGN {{amount}} failed",
			Body:    "Your withdrawal of NGN {{amount}} could not be processed ({{reason}}). Your balance was not debited.",
			Type:    TypeSMS,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

func (e *TemplateEngine) templateType(templateID string) Type {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if t, ok := e.templates[templateID]; ok {
		return t.Type
	}
	return TypeEmail
}

// ---------------------------------------------------------------------------
// Mock senders (test doubles, also used in development mode)
// ---------------------------------------------------------------------------

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// SMSCall records a single call to SendSMS.
type SMSCall struct {
	To   string
	Body string
}

// MockSMSSender is a test double for SMSSender.
type MockSMSSender struct {
	mu         sync.Mutex
	calls      []SMSCall
	ShouldFail bool
	FailError  string
}

func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SMSCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded SMS calls.
func (m *MockSMSSender) Calls() []SMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Dispatcher orchestrates sending, storage, and retrieval of notifications.
type Dispatcher struct {
	emailSender   EmailSender
	smsSender     SMSSender
	templates     *TemplateEngine
	maxAttempts   int
	mu            sync.RWMutex
	notifications map[string]*Notification
}

// NewDispatcher constructs a Dispatcher. maxAttempts bounds automatic retries
// in SendTemplate; values below 1 are treated as 1.
func NewDispatcher(email EmailSender, sms SMSSender, tpl *TemplateEngine, maxAttempts int) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Dispatcher{
		emailSender:   email,
		smsSender:     sms,
		templates:     tpl,
		maxAttempts:   maxAttempts,
		notifications: make(map[string]*Notification),
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n *Notification) error {
	switch n.Type {
	case TypeEmail:
		return d.emailSender.SendEmail(ctx, n.Recipient, n.Subject, n.Body)
	case TypeSMS:
		return d.smsSender.SendSMS(ctx, n.Recipient, n.Body)
	default:
		return fmt.Errorf("unsupported notification type: %s", n.Type)
	}
}

// Send dispatches a notification, assigns an ID and timestamps, and records
// the outcome. A delivery failure is recorded on the notification and
// returned; callers on the transition path ignore it by design.
func (d *Dispatcher) Send(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC()
	n.Status = StatusPending

	sendErr := d.deliver(ctx, n)
	if sendErr != nil {
		n.Status = StatusFailed
		n.Error = sendErr.Error()
	} else {
		n.Status = StatusSent
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
	}

	d.mu.Lock()
	d.notifications[n.ID] = n
	d.mu.Unlock()

	return sendErr
}

// SendTemplate renders a template and sends the resulting notification,
// retrying failed deliveries up to the configured attempt limit.
func (d *Dispatcher) SendTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*Notification, error) {
	subject, body, err := d.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	n := &Notification{
		Type:         d.templates.templateType(templateID),
		Recipient:    recipient,
		Subject:      subject,
		Body:         body,
		TemplateID:   templateID,
		TemplateData: data,
	}

	err = d.Send(ctx, n)
	for attempt := 1; err != nil && attempt < d.maxAttempts; attempt++ {
		err = d.Retry(ctx, n.ID)
	}
	if err != nil {
		return n, err
	}
	return n, nil
}

// Get retrieves a notification by ID.
func (d *Dispatcher) Get(_ context.Context, id string) (*Notification, error) {
	d.mu.RLock()
	n, ok := d.notifications[id]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("notification %q not found", id)
	}
	return n, nil
}

// ListByRecipient returns notifications for a given recipient, up to limit.
func (d *Dispatcher) ListByRecipient(_ context.Context, recipient string, limit int) []*Notification {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var result []*Notification
	for _, n := range d.notifications {
		if n.Recipient == recipient {
			result = append(result, n)
			if len(result) >= limit {
				break
			}
		}
	}
	return result
}

// Retry re-sends a failed notification. Returns an error if the notification
// is not in failed status.
func (d *Dispatcher) Retry(ctx context.Context, id string) error {
	d.mu.RLock()
	n, ok := d.notifications[id]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("notification %q not found", id)
	}
	if n.Status != StatusFailed {
		return fmt.Errorf("notification %q is not in failed status (current: %s)", id, n.Status)
	}

	sendErr := d.deliver(ctx, n)

	d.mu.Lock()
	if sendErr != nil {
		n.Status = StatusFailed
		n.Error = sendErr.Error()
	} else {
		n.Status = StatusSent
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
		n.Error = ""
	}
	d.mu.Unlock()

	return sendErr
}

// Stats returns counts of notifications grouped by status.
func (d *Dispatcher) Stats(_ context.Context) map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := make(map[string]int)
	for _, n := range d.notifications {
		stats[n.Status]++
	}
	return stats
}

func (d *Dispatcher) failedIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var ids []string
	for id, n := range d.notifications {
		if n.Status == StatusFailed {
			ids = append(ids, id)
		}
	}
	return ids
}

// StartRetryWorkers launches a pool that periodically re-sends failed
// notifications. Each sweep fans the failed IDs out to the workers. The pool
// stops when ctx is cancelled.
func (d *Dispatcher) StartRetryWorkers(ctx context.Context, workers int, interval time.Duration) {
	if workers < 1 {
		workers = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ids := make(chan string)
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-ids:
					_ = d.Retry(ctx, id)
				}
			}
		}()
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, id := range d.failedIDs() {
					select {
					case ids <- id:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
}

// ---------------------------------------------------------------------------
// HTTP handler (admin surface)
// ---------------------------------------------------------------------------

// Handler exposes notification operations over HTTP via Echo.
type Handler struct {
	dispatcher *Dispatcher
}

// NewHandler creates a new Handler.
func NewHandler(d *Dispatcher) *Handler {
	return &Handler{dispatcher: d}
}

// RegisterRoutes registers all notification routes on the given Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications", h.List)
	g.GET("/notifications/stats", h.GetStats)
	g.GET("/notifications/:id", h.Get)
	g.POST("/notifications/:id/retry", h.PostRetry)
}

func (h *Handler) Get(c echo.Context) error {
	n, err := h.dispatcher.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) List(c echo.Context) error {
	recipient := c.QueryParam("recipient")
	if recipient == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recipient query parameter is required")
	}
	return c.JSON(http.StatusOK, h.dispatcher.ListByRecipient(c.Request().Context(), recipient, 100))
}

func (h *Handler) PostRetry(c echo.Context) error {
	id := c.Param("id")
	if err := h.dispatcher.Retry(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, _ := h.dispatcher.Get(c.Request().Context(), id)
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dispatcher.Stats(c.Request().Context()))
}
