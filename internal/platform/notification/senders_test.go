package notification

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLogSenders_WriteStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	email := &LogEmailSender{Logger: logger}
	if err := email.SendEmail(context.Background(), "ada@example.com", "hi", "body"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sms := &LogSMSSender{Logger: logger}
	if err := sms.SendSMS(context.Background(), "+2348000000000", "body"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"channel":"email"`) || !strings.Contains(out, "ada@example.com") {
		t.Errorf("email line missing fields: %q", out)
	}
	if !strings.Contains(out, `"channel":"sms"`) || !strings.Contains(out, "+2348000000000") {
		t.Errorf("sms line missing fields: %q", out)
	}
	if !strings.Contains(out, "body_bytes") || strings.Contains(out, `"body":"body"`) {
		t.Errorf("message body must be logged as a byte count, not verbatim: %q", out)
	}
}

func TestStartRetryWorkers_ResendsFailed(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	d := NewDispatcher(email, &MockSMSSender{}, NewTemplateEngine(), 1)

	n := &Notification{Type: TypeEmail, Recipient: "ada@example.com", Body: "body"}
	if err := d.Send(context.Background(), n); err == nil {
		t.Fatal("expected initial send to fail")
	}

	email.ShouldFail = false
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.StartRetryWorkers(ctx, 2, 10*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := d.Get(context.Background(), n.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status == StatusSent {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("failed notification was not retried in time")
}
