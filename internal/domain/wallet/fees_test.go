package wallet

import "testing"

func TestWithdrawalFee(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   float64
	}{
		{"below threshold", 40000, 50},
		{"just below threshold", 49999, 50},
		{"at threshold", 50000, 0},
		{"above threshold", 60000, 0},
		{"small amount", 1000, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithdrawalFee(tt.amount, 50000, 50); got != tt.want {
				t.Errorf("WithdrawalFee(%v) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestNetPayout(t *testing.T) {
	if got := NetPayout(40000, 50); got != 39950 {
		t.Errorf("expected 39950, got %v", got)
	}
	if got := NetPayout(60000, 0); got != 60000 {
		t.Errorf("expected 60000, got %v", got)
	}
}

func TestIsValidAccountNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0123456789", true},
		{"9999999999", true},
		{"012345678", false},   // 9 digits
		{"01234567890", false}, // 11 digits
		{"01234 6789", false},
		{"01234567ab", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidAccountNumber(tt.in); got != tt.want {
			t.Errorf("IsValidAccountNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCanCancel(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusForm, true},
		{StatusConfirm, true},
		{StatusProcessing, false},
		{StatusSuccess, false},
		{StatusFailed, false},
		{StatusCancelled, false},
	}
	for _, tt := range tests {
		w := &WithdrawalRequest{Status: tt.status}
		if got := w.CanCancel(); got != tt.want {
			t.Errorf("CanCancel() in %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}
