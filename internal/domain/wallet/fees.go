package wallet

// Default fee policy values, used when platform settings are unavailable.
const (
	DefaultFeeWaiverThreshold = 50000.0
	DefaultFlatFee            = 50.0
	DefaultMinWithdrawal      = 1000.0
)

// WithdrawalFee returns the fee charged on a withdrawal. Amounts at or above
// the waiver threshold withdraw free; everything below pays the flat fee.
func WithdrawalFee(amount, threshold, flatFee float64) float64 {
	if amount >= threshold {
		return 0
	}
	return flatFee
}

// NetPayout is the amount actually transferred after the fee.
func NetPayout(amount, fee float64) float64 {
	return amount - fee
}

// IsValidAccountNumber reports whether the value is a NUBAN-style 10-digit
// account number.
func IsValidAccountNumber(accountNumber string) bool {
	if len(accountNumber) != 10 {
		return false
	}
	for i := 0; i < len(accountNumber); i++ {
		if accountNumber[i] < '0' || accountNumber[i] > '9' {
			return false
		}
	}
	return true
}
