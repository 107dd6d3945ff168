package gatherpayment

import (
	"PayIVR/ivr/card"
	"fmt"
	"strconv"
)

const zipCodeLength = 5

// Check is the verdict on one caller entry. Reason is spoken back when the
// entry is rejected.
type Check struct {
	Valid  bool
	Reason string
}

// ExpirationCheck also carries the date in the form read back to the
// caller: "20YYMM??", a year and month with the day left unspecified.
type ExpirationCheck struct {
	Check
	FullDate string
}

// CheckExpiration validates a four digit MMYY entry.
func CheckExpiration(mmyy string) ExpirationCheck {
	if mmyy == "" {
		return ExpirationCheck{Check: Check{Reason: "I did not understand your entry."}}
	}
	if len(mmyy) != 4 || !card.IsDigits(mmyy) {
		return ExpirationCheck{Check: Check{Reason: "Expiration date must be 4 digits."}}
	}
	month, _ := strconv.Atoi(mmyy[:2])
	if month < 1 || month > 12 {
		return ExpirationCheck{Check: Check{Reason: "Expiration month must be a number between 1 and 12."}}
	}
	return ExpirationCheck{
		Check:    Check{Valid: true},
		FullDate: "20" + mmyy[2:] + mmyy[:2] + "??",
	}
}

// CheckSecurityCode accepts exactly size digits.
func CheckSecurityCode(code string, size int) Check {
	if len(code) != size || !card.IsDigits(code) {
		return Check{Reason: fmt.Sprintf("Security code must be %d digits in length.", size)}
	}
	return Check{Valid: true}
}

// CheckZipCode accepts exactly five digits.
func CheckZipCode(zip string) Check {
	if len(zip) != zipCodeLength || !card.IsDigits(zip) {
		return Check{Reason: "Zip code must be five digits long."}
	}
	return Check{Valid: true}
}

// securityCodeSize falls back to the brand table, then to three digits.
func securityCodeSize(size int, cardType string) int {
	if size > 0 {
		return size
	}
	if brand, ok := card.Lookup(cardType); ok {
		return brand.Code.Size
	}
	return 3
}
