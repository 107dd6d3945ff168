package gatherpayment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckExpiration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		valid    bool
		reason   string
		fullDate string
	}{
		{name: "valid", input: "0428", valid: true, fullDate: "202804??"},
		{name: "december", input: "1299", valid: true, fullDate: "209912??"},
		{name: "empty", input: "", reason: "I did not understand your entry."},
		{name: "short", input: "123", reason: "Expiration date must be 4 digits."},
		{name: "long", input: "12345", reason: "Expiration date must be 4 digits."},
		{name: "not digits", input: "12a4", reason: "Expiration date must be 4 digits."},
		{name: "month zero", input: "0025", reason: "Expiration month must be a number between 1 and 12."},
		{name: "month thirteen", input: "1325", reason: "Expiration month must be a number between 1 and 12."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := CheckExpiration(tt.input)
			assert.Equal(t, tt.valid, check.Valid)
			assert.Equal(t, tt.reason, check.Reason)
			assert.Equal(t, tt.fullDate, check.FullDate)
		})
	}
}

func TestCheckExpirationMonths(t *testing.T) {
	for month := 0; month <= 99; month++ {
		mmyy := string(rune('0'+month/10)) + string(rune('0'+month%10)) + "30"
		check := CheckExpiration(mmyy)
		assert.Equal(t, month >= 1 && month <= 12, check.Valid, mmyy)
	}
}

func TestCheckSecurityCode(t *testing.T) {
	assert.True(t, CheckSecurityCode("123", 3).Valid)
	assert.True(t, CheckSecurityCode("1234", 4).Valid)

	check := CheckSecurityCode("12", 3)
	assert.False(t, check.Valid)
	assert.Equal(t, "Security code must be 3 digits in length.", check.Reason)

	assert.False(t, CheckSecurityCode("1234", 3).Valid)
	assert.False(t, CheckSecurityCode("123", 4).Valid)
	assert.False(t, CheckSecurityCode("12a", 3).Valid)
	assert.False(t, CheckSecurityCode("", 3).Valid)
}

func TestCheckZipCode(t *testing.T) {
	assert.True(t, CheckZipCode("94105").Valid)

	for _, zip := range []string{"", "1234", "123456", "9410a"} {
		check := CheckZipCode(zip)
		assert.False(t, check.Valid, zip)
		assert.Equal(t, "Zip code must be five digits long.", check.Reason)
	}
}

func TestSecurityCodeSize(t *testing.T) {
	assert.Equal(t, 4, securityCodeSize(4, "visa"))
	assert.Equal(t, 4, securityCodeSize(0, "american-express"))
	assert.Equal(t, 3, securityCodeSize(0, "visa"))
	assert.Equal(t, 3, securityCodeSize(0, ""))
}
