package card

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKnownNumbers(t *testing.T) {
	tests := []struct {
		number   string
		cardType string
		codeSize int
	}{
		{"4111111111111111", TypeVisa, 3},
		{"4012888888881881", TypeVisa, 3},
		{"4242424242424242", TypeVisa, 3},
		{"5555555555554444", TypeMastercard, 3},
		{"5105105105105100", TypeMastercard, 3},
		{"2223003122003222", TypeMastercard, 3},
		{"378282246310005", TypeAmericanExpress, 4},
		{"371449635398431", TypeAmericanExpress, 4},
		{"6011111111111117", TypeDiscover, 3},
		{"6011000990139424", TypeDiscover, 3},
		{"30569309025904", TypeDinersClub, 3},
		{"38520000023237", TypeDinersClub, 3},
		{"3530111333300000", TypeJCB, 3},
		{"3566002020360505", TypeJCB, 3},
		{"6200000000000005", TypeUnionPay, 3},
		{"6759649826438453", TypeMaestro, 3},
		{"2200000000000004", TypeMir, 3},
		{"6362970000457013", TypeElo, 3},
		{"6062826786276634", TypeHipercard, 3},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			res := Validate(tt.number)
			require.NotNil(t, res.Card)
			assert.True(t, res.IsValid)
			assert.Equal(t, tt.cardType, res.Card.Type)
			assert.Equal(t, tt.codeSize, res.Card.Code.Size)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]string{
		"empty":       "",
		"letters":     "4111abcd11111111",
		"bad luhn":    "4111111111111112",
		"too short":   "411111",
		"too long":    "41111111111111111111",
		"no brand":    "9999999999999995",
		"amex length": "3782822463100050",
	}

	for name, number := range tests {
		t.Run(name, func(t *testing.T) {
			assert.False(t, Validate(number).IsValid)
		})
	}
}

func TestValidateIgnoresSeparators(t *testing.T) {
	res := Validate("4111 1111-1111 1111")
	assert.True(t, res.IsValid)
	assert.Equal(t, TypeVisa, res.Card.Type)
}

func TestValidatePotentiallyValid(t *testing.T) {
	res := Validate("411111111111")
	assert.False(t, res.IsValid)
	assert.True(t, res.IsPotentiallyValid)
}

func TestUnionPaySkipsLuhn(t *testing.T) {
	res := Validate("6200000000000006")
	require.NotNil(t, res.Card)
	assert.Equal(t, TypeUnionPay, res.Card.Type)
	assert.True(t, res.IsValid)
}

func TestSplitFollowsGaps(t *testing.T) {
	assert.Equal(t, []string{"4111", "1111", "1111", "1111"}, Split("4111111111111111", []int{4, 8, 12}))
	assert.Equal(t, []string{"3782", "822463", "10005"}, Split("378282246310005", []int{4, 10}))
	assert.Equal(t, []string{"12", "", ""}, Split("12", []int{4, 8}))
}

func TestSplitConcatenatesToNumber(t *testing.T) {
	numbers := []string{
		"4111111111111111", "5555555555554444", "6011111111111117",
		"3530111333300000", "6200000000000005", "2200000000000004",
		"378282246310005", "30569309025904",
	}
	for _, n := range numbers {
		res := Validate(n)
		require.True(t, res.IsValid, n)
		blocks := Split(n, res.Card.Gaps)
		assert.Len(t, blocks, len(res.Card.Gaps)+1)
		assert.Equal(t, n, strings.Join(blocks, ""))
	}
}

func TestLookup(t *testing.T) {
	b, ok := Lookup(TypeAmericanExpress)
	require.True(t, ok)
	assert.Equal(t, 4, b.Code.Size)

	_, ok = Lookup("unknown")
	assert.False(t, ok)
}
