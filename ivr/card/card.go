// Package card identifies payment card brands from their numbers and checks
// that a number is complete and well formed.
package card

import (
	"strconv"
	"strings"
)

const maxLength = 19

// Result of checking a card number.
type Result struct {
	Card               *Brand
	IsPotentiallyValid bool
	IsValid            bool
}

// Validate checks number against the brand table. Spaces and dashes are
// ignored. A number is valid when exactly one brand claims it, its length
// is one the brand issues and it passes the Luhn check (UnionPay numbers
// are not Luhn checked).
func Validate(number string) Result {
	number = Normalize(number)
	if number == "" || len(number) > maxLength || !IsDigits(number) {
		return Result{}
	}

	brand, ok := detect(number)
	if !ok {
		return Result{}
	}

	result := Result{Card: &brand}

	maxBrandLength := brand.Lengths[len(brand.Lengths)-1]
	lengthOK := false
	for _, l := range brand.Lengths {
		if len(number) == l {
			lengthOK = true
			break
		}
	}

	luhnOK := brand.Type == TypeUnionPay || Luhn(number)

	result.IsValid = lengthOK && luhnOK
	result.IsPotentiallyValid = result.IsValid || len(number) < maxBrandLength
	return result
}

// Normalize strips the separators callers commonly type or speak.
func Normalize(number string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)
}

func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// Luhn reports whether the digit string carries a valid mod-10 check digit.
func Luhn(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Split cuts number into the blocks printed on the card, one block per gap
// plus the remainder.
func Split(number string, gaps []int) []string {
	blocks := make([]string, 0, len(gaps)+1)
	start := 0
	for _, gap := range gaps {
		end := min(gap, len(number))
		if end < start {
			end = start
		}
		blocks = append(blocks, number[start:end])
		start = end
	}
	return append(blocks, number[start:])
}

// detect picks the brand with the most specific matching prefix.
func detect(number string) (Brand, bool) {
	var best Brand
	bestStrength := 0
	tie := false

	for _, b := range brands {
		strength := matchStrength(number, b.Patterns)
		switch {
		case strength == 0:
			continue
		case strength > bestStrength:
			best = b
			bestStrength = strength
			tie = false
		case strength == bestStrength && b.Type != best.Type:
			tie = true
		}
	}

	if bestStrength == 0 || tie {
		return Brand{}, false
	}
	return best, true
}

func matchStrength(number string, patterns []Pattern) int {
	strength := 0
	for _, pt := range patterns {
		width := len(strconv.Itoa(pt.Min))
		if len(number) < width {
			continue
		}
		prefix, err := strconv.Atoi(number[:width])
		if err != nil {
			continue
		}
		if prefix >= pt.Min && prefix <= pt.Max && width > strength {
			strength = width
		}
	}
	return strength
}
