package entity

// CallState accumulates the payment fields entered during one call.
type CallState struct {
	PaymentAmount    string `json:"paymentAmount,omitempty"`
	CardNumber       string `json:"cardNumber,omitempty"`
	CardType         string `json:"cardType,omitempty"`
	SecurityCodeSize int    `json:"securityCodeSize,omitempty"`
	Expiration       string `json:"expiration,omitempty"`
	SecurityCode     string `json:"securityCode,omitempty"`
	ZipCode          string `json:"zipCode,omitempty"`
}

// Last4 returns the trailing four digits of the card number.
func (s *CallState) Last4() string {
	if len(s.CardNumber) <= 4 {
		return s.CardNumber
	}
	return s.CardNumber[len(s.CardNumber)-4:]
}
