package card

const (
	TypeVisa            = "visa"
	TypeMastercard      = "mastercard"
	TypeAmericanExpress = "american-express"
	TypeDinersClub      = "diners-club"
	TypeDiscover        = "discover"
	TypeJCB             = "jcb"
	TypeUnionPay        = "unionpay"
	TypeMaestro         = "maestro"
	TypeMir             = "mir"
	TypeElo             = "elo"
	TypeHiper           = "hiper"
	TypeHipercard       = "hipercard"
)

// Code describes the security code printed on a card.
type Code struct {
	Name string
	Size int
}

// Brand is one card network: the prefixes it owns, how its number is
// grouped when printed and which lengths it issues.
type Brand struct {
	Type     string
	NiceType string
	Patterns []Pattern
	Gaps     []int
	Lengths  []int
	Code     Code
}

// Pattern is a prefix, or an inclusive range of prefixes of equal width.
type Pattern struct {
	Min int
	Max int
}

func p(n int) Pattern      { return Pattern{Min: n, Max: n} }
func r(lo, hi int) Pattern { return Pattern{Min: lo, Max: hi} }

var brands = []Brand{
	{
		Type:     TypeVisa,
		NiceType: "Visa",
		Patterns: []Pattern{p(4)},
		Gaps:     []int{4, 8, 12},
		Lengths:  []int{16, 18, 19},
		Code:     Code{Name: "CVV", Size: 3},
	},
	{
		Type:     TypeMastercard,
		NiceType: "Mastercard",
		Patterns: []Pattern{r(51, 55), r(2221, 2229), r(223, 229), r(23, 26), r(270, 271), p(2720)},
		Gaps:     []int{4, 8, 12},
		Lengths:  []int{16},
		Code:     Code{Name: "CVC", Size: 3},
	},
	{
		Type:     TypeAmericanExpress,
		NiceType: "American Express",
		Patterns: []Pattern{p(34), p(37)},
		Gaps:     []int{4, 10},
		Lengths:  []int{15},
		Code:     Code{Name: "CID", Size: 4},
	},
	{
		Type:     TypeDinersClub,
		NiceType: "Diners Club",
		Patterns: []Pattern{r(300, 305), p(36), p(38), p(39)},
		Gaps:     []int{4, 10},
		Lengths:  []int{14, 16, 19},
		Code:     Code{Name: "CVV", Size: 3},
	},
	{
		Type:     TypeDiscover,
		NiceType: "Discover",
		Patterns: []Pattern{p(6011), r(644, 649), p(65)},
		Gaps:     []int{4, 8, 12},
		Lengths:  []int{16, 19},
		Code:     Code{Name: "CID", Size: 3},
	},
	{
		Type:     TypeJCB,
		NiceType: "JCB",
		Patterns: []Pattern{p(2131), p(1800), r(3528, 3589)},
		Gaps:     []int{4, 8, 12},
		Lengths:  []int{16, 17, 18, 19},
		Code:     Code{Name: "CVV", Size: 3},
	},
	{
		Type:     TypeUnionPay,
		NiceType: "UnionPay",
		Patterns: []Pattern{
			p(620), r(624, 626), r(62100, 62182), r(62184, 62187), r(62185, 62197),
			r(62200, 62205), r(622010, 622999), p(622018), r(62207, 62209), r(623, 626),
			p(6270), p(6272), p(6276), r(627700, 627779), r(627781, 627799),
			r(6282, 6289), p(6291), p(6292), p(810), r(8110, 8131), r(8132, 8151),
			r(8152, 8163), r(8164, 8171),
		},
		Gaps:    []int{4, 8, 12},
		Lengths: []int{14, 15, 16, 17, 18, 19},
		Code:    Code{Name: "CVN", Size: 3},
	},
	{
		Type:     TypeMaestro,
		NiceType: "Maestro",
		Patterns: []Pattern{
			p(493698), r(500000, 504174), r(504176, 506698), r(506779, 508999),
			r(56, 59), p(63), p(67), p(6),
		},
		Gaps:    []int{4, 8, 12},
		Lengths: []int{12, 13, 14, 15, 16, 17, 18, 19},
		Code:    Code{Name: "CVC", Size: 3},
	},
	{
		Type:     TypeMir,
		NiceType: "Mir",
		Patterns: []Pattern{r(2200, 2204)},
		Gaps:     []int{4, 8, 12},
		Lengths:  []int{16, 17, 18, 19},
		Code:     Code{Name: "CVP2", Size: 3},
	},
	{
		Type:     TypeElo,
		NiceType: "Elo",
		Patterns: []Pattern{
			p(401178), p(401179), p(438935), p(457631), p(457632), p(431274),
			p(451416), p(457393), p(504175), r(506699, 506778), r(509000, 509999),
			p(627780), p(636297), p(636368), r(650031, 650033), r(650035, 650051),
			r(650405, 650439), r(650485, 650538), r(650541, 650598), r(650700, 650718),
			r(650720, 650727), r(650901, 650978), r(651652, 651679), r(655000, 655019),
			r(655021, 655058),
		},
		Gaps:    []int{4, 8, 12},
		Lengths: []int{16},
		Code:    Code{Name: "CVE", Size: 3},
	},
	{
		Type:     TypeHiper,
		NiceType: "Hiper",
		Patterns: []Pattern{p(637095), p(63737423), p(63743358), p(637568), p(637599), p(637609), p(637612)},
		Gaps:     []int{4, 8, 12},
		Lengths:  []int{16},
		Code:     Code{Name: "CVC", Size: 3},
	},
	{
		Type:     TypeHipercard,
		NiceType: "Hipercard",
		Patterns: []Pattern{p(606282)},
		Gaps:     []int{4, 8, 12},
		Lengths:  []int{16},
		Code:     Code{Name: "CVC", Size: 3},
	},
}

// Lookup returns the brand registered under the given type name.
func Lookup(cardType string) (Brand, bool) {
	for _, b := range brands {
		if b.Type == cardType {
			return b, true
		}
	}
	return Brand{}, false
}
