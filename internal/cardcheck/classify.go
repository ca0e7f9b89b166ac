package cardcheck

// Classify infers the card network of clean from its leading digits and
// its length. The result does not depend on the checksum.
func Classify(clean string) Type {
	if len(clean) < 2 {
		return Unknown
	}
	n := len(clean)
	p := clean[:2]

	switch {
	case p == "34" || p == "37":
		if n == 15 {
			return AmericanExpress
		}
	case p >= "51" && p <= "55":
		if n == 16 {
			return MasterCard
		}
	case p[0] == '4':
		if n == 13 || n == 16 {
			return Visa
		}
	case p == "60":
		if n >= 16 && n <= 19 {
			return Discover
		}
	}
	return Unknown
}
