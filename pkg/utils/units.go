package utils

// Indian numbering units used by Screener.in statements.
const (
	Lakh  = 1e5
	Crore = 1e7
)

// ToLakhs converts a raw number to lakhs.
func ToLakhs(amount float64) float64 {
	return amount / Lakh
}

// ToCrores converts a raw number to crores.
func ToCrores(amount float64) float64 {
	return amount / Crore
}

// FromLakhs converts lakhs to raw number.
func FromLakhs(lakhs float64) float64 {
	return lakhs * Lakh
}

// FromCrores converts crores to raw number.
func FromCrores(crores float64) float64 {
	return crores * Crore
}
