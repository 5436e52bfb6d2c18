package utils

import (
	"bytes"
	"math/big"
	"strings"
	"unicode/utf8"
)

// DecodeBytes32String returns the text stored in a fixed-width bytes32 field,
// up to the first NUL byte.
func DecodeBytes32String(b [32]byte) string {
	end := bytes.IndexByte(b[:], 0)
	if end < 0 {
		end = len(b)
	}
	return ToUTF8String(b[:end])
}

// EncodeBytes32String packs s into a bytes32 field. ok is false when s does
// not fit with a terminating NUL.
func EncodeBytes32String(s string) (out [32]byte, ok bool) {
	if len(s) > 31 {
		return out, false
	}
	copy(out[:], s)
	return out, true
}

// ToUTF8String decodes raw bytes as UTF-8, replacing invalid sequences.
func ToUTF8String(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}

// FormatUnits renders a base-unit amount as a decimal string with the given
// number of decimals, trimming trailing zeros but keeping at least one
// fractional digit ("1.0", "0.5").
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0.0"
	}
	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)

	base := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, base, new(big.Int))

	fracStr := frac.String()
	if decimals > 0 {
		fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
		fracStr = strings.TrimRight(fracStr, "0")
	} else {
		fracStr = ""
	}
	if fracStr == "" {
		fracStr = "0"
	}

	out := whole.String() + "." + fracStr
	if neg {
		out = "-" + out
	}
	return out
}

// FormatEther formats a wei amount with 18 decimals.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, 18)
}

// ParseUnits converts a decimal string into base units. ok is false for
// malformed input or more fractional digits than decimals.
func ParseUnits(value string, decimals uint8) (*big.Int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, false
	}
	whole, frac, _ := strings.Cut(value, ".")
	if len(frac) > int(decimals) {
		return nil, false
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	out, ok := new(big.Int).SetString(digits, 10)
	if !ok || out.Sign() < 0 {
		return nil, false
	}
	return out, true
}
