package catalog

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSKUNameLen = 20

// foldAccents strips combining marks so "Camperón" becomes "Camperon".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Slugify turns a product name into a URL-safe slug, e.g. "Saco Whole" ->
// "saco-whole".
func Slugify(name string) string {
	s := strings.ToLower(foldAccents(name))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '\t':
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	return strings.Join(fields, "-")
}

// skuPart normalizes one SKU component to uppercase alphanumerics.
func skuPart(s string, keepSpaces bool) string {
	up := strings.ToUpper(foldAccents(s))

	var b strings.Builder
	for _, r := range up {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case keepSpaces && r == ' ':
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// BuildSKU assembles the base SKU from product name, color and size, e.g.
// "SACO-WHOLE-BEIGE-M".
func BuildSKU(productName, color, size string) string {
	namePart := strings.Join(strings.Fields(skuPart(productName, true)), "-")
	if len(namePart) > maxSKUNameLen {
		namePart = namePart[:maxSKUNameLen]
	}

	parts := make([]string, 0, 3)
	if namePart != "" {
		parts = append(parts, namePart)
	}
	if colorPart := skuPart(color, false); colorPart != "" {
		parts = append(parts, colorPart)
	}
	if size != "" {
		parts = append(parts, strings.ToUpper(size))
	}
	return strings.Join(parts, "-")
}

// randomSKUSuffix disambiguates a colliding SKU with a 4-digit suffix.
func randomSKUSuffix() string {
	return fmt.Sprintf("%04d", rand.Intn(10000))
}
