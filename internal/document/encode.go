package document

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// The core PDF fonts only cover Windows-1252. Glyphs outside it are mapped
// to a close equivalent or dropped.
var glyphReplacer = strings.NewReplacer(
	"₦", "NGN ",
	"✓", "-",
	"✔", "-",
	"🌿", "",
	"🌱", "",
	"💚", "",
	"→", "->",
	"≤", "<=",
	"≥", ">=",
)

// latin1 converts s to the byte string gofpdf expects for its core fonts.
func latin1(s string) string {
	s = glyphReplacer.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}
