package narrative

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("en-NG"))

// Number groups digits the en-NG way: 1,250,000.
func Number(n int64) string {
	return printer.Sprint(number.Decimal(n))
}

// Naira formats an amount as ₦1,250,000. Negative amounts keep the sign in
// front of the currency symbol.
func Naira(n int64) string {
	if n < 0 {
		return "-₦" + Number(-n)
	}
	return "₦" + Number(n)
}
