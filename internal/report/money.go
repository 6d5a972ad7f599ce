package report

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders amount with the ISO code and the currency's standard
// number of decimals, using English digit grouping. Unknown codes fall back
// to two decimals.
func FormatMoney(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		if code == "" {
			return printer.Sprintf("%.2f", amount)
		}
		return printer.Sprintf("%s %.2f", code, amount)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return printer.Sprintf("%s %.*f", unit.String(), scale, amount)
}
