package response

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Reference number prefixes
const (
	PrefixDispute  = "DSP"
	PrefixSecurity = "SEC"
	PrefixBlock    = "BLK"
	PrefixCredit   = "CLR"
	PrefixCase     = "CASE"
)

// minimumPaymentRate is the share of the balance due as minimum payment
const minimumPaymentRate = 0.05

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount with thousands separators and two decimals, e.g. $35,000.00
func FormatMoney(amount float64) string {
	if amount < 0 {
		return "-" + FormatMoney(-amount)
	}
	return printer.Sprintf("$%.2f", amount)
}

// MinimumPayment is 5% of a positive balance, rounded to cents
func MinimumPayment(balance float64) float64 {
	if balance <= 0 {
		return 0
	}
	return math.Round(balance*minimumPaymentRate*100) / 100
}

// ReferenceNumber builds a PREFIX-NNNNN presentation reference from the clock.
// It is not unique and is never stored.
func ReferenceNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%05d", prefix, now.UnixMilli()%100000)
}

// parseAmount reads an extracted amount such as "1,250.00"
func parseAmount(value string) (float64, bool) {
	amount, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
