package payments

import (
	"strconv"
	"strings"
	"time"
)

// cardDetails is the normalized card input forwarded to the gateway.
type cardDetails struct {
	number   string
	expMonth int64
	expYear  int64
	cvv      string
}

// validateCard normalizes and checks the raw card fields. It returns a map of
// field errors; an empty map means the card is acceptable to forward.
func validateCard(number, expiry, cvv string, now time.Time) (cardDetails, map[string]string) {
	details := map[string]string{}
	var card cardDetails

	normalized := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)
	if !digitsOnly(normalized) || len(normalized) < 13 || len(normalized) > 19 {
		details["card_number"] = "card number must be 13 to 19 digits"
	} else {
		card.number = normalized
	}

	month, year, ok := parseExpiry(expiry)
	if !ok {
		details["expiry"] = "expiry must be in MM/YY format"
	} else if year < int64(now.Year()) || (year == int64(now.Year()) && month < int64(now.Month())) {
		details["expiry"] = "card is expired"
	} else {
		card.expMonth = month
		card.expYear = year
	}

	if !digitsOnly(cvv) || len(cvv) < 3 || len(cvv) > 4 {
		details["cvv"] = "cvv must be 3 or 4 digits"
	} else {
		card.cvv = cvv
	}

	return card, details
}

func parseExpiry(expiry string) (month, year int64, ok bool) {
	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, false
	}
	m, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	y, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return m, 2000 + y, true
}

func digitsOnly(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
