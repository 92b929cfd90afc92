// internal/pkg/format/format.go
package format

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
)

const (
	nbsp           = "\u00a0"
	currencySymbol = "₽"
)

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var nonDigits = regexp.MustCompile(`\D`)

// Price formats an amount in rubles with ru grouping, e.g. "1 234 ₽" or "99,5 ₽".
// Whole amounts are printed without a fraction.
func Price(amount decimal.Decimal) string {
	amount = amount.Round(2)

	negative := amount.IsNegative()
	if negative {
		amount = amount.Neg()
	}

	whole := amount.Truncate(0)
	fraction := strings.TrimRight(strings.TrimPrefix(amount.Sub(whole).StringFixed(2), "0."), "0")

	result := groupThousands(whole.String())
	if fraction != "" {
		result += "," + fraction
	}
	if negative {
		result = "-" + result
	}
	return result + nbsp + currencySymbol
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(nbsp)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Date formats a timestamp as "17 октября 2026 г., 14:05"
func Date(t time.Time) string {
	return fmt.Sprintf("%d %s %d г., %02d:%02d",
		t.Day(), monthsGenitive[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// RelativeDate renders today/yesterday/N days ago for the last week and a full date otherwise
func RelativeDate(t, now time.Time) string {
	days := int(math.Floor(now.Sub(t).Hours() / 24))

	switch {
	case days == 0:
		return i18n.T("relative.today")
	case days == 1:
		return i18n.T("relative.yesterday")
	case days > 1 && days < 7:
		return i18n.T("relative.daysAgo", i18n.Params{"days": days})
	default:
		return Date(t)
	}
}

// Rating formats a rating with one decimal place
func Rating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', 1, 64)
}

// ReviewsCount abbreviates large counts as K/M
func ReviewsCount(count int) string {
	switch {
	case count < 1000:
		return strconv.Itoa(count)
	case count < 1000000:
		return strconv.FormatFloat(float64(count)/1000, 'f', 1, 64) + "K"
	default:
		return strconv.FormatFloat(float64(count)/1000000, 'f', 1, 64) + "M"
	}
}

// OrderStatus returns the display label of an order status, or the raw value when unknown
func OrderStatus(status string) string {
	key := "orderStatus." + status
	if label := i18n.T(key); label != key {
		return label
	}
	return status
}

// PaymentStatus returns the display label of a payment status, or the raw value when unknown
func PaymentStatus(status string) string {
	key := "paymentStatus." + status
	if label := i18n.T(key); label != key {
		return label
	}
	return status
}

var statusColors = map[string]string{
	"pending":    "text-yellow-600",
	"processing": "text-blue-600",
	"completed":  "text-green-600",
	"cancelled":  "text-red-600",
	"error":      "text-red-600",
	"paid":       "text-green-600",
	"failed":     "text-red-600",
}

// StatusColor returns the style class for an order or payment status
func StatusColor(status string) string {
	if color, ok := statusColors[status]; ok {
		return color
	}
	return "text-gray-600"
}

// Truncate shortens text to maxLength runes and appends an ellipsis
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}

// FileSize renders a byte count with ru units
func FileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Б"
	}

	sizes := []string{"Б", "КБ", "МБ", "ГБ"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64) + " " + sizes[i]
}

// PhoneNumber formats Russian 11-digit numbers, other input is returned unchanged
func PhoneNumber(phone string) string {
	cleaned := nonDigits.ReplaceAllString(phone, "")
	if len(cleaned) == 11 && strings.HasPrefix(cleaned, "7") {
		return fmt.Sprintf("+7 (%s) %s-%s-%s", cleaned[1:4], cleaned[4:7], cleaned[7:9], cleaned[9:])
	}
	return phone
}

// OrderNumber generates a human readable order reference: ORD-<last 6 digits of unix ms>-<5 chars>
func OrderNumber(now time.Time) string {
	timestamp := strconv.FormatInt(now.UnixMilli(), 10)
	if len(timestamp) > 6 {
		timestamp = timestamp[len(timestamp)-6:]
	}
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:5]
	return fmt.Sprintf("ORD-%s-%s", timestamp, random)
}
