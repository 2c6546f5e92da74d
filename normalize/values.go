package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	excelEpochOffset = 25569
	msPerDay         = 86400000
	isoLayout        = "2006-01-02T15:04:05.000Z"
)

// Location is the zone used for calendar days and display dates.
var Location = time.Local

var (
	italianDate = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})$`)
	allDigits   = regexp.MustCompile(`^\d+$`)
)

// layouts tried in order for generic timestamps.
var genericLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// TimeValue converts a raw field value into milliseconds since epoch.
// Unparseable input yields 0.
func TimeValue(raw any) int64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case time.Time:
		if v.IsZero() {
			return 0
		}
		return v.UnixMilli()
	case float64:
		return serialToMillis(v)
	case float32:
		return serialToMillis(float64(v))
	case int:
		return serialToMillis(float64(v))
	case int64:
		return serialToMillis(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return serialToMillis(f)
	case string:
		return stringTimeValue(v)
	default:
		return stringTimeValue(fmt.Sprint(v))
	}
}

func serialToMillis(serial float64) int64 {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return 0
	}
	return int64(math.Round((serial - excelEpochOffset) * msPerDay))
}

func stringTimeValue(s string) int64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0
	}
	if allDigits.MatchString(trimmed) {
		serial, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0
		}
		return serialToMillis(serial)
	}
	if t, ok := parseItalian(trimmed, Location); ok {
		return t.UnixMilli()
	}
	if t, ok := parseGeneric(trimmed); ok {
		return t.UnixMilli()
	}
	return 0
}

// parseItalian reads dd/mm/yyyy, dd-mm-yyyy or dd.mm.yyyy and rejects dates
// that do not round-trip (31/02/2024).
func parseItalian(s string, loc *time.Location) (time.Time, bool) {
	m := italianDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func parseGeneric(s string) (time.Time, bool) {
	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, s, Location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToDisplayDate formats a raw value as dd/mm/yyyy, "" when it is not a date.
func ToDisplayDate(raw any) string {
	ms := TimeValue(raw)
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).In(Location).Format("02/01/2006")
}

// ToInputDateIso formats a raw value as yyyy-mm-dd for date inputs.
func ToInputDateIso(raw any) string {
	ms := TimeValue(raw)
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

// ToIsoOrNull parses a user-typed date into the ISO form stored by the list
// backend. Italian dates map to UTC midnight of that day.
func ToIsoOrNull(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}
	if italianDate.MatchString(trimmed) {
		t, ok := parseItalian(trimmed, time.UTC)
		if !ok {
			return "", false
		}
		return t.Format(isoLayout), true
	}
	t, ok := parseGeneric(trimmed)
	if !ok {
		return "", false
	}
	return t.UTC().Format(isoLayout), true
}

// ToNumberOrNull parses a finite number.
func ToNumberOrNull(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// SumAdditiveExpression sums "+"-joined quantities such as "100+20+10".
// A comma is accepted as decimal separator.
func SumAdditiveExpression(s string) (float64, bool) {
	cleaned := strings.Join(strings.Fields(s), "")
	if cleaned == "" {
		return 0, false
	}
	var total float64
	parts := 0
	for _, part := range strings.Split(cleaned, "+") {
		if part == "" {
			continue
		}
		n, ok := ToNumberOrNull(strings.Replace(part, ",", ".", 1))
		if !ok {
			return 0, false
		}
		total += n
		parts++
	}
	if parts == 0 {
		return 0, false
	}
	return total, true
}

// ToExcelSerial converts a raw date into a spreadsheet day serial, taking the
// calendar day in Location and counting from UTC midnight of that day.
func ToExcelSerial(raw any) (float64, bool) {
	ms := TimeValue(raw)
	if ms == 0 {
		return 0, false
	}
	d := time.UnixMilli(ms).In(Location)
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return float64(midnight.UnixMilli())/msPerDay + excelEpochOffset, true
}

// FormatLottoProg is the display form of a progressive letter.
func FormatLottoProg(s string) string {
	if s == "" {
		return "A"
	}
	return strings.ToUpper(s)
}

// ToStr renders any field value as a string; nil becomes "".
func ToStr(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// NumberOrNil and IsoOrNil return the value for a JSON payload: the parsed
// value, or nil.
func NumberOrNil(s string) any {
	if n, ok := ToNumberOrNull(s); ok {
		return n
	}
	return nil
}

func IsoOrNil(s string) any {
	if iso, ok := ToIsoOrNull(s); ok {
		return iso
	}
	return nil
}
