// Package dateserial converts between Excel's 1900-epoch serial date number
// and civil date-times.
//
// Grounded on yamitzky-xlrd-go/xlrd/xldate.go (XldateAsTuple /
// XldateFromDateTuple), which implements the same historical 1900-leap-year
// workaround for the older BIFF/XLS format; this package adapts that
// arithmetic to the naive-local-datetime contract spec.md §4.1 requires
// (time.Time with no location semantics attached — callers treat it as a
// civil wall-clock value).
package dateserial

import (
	"math"
	"time"
)

// epoch is 1899-12-31, the nominal day-zero of the Excel 1900 date system.
var epoch = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)

// ToSerial encodes a civil date-time as an Excel 1900-epoch serial number.
// The integer part is the day count since 1899-12-31; for dates on or after
// the (fictitious) 1900-02-29, the historical leap-year bug means one extra
// day must be added so that 1900-03-01 lands on serial 61 rather than 60.
func ToSerial(t time.Time) float64 {
	t = t.UTC()
	days := int(t.Sub(epoch).Hours() / 24)
	// Recompute via calendar day difference to avoid DST/rounding drift:
	// days since epoch using only the date portion.
	dateOnly := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days = int(dateOnly.Sub(epoch).Hours() / 24)
	if days >= 60 {
		// serials >= 60 are shifted by the fake 1900-02-29.
		days++
	}
	secondsOfDay := t.Hour()*3600 + t.Minute()*60 + t.Second()
	frac := float64(secondsOfDay) / 86400.0
	return float64(days) + frac
}

// FromSerial decodes an Excel 1900-epoch serial number back into a civil
// date-time. Serials in [60, 61) address the fictitious 1900-02-29 and have
// no real civil date pre-image; FromSerial maps them onto 1900-02-28 (the
// leap-day shift is undone for every serial >= 60), and ToSerial never
// produces serial values in that interval for a real date.
func FromSerial(serial float64) time.Time {
	days := int(math.Floor(serial))
	frac := serial - float64(days)
	seconds := int(math.Round(frac * 86400.0))
	if seconds >= 86400 {
		seconds -= 86400
		days++
	}
	if days >= 60 {
		// undo the historical leap-day shift
		days--
	}
	d := epoch.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).
		Add(time.Duration(seconds) * time.Second)
}
