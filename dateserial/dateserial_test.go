package dateserial_test

import (
	"testing"
	"time"

	"github.com/beingidly/litexl/dateserial"
)

func TestToSerialKnownDates(t *testing.T) {
	cases := []struct {
		date   time.Time
		serial float64
	}{
		{time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(1900, 2, 28, 0, 0, 0, 0, time.UTC), 59},
		{time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC), 61},
	}
	for _, c := range cases {
		got := dateserial.ToSerial(c.date)
		if got != c.serial {
			t.Errorf("ToSerial(%v) = %v, want %v", c.date, got, c.serial)
		}
	}
}

func TestFromSerialKnownDates(t *testing.T) {
	cases := []struct {
		serial float64
		date   time.Time
	}{
		{1, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)},
		{59, time.Date(1900, 2, 28, 0, 0, 0, 0, time.UTC)},
		{61, time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got := dateserial.FromSerial(c.serial)
		if !got.Equal(c.date) {
			t.Errorf("FromSerial(%v) = %v, want %v", c.serial, got, c.date)
		}
	}
}

func TestSerialRoundTripWithTimeOfDay(t *testing.T) {
	want := time.Date(1900, 1, 1, 12, 0, 0, 0, time.UTC)
	serial := dateserial.ToSerial(want)
	if serial != 1.5 {
		t.Fatalf("ToSerial(noon on day 1) = %v, want 1.5", serial)
	}
	got := dateserial.FromSerial(serial)
	if !got.Equal(want) {
		t.Errorf("FromSerial(1.5) = %v, want %v", got, want)
	}
}

func TestSerialRoundTripModernDates(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), // real leap day
		time.Date(1901, 1, 1, 6, 30, 0, 0, time.UTC),
	}
	for _, d := range dates {
		serial := dateserial.ToSerial(d)
		got := dateserial.FromSerial(serial)
		if !got.Equal(d) {
			t.Errorf("round trip of %v: got %v (serial %v)", d, got, serial)
		}
	}
}
