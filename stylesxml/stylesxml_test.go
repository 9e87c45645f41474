package stylesxml_test

import (
	"testing"

	"github.com/beingidly/litexl/model"
	"github.com/beingidly/litexl/stylesxml"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	styles := []model.Style{
		model.DefaultStyle(),
		{
			Font:         model.Font{Bold: true, Size: 14, Name: "Arial", ARGB: 0xFFFF0000},
			FillARGB:     0xFF00FF00,
			NumberFormat: "0.00",
			Border: model.Border{
				Left:  model.BorderSide{Style: model.BorderThin, ARGB: 0xFF000000},
				Right: model.BorderSide{Style: model.BorderThick},
			},
			Alignment: model.Alignment{Horizontal: model.HAlignCenter, Vertical: model.VAlignTop},
			WrapText:  true,
			Locked:    true,
		},
		{
			NumberFormat: "mm-dd-yy", // built-in id 14, a date format
			Locked:       false,
		},
	}

	data, err := stylesxml.Encode(styles)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := stylesxml.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(styles) {
		t.Fatalf("Decode returned %d styles, want %d", len(got), len(styles))
	}

	bold := got[1]
	if !bold.Font.Bold || bold.Font.Size != 14 || bold.Font.Name != "Arial" {
		t.Errorf("style[1] font = %+v", bold.Font)
	}
	if bold.Font.ARGB != 0xFFFF0000 {
		t.Errorf("style[1] font ARGB = %08X, want FFFF0000", bold.Font.ARGB)
	}
	if bold.FillARGB != 0xFF00FF00 {
		t.Errorf("style[1] fill ARGB = %08X, want FF00FF00", bold.FillARGB)
	}
	if bold.NumberFormat != "0.00" {
		t.Errorf("style[1] NumberFormat = %q, want %q", bold.NumberFormat, "0.00")
	}
	if bold.Border.Left.Style != model.BorderThin || bold.Border.Left.ARGB != 0xFF000000 {
		t.Errorf("style[1] left border = %+v", bold.Border.Left)
	}
	if bold.Border.Right.Style != model.BorderThick {
		t.Errorf("style[1] right border = %+v", bold.Border.Right)
	}
	if bold.Alignment.Horizontal != model.HAlignCenter || bold.Alignment.Vertical != model.VAlignTop || !bold.WrapText {
		t.Errorf("style[1] alignment = %+v, wrapText=%v", bold.Alignment, bold.WrapText)
	}

	dateStyle := got[2]
	if dateStyle.NumberFormat != "mm-dd-yy" {
		t.Errorf("style[2] NumberFormat = %q, want %q", dateStyle.NumberFormat, "mm-dd-yy")
	}
	if dateStyle.Locked {
		t.Errorf("style[2] Locked = true, want false (protection locked=0 round trip)")
	}
}

func TestIsDateFormattedBuiltins(t *testing.T) {
	cases := []struct {
		format string
		want   bool
	}{
		{"General", false},
		{"0.00", false},
		{"mm-dd-yy", true},
		{"h:mm:ss", true},
		{"", false},
	}
	for _, c := range cases {
		got := stylesxml.IsDateFormatted(model.Style{NumberFormat: c.format})
		if got != c.want {
			t.Errorf("IsDateFormatted(%q) = %v, want %v", c.format, got, c.want)
		}
	}
}

func TestIsDateFormattedCustomFormat(t *testing.T) {
	if !stylesxml.IsDateFormatted(model.Style{NumberFormat: "yyyy-mm-dd"}) {
		t.Errorf("IsDateFormatted(yyyy-mm-dd) = false, want true")
	}
	if stylesxml.IsDateFormatted(model.Style{NumberFormat: "$#,##0.00"}) {
		t.Errorf("IsDateFormatted($#,##0.00) = true, want false")
	}
}

func TestEncodeDeduplicatesFontsFillsBorders(t *testing.T) {
	shared := model.Style{Font: model.Font{Bold: true, Size: 11, Name: "Calibri"}, FillARGB: 0xFFFFFF00}
	styles := []model.Style{model.DefaultStyle(), shared, shared}

	data, err := stylesxml.Encode(styles)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := stylesxml.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Decode returned %d styles, want 3", len(got))
	}
	if got[1].Font != got[2].Font || got[1].FillARGB != got[2].FillARGB {
		t.Errorf("duplicate styles decoded differently: %+v vs %+v", got[1], got[2])
	}
}
