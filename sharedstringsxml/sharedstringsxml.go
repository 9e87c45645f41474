// Package sharedstringsxml encodes and decodes xl/sharedStrings.xml, the
// workbook-level pool of deduplicated text payloads spec.md §3 describes
// as model.SharedStrings.
//
// Grounded on the teacher's pkg/excel/writer.go SST/SI structs (count,
// uniqueCount, one <si><t> per entry), generalized to read as well as
// write since the teacher only ever produces this part, never consumes it.
package sharedstringsxml

import (
	"bytes"
	"strconv"

	"github.com/beingidly/litexl/internal/xmlcodec"
	"github.com/beingidly/litexl/model"
)

const mainNS = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"

// Encode renders xl/sharedStrings.xml from shared. count and uniqueCount
// are both written as the number of table entries; Add interns each payload
// once, though a table rebuilt with AppendRaw may hold repeated payloads.
func Encode(shared *model.SharedStrings) ([]byte, error) {
	values := shared.All()
	var buf bytes.Buffer
	w := xmlcodec.NewWriter(&buf)
	w.Header()
	w.StartElement("sst",
		xmlcodec.Attr{Name: "xmlns", Value: mainNS},
		xmlcodec.Attr{Name: "count", Value: strconv.Itoa(len(values))},
		xmlcodec.Attr{Name: "uniqueCount", Value: strconv.Itoa(len(values))},
	)
	for _, s := range values {
		w.StartElement("si")
		w.StartElement("t")
		w.Characters(s)
		w.EndElement("t")
		w.EndElement("si")
	}
	w.EndElement("sst")
	if err := w.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses xl/sharedStrings.xml into a fresh SharedStrings table,
// preserving the on-disk index of every entry (readers must reference
// cells by the same index the file used, per spec.md §4.7's t="s" rule).
func Decode(data []byte) (*model.SharedStrings, error) {
	shared := model.NewSharedStrings()
	if len(data) == 0 {
		return shared, nil
	}
	r := xmlcodec.NewReader(bytes.NewReader(data), "xl/sharedStrings.xml")
	for {
		ev, err := r.Next()
		if err != nil {
			return nil, err
		}
		if ev.Kind == xmlcodec.EventEndDocument {
			return shared, nil
		}
		if ev.Kind != xmlcodec.EventStartElement || ev.Name != "si" {
			continue
		}
		text, err := decodeSI(r)
		if err != nil {
			return nil, err
		}
		shared.AppendRaw(text)
	}
}

// decodeSI concatenates every <t> run inside one <si> element (rich-text
// runs split across multiple <r><t> children are folded into one string;
// the core does not preserve run-level formatting, per spec.md §1).
func decodeSI(r *xmlcodec.Reader) (string, error) {
	var sb bytes.Buffer
	depth := 0
	for {
		ev, err := r.Next()
		if err != nil {
			return "", err
		}
		switch ev.Kind {
		case xmlcodec.EventStartElement:
			if ev.Name == "t" {
				text, err := r.ElementText()
				if err != nil {
					return "", err
				}
				sb.WriteString(text)
				continue
			}
			depth++
		case xmlcodec.EventEndElement:
			if ev.Name == "si" && depth == 0 {
				return sb.String(), nil
			}
			if depth > 0 {
				depth--
			}
		case xmlcodec.EventEndDocument:
			return sb.String(), nil
		}
	}
}
