// Command litexl is a small demonstration CLI over the litexl library:
// create a workbook from a CSV-like text file, save it as .xlsx (optionally
// password-protected), and dump an existing .xlsx back out as text.
//
// Mirrors the teacher's go/cmd/root.go shape: flag parsing, dispatch on a
// mode flag, log.Fatalf on any terminal error.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/beingidly/litexl/agile"
	"github.com/beingidly/litexl/model"
	"github.com/beingidly/litexl/xlsx"
)

type options struct {
	inputFile  string
	outputFile string
	password   string
	algorithm  string
	mode       string // "pack" or "unpack"
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.inputFile, "i", "", "Input file path (.txt for pack, .xlsx for unpack)")
	flag.StringVar(&opts.outputFile, "o", "", "Output file path (.xlsx for pack, .txt for unpack)")
	flag.StringVar(&opts.password, "password", "", "Workbook password: encrypts the output when packing, decrypts the input when unpacking")
	flag.StringVar(&opts.algorithm, "algorithm", "aes256", "Encryption algorithm when -password is set: aes128 or aes256")
	flag.Parse()

	if opts.inputFile == "" || opts.outputFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	switch {
	case strings.HasSuffix(opts.outputFile, ".xlsx"):
		opts.mode = "pack"
	case strings.HasSuffix(opts.inputFile, ".xlsx"):
		opts.mode = "unpack"
	default:
		log.Fatalf("invalid file combination: need a .txt -> .xlsx pack, or a .xlsx -> .txt unpack")
	}
	return opts
}

func main() {
	opts := parseFlags()

	fmt.Printf("litexl: %s -> %s\n", opts.inputFile, opts.outputFile)

	switch opts.mode {
	case "pack":
		if err := pack(opts); err != nil {
			log.Fatalf("pack failed: %v", err)
		}
	case "unpack":
		if err := unpack(opts); err != nil {
			log.Fatalf("unpack failed: %v", err)
		}
	}
}

// pack reads a tab-delimited text file, one row per line, and writes it as
// a single-sheet workbook, encrypting it if -password was given.
func pack(opts options) error {
	f, err := os.Open(opts.inputFile)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	wb := model.Create()
	sheet, err := wb.AddSheet("Sheet1")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	scanner := bufio.NewScanner(f)
	rowIndex := 0
	for scanner.Scan() {
		row, err := sheet.Row(rowIndex)
		if err != nil {
			return fmt.Errorf("row %d: %w", rowIndex, err)
		}
		for col, field := range strings.Split(scanner.Text(), "\t") {
			cell, err := row.Cell(col)
			if err != nil {
				return fmt.Errorf("row %d col %d: %w", rowIndex, col, err)
			}
			cell.Value = model.TextValue(field)
		}
		rowIndex++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var encOpts *xlsx.EncryptionOptions
	if opts.password != "" {
		algo := agile.AES256
		if opts.algorithm == "aes128" {
			algo = agile.AES128
		}
		encOpts = &xlsx.EncryptionOptions{Algorithm: algo, Password: opts.password}
	}
	return xlsx.Save(wb, opts.outputFile, encOpts)
}

// unpack opens an .xlsx workbook (decrypting it if -password was given) and
// writes its first sheet back out as tab-delimited text.
func unpack(opts options) error {
	wb, err := xlsx.OpenWithPassword(opts.inputFile, opts.password)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	out, err := os.Create(opts.outputFile)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	defer w.Flush()
	for _, row := range sheet.Rows() {
		cells := row.Cells()
		fields := make([]string, 0, len(cells))
		for _, cell := range cells {
			fields = append(fields, cellText(cell.Value))
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

// cellText renders a CellValue as plain text for the unpack dump; it has no
// bearing on the library's own codecs, which switch on Kind directly.
func cellText(v model.CellValue) string {
	switch v.Kind {
	case model.KindText:
		return v.Text
	case model.KindNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case model.KindBool:
		return strconv.FormatBool(v.Bool)
	case model.KindDate:
		return v.Date.Format("2006-01-02T15:04:05")
	case model.KindFormula:
		return "=" + v.Formula
	case model.KindError:
		return "#" + v.Error
	default:
		return ""
	}
}
