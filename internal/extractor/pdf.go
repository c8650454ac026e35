// Package extractor inspects uploaded statement PDFs before they are sent for
// processing: it checks that the file is a readable PDF, counts its pages and
// guesses the issuing bank from the text.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-desk/internal/models"
)

// ErrNotPDF is returned for uploads that do not carry a PDF header.
var ErrNotPDF = errors.New("file is not a PDF")

// Report is what local inspection learned about an upload.
type Report struct {
	Pages    int             `json:"pages"`
	Readable bool            `json:"readable"`
	Bank     models.BankType `json:"bank,omitempty"`
	BankName string          `json:"bankName,omitempty"`
	Chars    int             `json:"chars"`
}

// Inspect opens data as a PDF. A file the library cannot open is an error;
// a file without extractable text (a scan) is not, it just reports
// Readable=false and no bank.
func Inspect(data []byte) (Report, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return Report{}, ErrNotPDF
	}

	var rep Report
	pages, err := readPages(data, &rep)
	if err != nil {
		return Report{}, err
	}
	rep.Chars = totalTextLen(pages)
	rep.Readable = IsReadableText(pages)
	if rep.Readable {
		if bank, ok := DetectBank(pages); ok {
			rep.Bank = bank
			rep.BankName = models.BankNames[bank]
		}
	}
	return rep, nil
}

func readPages(data []byte, rep *Report) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	rep.Pages = r.NumPage()
	if rep.Pages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages = extractByRow(r, rep.Pages)
	if IsReadableText(pages) {
		return pages, nil
	}
	if byContent := extractByContent(r, rep.Pages); IsReadableText(byContent) {
		return byContent, nil
	}
	if plain := extractPlain(r); IsReadableText([]string{plain}) {
		return []string{plain}, nil
	}
	return pages, nil
}

func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent rebuilds rows from positioned text: pieces are grouped by
// rounded Y (top to bottom) and ordered by X.
func extractByContent(r *pdf.Reader, numPages int) []string {
	type piece struct {
		x float64
		s string
	}
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		rowsByY := map[int][]piece{}
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rowsByY[y] = append(rowsByY[y], piece{x: t.X, s: t.S})
		}
		ys := make([]int, 0, len(rowsByY))
		for y := range rowsByY {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			row := rowsByY[y]
			sort.Slice(row, func(a, b int) bool { return row[a].x < row[b].x })
			var sb strings.Builder
			for j, p := range row {
				if j > 0 && p.x-row[j-1].x > 15 {
					sb.WriteString("  ")
				}
				sb.WriteString(p.s)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractPlain(r *pdf.Reader) string {
	rd, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
