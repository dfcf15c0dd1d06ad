// Package ingest turns an uploaded delimited file into headers plus
// ordered rows. Only plain delimited text is supported; anything a
// spreadsheet app exported beyond that is out of scope.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rbalint/candidate-outreach/internal/model"
)

var (
	ErrEmptyFile  = errors.New("uploaded file is empty")
	ErrNoDataRows = errors.New("uploaded file has headers but no data rows")
)

// Parse reads a CSV or TSV stream and returns the header line and one
// model.Row per data row, in file order. The delimiter is sniffed from
// the header line: a tab anywhere in it selects TSV, otherwise CSV.
// Ragged rows are tolerated; missing trailing cells read as empty.
func Parse(r io.Reader) ([]string, []model.Row, error) {
	br := bufio.NewReader(r)

	first, err := peekLine(br)
	if err != nil {
		return nil, nil, ErrEmptyFile
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if strings.ContainsRune(first, '\t') {
		cr.Comma = '\t'
	}

	header, err := cr.Read()
	if err != nil {
		return nil, nil, ErrEmptyFile
	}

	headers := make([]string, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers = append(headers, h)
	}
	if len(headers) == 0 || (len(headers) == 1 && headers[0] == "") {
		return nil, nil, ErrEmptyFile
	}

	var rows []model.Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if blank(record) {
			continue
		}

		row := make(model.Row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, nil, ErrNoDataRows
	}
	return headers, rows, nil
}

// peekLine returns the first line without consuming the reader.
func peekLine(br *bufio.Reader) (string, error) {
	for size := 1024; ; size *= 2 {
		buf, err := br.Peek(size)
		if i := strings.IndexByte(string(buf), '\n'); i >= 0 {
			return string(buf[:i]), nil
		}
		if err != nil {
			if len(buf) == 0 {
				return "", io.EOF
			}
			return string(buf), nil
		}
	}
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
