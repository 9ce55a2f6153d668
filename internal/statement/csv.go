package statement

import (
	"encoding/csv"
	"errors"
	"io"
)

// ParseCSV reads a bank CSV export into filtered transactions. Quoted
// fields with embedded commas and escaped quotes are handled by the reader;
// a malformed record skips that row only, never the whole file. When
// explicit is nil or unusable the mapping is guessed from the header row.
func ParseCSV(r io.Reader, explicit *ColumnMapping) ([]ParsedTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// partial success contract: skip the malformed row
			continue
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, NewParseError(KindContent, "file contains no rows")
	}

	headers, data := ExtractHeadersAndData(rows)

	mapping := ColumnMapping{Date: -1, Description: -1, Amount: -1, Type: -1}
	if explicit != nil && explicit.Usable() {
		mapping = *explicit
	} else {
		mapping = GuessColumnMapping(headers)
	}
	if !mapping.Usable() {
		return nil, NewParseError(KindContent, "could not identify date, description and amount columns")
	}

	transactions := Filter(ParseRowsWithMapping(data, mapping, false))
	if len(transactions) == 0 {
		return nil, NewParseError(KindContent, "no transactions found in file")
	}

	return transactions, nil
}
