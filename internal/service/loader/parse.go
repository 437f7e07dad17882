package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"lakeflow/internal/domain"
)

// Tag columns attached to every loaded row.
const (
	tagCompany     = "company"
	tagDomain      = "domain"
	tagSourceFile  = "source_file"
	tagIngestionTS = "ingestion_ts"
)

// Timestamp layouts accepted during type inference, most specific first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseCSV parses one bronze object into a typed, tagged batch. Column types
// are inferred from the values (best-effort); empty cells become NULL.
func parseCSV(data []byte, company, domainName, sourceFile string, loadedAt time.Time) (*domain.Batch, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	cols := make([]domain.Column, 0, len(header)+4)
	for i, name := range header {
		cols = append(cols, domain.Column{Name: name, Type: inferColumnType(records, i)})
	}
	cols = append(cols,
		domain.Column{Name: tagCompany, Type: domain.TypeVarchar},
		domain.Column{Name: tagDomain, Type: domain.TypeVarchar},
		domain.Column{Name: tagSourceFile, Type: domain.TypeVarchar},
		domain.Column{Name: tagIngestionTS, Type: domain.TypeTimestamp},
	)

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, 0, len(cols))
		for i := range header {
			row = append(row, convertValue(rec[i], cols[i].Type))
		}
		row = append(row, company, domainName, sourceFile, loadedAt)
		rows = append(rows, row)
	}

	return &domain.Batch{Columns: cols, Rows: rows}, nil
}

// inferColumnType picks the narrowest type that fits every non-empty value
// in the column, falling back to VARCHAR.
func inferColumnType(records [][]string, col int) domain.ColumnType {
	sawValue := false
	isBigint, isDouble, isBool, isTimestamp := true, true, true, true

	for _, rec := range records {
		if col >= len(rec) || rec[col] == "" {
			continue
		}
		v := rec[col]
		sawValue = true

		if isBigint {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isBigint = false
			}
		}
		if isDouble {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isDouble = false
			}
		}
		if isBool && v != "true" && v != "false" {
			isBool = false
		}
		if isTimestamp && !parseableTimestamp(v) {
			isTimestamp = false
		}
	}

	switch {
	case !sawValue:
		return domain.TypeVarchar
	case isBool:
		return domain.TypeBoolean
	case isBigint:
		return domain.TypeBigint
	case isDouble:
		return domain.TypeDouble
	case isTimestamp:
		return domain.TypeTimestamp
	default:
		return domain.TypeVarchar
	}
}

func parseableTimestamp(v string) bool {
	_, ok := parseTimestamp(v)
	return ok
}

func parseTimestamp(v string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// convertValue converts one CSV cell to the Go native for its column type.
// Empty cells become nil (NULL).
func convertValue(v string, t domain.ColumnType) any {
	if v == "" {
		return nil
	}
	switch t {
	case domain.TypeBigint:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case domain.TypeDouble:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case domain.TypeBoolean:
		return v == "true"
	case domain.TypeTimestamp:
		ts, _ := parseTimestamp(v)
		return ts
	default:
		return v
	}
}

// unionBatches concatenates per-file batches into one row set. Columns are
// matched by name in first-seen order; a column missing from a file yields
// NULLs. Conflicting inferred types widen (BIGINT+DOUBLE → DOUBLE, anything
// else → VARCHAR) and the affected values are re-rendered to match.
func unionBatches(batches []*domain.Batch) *domain.Batch {
	var cols []domain.Column
	index := make(map[string]int)

	for _, b := range batches {
		for _, c := range b.Columns {
			i, seen := index[c.Name]
			if !seen {
				index[c.Name] = len(cols)
				cols = append(cols, c)
				continue
			}
			cols[i].Type = widen(cols[i].Type, c.Type)
		}
	}

	out := &domain.Batch{Columns: cols}
	for _, b := range batches {
		// Map union column index → source column index (-1 when absent).
		src := make([]int, len(cols))
		for i, c := range cols {
			src[i] = b.ColumnIndex(c.Name)
		}
		for _, row := range b.Rows {
			merged := make([]any, len(cols))
			for i, j := range src {
				if j < 0 {
					continue
				}
				merged[i] = coerce(row[j], cols[i].Type)
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

// widen returns the common type for two inferred column types.
func widen(a, b domain.ColumnType) domain.ColumnType {
	if a == b {
		return a
	}
	if (a == domain.TypeBigint && b == domain.TypeDouble) ||
		(a == domain.TypeDouble && b == domain.TypeBigint) {
		return domain.TypeDouble
	}
	return domain.TypeVarchar
}

// coerce adapts an already-converted value to a widened column type.
func coerce(v any, t domain.ColumnType) any {
	if v == nil {
		return nil
	}
	switch t {
	case domain.TypeDouble:
		if n, ok := v.(int64); ok {
			return float64(n)
		}
	case domain.TypeVarchar:
		switch x := v.(type) {
		case string:
			return x
		case time.Time:
			return x.Format(time.RFC3339)
		default:
			return fmt.Sprintf("%v", x)
		}
	}
	return v
}
