package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
	"github.com/jrsteele09/pr-admin-client/sites"
)

// MaxReportSize bounds how much of an upload is read
const MaxReportSize = 10 << 20

var jsonWrapperKeys = []string{"data", "rows", "results", "items"}

// Parse reads a CSV or JSON report. The format comes from the file extension, or from the
// content when the extension says nothing.
func Parse(filename string, r io.Reader) (*Report, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxReportSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", filename, err)
	}
	if len(data) > MaxReportSize {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "report %s exceeds %d bytes", filename, MaxReportSize)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	format, err := DetectFormat(filename, data)
	if err != nil {
		return nil, err
	}

	var headers []string
	var records [][]string
	switch format {
	case FormatCSV:
		headers, records, err = readCSV(data)
	case FormatJSON:
		headers, records, err = readJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s report %s: %w", format, filename, err)
	}

	rep, err := buildReport(headers, records)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", filename, err)
	}
	rep.Name = filepath.Base(filename)
	rep.Format = format
	return rep, nil
}

func DetectFormat(filename string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx", ".xls", ".pdf", ".doc", ".docx":
		return "", apperrors.Wrapf(apperrors.ErrUnsupportedFormat, "%s", filename)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", apperrors.Wrapf(apperrors.ErrUnsupportedFormat, "%s is empty", filename)
	}
	if trimmed[0] == '[' || trimmed[0] == '{' {
		return FormatJSON, nil
	}
	firstLine, _, _ := bytes.Cut(trimmed, []byte("\n"))
	if bytes.ContainsAny(firstLine, ",;\t") {
		return FormatCSV, nil
	}
	return "", apperrors.Wrapf(apperrors.ErrUnsupportedFormat, "%s", filename)
}

func readCSV(data []byte) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, apperrors.ErrUnknownColumns
	}
	return all[0], all[1:], nil
}

func sniffDelimiter(data []byte) rune {
	firstLine, _, _ := bytes.Cut(data, []byte("\n"))
	best, bestCount := ',', bytes.Count(firstLine, []byte(","))
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(firstLine, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func readJSON(data []byte) ([]string, [][]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, nil, err
	}

	items, err := jsonItems(doc)
	if err != nil {
		return nil, nil, err
	}

	keySet := make(map[string]bool)
	objects := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, nil, fmt.Errorf("item %d is %T, want an object", i, item)
		}
		for k := range obj {
			keySet[k] = true
		}
		objects = append(objects, obj)
	}

	headers := make([]string, 0, len(keySet))
	for k := range keySet {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	records := make([][]string, 0, len(objects))
	for _, obj := range objects {
		record := make([]string, len(headers))
		for i, h := range headers {
			record[i] = jsonCell(obj[h])
		}
		records = append(records, record)
	}
	return headers, records, nil
}

func jsonItems(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, wrapper := range jsonWrapperKeys {
			if items, ok := v[wrapper].([]any); ok {
				return items, nil
			}
			for _, key := range keys {
				if items, ok := v[key].([]any); ok && strings.EqualFold(key, wrapper) {
					return items, nil
				}
			}
		}
		return nil, fmt.Errorf("object has no %s array", strings.Join(jsonWrapperKeys, "/"))
	default:
		return nil, fmt.Errorf("top level is %T, want an array or object", doc)
	}
}

func jsonCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case json.Number:
		return c.String()
	default:
		return fmt.Sprint(c)
	}
}

func buildReport(headers []string, records [][]string) (*Report, error) {
	columns := matchColumns(headers)
	_, hasOutlet := columns[fieldOutlet]
	_, hasURL := columns[fieldURL]
	if !hasOutlet && !hasURL {
		return nil, apperrors.ErrUnknownColumns
	}

	rep := &Report{Rows: make([]Row, 0, len(records))}
	for n, record := range records {
		if blankRecord(record) {
			continue
		}
		line := n + 2 // header is line 1
		cell := func(f field) string {
			i, ok := columns[f]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row := Row{
			Outlet:      cell(fieldOutlet),
			URL:         cell(fieldURL),
			Category:    cell(fieldCategory),
			PublishedAt: cell(fieldPublished),
		}
		if row.Outlet == "" && row.URL != "" {
			if host, err := sites.NormalizeURL(row.URL); err == nil {
				row.Outlet, _, _ = strings.Cut(host, "/")
			}
		}

		if reach, err := ParseNumber(cell(fieldReach)); err != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("row %d: reach: %v", line, err))
		} else {
			row.PotentialReach = int64(math.Round(reach))
		}
		if da, err := ParseNumber(cell(fieldDomainAuthority)); err != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("row %d: domain authority: %v", line, err))
		} else {
			row.DomainAuthority = int(math.Round(da))
		}

		rep.Rows = append(rep.Rows, row)
	}
	rep.Summary = Summarize(rep.Rows)
	return rep, nil
}

func blankRecord(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
