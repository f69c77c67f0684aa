// Package spreadsheet loads the club's source workbooks. Every loader is
// all-or-nothing: it returns the complete parsed data set or an error,
// never a partial slice.
package spreadsheet

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
)

// readSheet opens a workbook and returns the rows of one sheet. An empty
// sheet name selects the first sheet.
func readSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.Newf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q of %s", sheet, path)
	}

	return rows, nil
}

// headerIndex maps header cells to their column position, trimmed and
// case-insensitive, and verifies every required column is present.
func headerIndex(header []string, required []string) (map[string]int, error) {
	index := map[string]int{}
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Newf("missing columns: %s", strings.Join(missing, ", "))
	}

	return index, nil
}

func cell(row []string, index map[string]int, column string) string {
	i, ok := index[strings.ToLower(column)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseNumber reads a numeric cell in the source's Spanish formatting:
// percent signs stripped, comma as decimal separator, dot as thousands
// separator when both appear.
func parseNumber(raw string) (float64, bool, error) {
	v := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if v == "" || v == "-" {
		return 0, false, nil
	}

	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}

	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, errors.Wrapf(err, "parse number %q", raw)
	}

	return out, true, nil
}

func parseRequiredNumber(raw string) (float64, error) {
	v, ok, err := parseNumber(raw)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.New("empty numeric cell")
	}

	return v, nil
}

func parseMatchday(raw string) (int, error) {
	// Matchday cells appear both bare ("4") and prefixed ("J4").
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(strings.ToUpper(v), "J")

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parse matchday %q", raw)
	}
	if n < 1 {
		return 0, errors.Newf("matchday %q out of range", raw)
	}

	return n, nil
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "02-01-2006"}

// parseDate accepts the formats the club's staff use in the sheets. A
// blank cell is valid and yields the zero time.
func parseDate(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Newf("unrecognized date %q", raw)
}
