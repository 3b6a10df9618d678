package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/punch"
	"github.com/xuri/excelize/v2"
)

// Header aliases seen in biometric device exports, compared after normalizeHeader.
var (
	codeHeaders     = []string{"ac-no", "ac no", "acno", "ac-no.", "device code", "user id", "userid", "badge", "badge no", "enroll no", "employee id", "id"}
	nameHeaders     = []string{"name", "employee name", "employee", "full name"}
	dateTimeHeaders = []string{"time", "timestamp", "datetime", "date/time", "date time", "check time", "checktime", "punch time"}
	dateHeaders     = []string{"date", "punch date"}
	clockHeaders    = []string{"clock", "hour"}
	stateHeaders    = []string{"state", "status", "check type", "type"}
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"01/02/2006 03:04:05 PM",
	"01/02/2006 03:04 PM",
	"1-2-06 15:04",
	"01-02-06 15:04",
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "1/2/2006", "01/02/2006", "1-2-06", "01-02-06"}

var clockLayouts = []string{"15:04:05", "15:04", "3:04:05 PM", "3:04 PM"}

type columns struct {
	code, name, dateTime, date, clock, state int
}

// Parse reads an XLSX or CSV punch export into raw punches. Timestamps are
// interpreted as wall-clock time in loc. A row whose time cannot be parsed is
// still returned, with a zero Timestamp and the original text in RawTimestamp.
func Parse(filename string, r io.Reader, loc *time.Location) ([]punch.RawPunch, error) {
	if loc == nil {
		loc = time.UTC
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, punch.ErrUnsupportedFileType
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, punch.ErrEmptyImport
	}

	cols, err := locateColumns(rows[0])
	if err != nil {
		return nil, err
	}

	punches := make([]punch.RawPunch, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		p := punch.RawPunch{
			DeviceCode:  cellValue(row, cols.code),
			RawName:     cellValue(row, cols.name),
			DeviceState: cellValue(row, cols.state),
			SourceRow:   i + 2,
		}
		if cols.dateTime >= 0 {
			p.RawTimestamp = cellValue(row, cols.dateTime)
		} else {
			p.RawTimestamp = strings.TrimSpace(cellValue(row, cols.date) + " " + cellValue(row, cols.clock))
		}
		if t, ok := parseTimestamp(row, cols, loc); ok {
			p.Timestamp = t
		}
		punches = append(punches, p)
	}

	if len(punches) == 0 {
		return nil, punch.ErrEmptyImport
	}
	return punches, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found: %w", punch.ErrEmptyImport)
	}
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", sheetName, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}

func locateColumns(header []string) (columns, error) {
	cols := columns{code: -1, name: -1, dateTime: -1, date: -1, clock: -1, state: -1}
	for i, h := range header {
		key := normalizeHeader(h)
		switch {
		case cols.code < 0 && isOneOf(key, codeHeaders):
			cols.code = i
		case cols.name < 0 && isOneOf(key, nameHeaders):
			cols.name = i
		case cols.dateTime < 0 && isOneOf(key, dateTimeHeaders):
			cols.dateTime = i
		case cols.date < 0 && isOneOf(key, dateHeaders):
			cols.date = i
		case cols.clock < 0 && isOneOf(key, clockHeaders):
			cols.clock = i
		case cols.state < 0 && isOneOf(key, stateHeaders):
			cols.state = i
		}
	}

	// Exports with separate Date and Time columns keep only the clock in "time".
	if cols.date >= 0 && cols.dateTime >= 0 && cols.clock < 0 {
		cols.clock, cols.dateTime = cols.dateTime, -1
	}
	// A lone "date" column may hold the full date and time.
	if cols.dateTime < 0 && cols.clock < 0 && cols.date >= 0 {
		cols.dateTime, cols.date = cols.date, -1
	}

	hasTime := cols.dateTime >= 0 || (cols.date >= 0 && cols.clock >= 0)
	if !hasTime || (cols.code < 0 && cols.name < 0) {
		return cols, punch.ErrMissingColumns
	}
	return cols, nil
}

func parseTimestamp(row []string, cols columns, loc *time.Location) (time.Time, bool) {
	if cols.dateTime >= 0 {
		return parseDateTime(cellValue(row, cols.dateTime), loc)
	}

	day, ok := parseDate(cellValue(row, cols.date), loc)
	if !ok {
		return time.Time{}, false
	}
	clock, ok := parseClock(cellValue(row, cols.clock))
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, loc), true
}

func parseDateTime(value string, loc *time.Location) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, ok := parseSerial(value, loc); ok {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDate(value string, loc *time.Location) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, ok := parseSerial(value, loc); ok {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseClock(value string) (time.Time, bool) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseSerial converts an Excel serial date number to wall-clock time in loc.
func parseSerial(value string, loc *time.Location) (time.Time, bool) {
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func isOneOf(value string, options []string) bool {
	for _, option := range options {
		if value == option {
			return true
		}
	}
	return false
}
