package export

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mishannn/landparser-go/internal/listing"
	"github.com/mishannn/landparser-go/internal/summary"
)

const (
	MaxSheetNameLength = 31

	defaultSheet    = "Sheet1"
	coverSheet      = "종합 리포트"
	linkDisplayText = "Link"
)

var (
	ErrNoSelections = errors.New("no selections to export")

	coverColumns = []string{"지역명", "매매 개수", "전세 개수", "총 데이터 수"}
)

// SheetName cuts name to the 31 characters a worksheet name may hold.
func SheetName(name string) string {
	runes := []rune(name)
	if len(runes) <= MaxSheetNameLength {
		return name
	}
	return string(runes[:MaxSheetNameLength])
}

type Exporter struct {
	logger *zap.Logger
}

func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

type workbook struct {
	file       *excelize.File
	sheetNames map[string]struct{}
	linkStyle  int
	headStyle  int
}

func newWorkbook() (*workbook, error) {
	file := excelize.NewFile()

	linkStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0000FF", Underline: "single"},
	})
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("can't create link style: %w", err)
	}

	headStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("can't create header style: %w", err)
	}

	return &workbook{
		file:       file,
		sheetNames: map[string]struct{}{},
		linkStyle:  linkStyle,
		headStyle:  headStyle,
	}, nil
}

func (w *workbook) hasSheet(name string) bool {
	_, ok := w.sheetNames[name]
	return ok
}

// addSheet creates a sheet named after name, adding a numeric suffix when a truncated name is taken.
func (w *workbook) addSheet(name string) (string, error) {
	sheet := SheetName(name)
	for i := 2; w.hasSheet(sheet); i++ {
		suffix := "~" + strconv.Itoa(i)
		runes := []rune(SheetName(name))
		sheet = string(runes[:min(len(runes), MaxSheetNameLength-len(suffix))]) + suffix
	}

	_, err := w.file.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("can't create sheet %q: %w", sheet, err)
	}
	w.sheetNames[sheet] = struct{}{}

	return sheet, nil
}

func (w *workbook) writeTable(sheet string, header []string, rows [][]any) error {
	headerValues := make([]any, len(header))
	for i, column := range header {
		headerValues[i] = column
	}

	err := w.file.SetSheetRow(sheet, "A1", &headerValues)
	if err != nil {
		return fmt.Errorf("can't write header: %w", err)
	}

	lastHeaderCell, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("can't get header cell name: %w", err)
	}
	err = w.file.SetCellStyle(sheet, "A1", lastHeaderCell, w.headStyle)
	if err != nil {
		return fmt.Errorf("can't set header style: %w", err)
	}

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("can't get cell name: %w", err)
		}

		err = w.file.SetSheetRow(sheet, cell, &values)
		if err != nil {
			return fmt.Errorf("can't write row %d: %w", i+2, err)
		}
	}

	return nil
}

func linkColumnIndex() int {
	for i, column := range listing.Columns {
		if column == listing.ColumnLink {
			return i + 1
		}
	}
	return -1
}

func (w *workbook) writeDetail(sheet string, rows []listing.Row) error {
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Values())
	}

	err := w.writeTable(sheet, listing.Columns, values)
	if err != nil {
		return err
	}

	linkColumn := linkColumnIndex()
	for i, row := range rows {
		if !strings.HasPrefix(row.Link, "http") {
			continue
		}

		cell, err := excelize.CoordinatesToCellName(linkColumn, i+2)
		if err != nil {
			return fmt.Errorf("can't get link cell name: %w", err)
		}

		err = w.file.SetCellValue(sheet, cell, linkDisplayText)
		if err != nil {
			return fmt.Errorf("can't write link text: %w", err)
		}

		err = w.file.SetCellHyperLink(sheet, cell, row.Link, "External")
		if err != nil {
			return fmt.Errorf("can't write hyperlink: %w", err)
		}

		err = w.file.SetCellStyle(sheet, cell, cell, w.linkStyle)
		if err != nil {
			return fmt.Errorf("can't set link style: %w", err)
		}
	}

	return nil
}

func (w *workbook) writeSummary(sheet string, rows []summary.Row) error {
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Values())
	}
	return w.writeTable(sheet, summary.Columns, values)
}

func (w *workbook) bytes() ([]byte, error) {
	err := w.file.DeleteSheet(defaultSheet)
	if err != nil {
		return nil, fmt.Errorf("can't delete default sheet: %w", err)
	}
	w.file.SetActiveSheet(0)

	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("can't write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func baseSheetName(parts []string, excludeLowFloors bool) string {
	name := strings.Join(parts, "_")
	if excludeLowFloors {
		name += lowFloorsExcludedSuffix
	}
	return name
}

func (e *Exporter) buildArea(detail []listing.Row, summaryRows []summary.Row, areaName string, date string, excludeLowFloors bool) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer w.file.Close()

	base := baseSheetName([]string{areaName, date}, excludeLowFloors)

	detailSheet, err := w.addSheet(base + "_상세")
	if err != nil {
		return nil, err
	}
	err = w.writeDetail(detailSheet, detail)
	if err != nil {
		return nil, fmt.Errorf("can't write detail sheet: %w", err)
	}

	if len(summaryRows) > 0 {
		summarySheet, err := w.addSheet(base + "_요약")
		if err != nil {
			return nil, err
		}
		err = w.writeSummary(summarySheet, summaryRows)
		if err != nil {
			return nil, fmt.Errorf("can't write summary sheet: %w", err)
		}
	}

	return w.bytes()
}

// Area builds a workbook with the detail sheet and, when summary is not empty, the summary sheet.
// It returns nil if the workbook can't be built.
func (e *Exporter) Area(detail []listing.Row, summaryRows []summary.Row, areaName string, date string, excludeLowFloors bool) []byte {
	data, err := e.buildArea(detail, summaryRows, areaName, date, excludeLowFloors)
	if err != nil {
		e.logger.Error("can't export area workbook", zap.String("area", areaName), zap.Error(err))
		return nil
	}
	return data
}

type taggedSummaryRow struct {
	selection string
	row       summary.Row
}

type combinedKey struct {
	district     string
	neighborhood string
	name         string
	year         string
	units        string
	area         string
	pyeong       string
	selection    string
}

func optionalString[T any](v *T) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprint(*v)
}

func combinedSummary(selections []Selection) [][]any {
	seen := map[combinedKey]struct{}{}
	tagged := make([]taggedSummaryRow, 0)

	for _, selection := range selections {
		name := selection.DisplayName()
		for _, row := range selection.Summary {
			key := combinedKey{
				district:     row.District,
				neighborhood: row.Neighborhood,
				name:         row.Name,
				year:         optionalString(row.Year),
				units:        optionalString(row.Units),
				area:         row.Area,
				pyeong:       optionalString(row.Pyeong),
				selection:    name,
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			tagged = append(tagged, taggedSummaryRow{selection: name, row: row})
		}
	}

	slices.SortStableFunc(tagged, func(a, b taggedSummaryRow) int {
		return summary.CompareGap(a.row.Gap, b.row.Gap)
	})

	values := make([][]any, 0, len(tagged))
	for _, t := range tagged {
		values = append(values, append([]any{t.selection}, t.row.Values()...))
	}
	return values
}

func (e *Exporter) buildCombined(selections []Selection, date string) ([]byte, error) {
	if len(selections) == 0 {
		return nil, ErrNoSelections
	}

	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer w.file.Close()

	cover := make([][]any, 0, len(selections))
	for _, selection := range selections {
		cover = append(cover, []any{
			selection.DisplayName(),
			selection.tradeCount(listing.TradeSale),
			selection.tradeCount(listing.TradeLease),
			len(selection.Detail),
		})
	}

	coverName, err := w.addSheet(coverSheet)
	if err != nil {
		return nil, err
	}
	err = w.writeTable(coverName, coverColumns, cover)
	if err != nil {
		return nil, fmt.Errorf("can't write cover sheet: %w", err)
	}

	summarySheet, err := w.addSheet("통합 요약_" + date)
	if err != nil {
		return nil, err
	}
	header := append([]string{summary.ColumnSelectionName}, summary.Columns...)
	err = w.writeTable(summarySheet, header, combinedSummary(selections))
	if err != nil {
		return nil, fmt.Errorf("can't write combined summary sheet: %w", err)
	}

	for _, selection := range selections {
		base := baseSheetName([]string{selection.Division, selection.Neighborhood, date}, selection.ExcludeLowFloors)

		detailSheet, err := w.addSheet(base + "_상세")
		if err != nil {
			return nil, err
		}
		err = w.writeDetail(detailSheet, selection.Detail)
		if err != nil {
			return nil, fmt.Errorf("can't write detail sheet for %s: %w", selection.DisplayName(), err)
		}
	}

	return w.bytes()
}

// Combined builds the multi-area report: cover, merged summary sorted by gap and one detail sheet per selection.
// It returns nil if the workbook can't be built.
func (e *Exporter) Combined(selections []Selection, date string) []byte {
	data, err := e.buildCombined(selections, date)
	if err != nil {
		e.logger.Error("can't export combined workbook", zap.Int("selections", len(selections)), zap.Error(err))
		return nil
	}
	return data
}
