package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/store"
)

const (
	importBatchSize = 100
	maxImportErrors = 50
	maxImportTasks  = 100
	templateSheet   = "datos"
	helpSheet       = "instrucciones"
)

// ImportService bulk-loads datasets from JSON or Excel files. Each batch of
// rows is upserted in its own transaction.
type ImportService struct {
	store       store.Store
	assignments *AssignmentService
	events      events.Publisher

	tasks   map[string]*model.ImportResult
	order   []string
	tasksMu sync.RWMutex
}

func NewImportService(s store.Store, assignments *AssignmentService, pub events.Publisher) *ImportService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &ImportService{
		store:       s,
		assignments: assignments,
		events:      pub,
		tasks:       make(map[string]*model.ImportResult),
	}
}

func importColumns(kind string) ([]model.ImportColumn, error) {
	cols := model.ImportColumns(kind)
	if cols == nil {
		return nil, store.Invalid("import", kind, "", "unknown collection")
	}
	return cols, nil
}

// Template returns an Excel workbook with the columns of kind, an example
// row and an instructions sheet.
func (s *ImportService) Template(kind string) (*bytes.Buffer, error) {
	columns, err := importColumns(kind)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", templateSheet)

	for i, col := range columns {
		header := col.Name
		if col.Required {
			header += "*"
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(templateSheet, cell, header)
		cell, _ = excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(templateSheet, cell, col.Example)
	}
	if last, err := excelize.ColumnNumberToName(len(columns)); err == nil {
		f.SetColWidth(templateSheet, "A", last, 20)
	}

	f.NewSheet(helpSheet)
	for i, h := range []string{"Campo", "Obligatorio", "Descripción", "Ejemplo"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(helpSheet, cell, h)
	}
	for i, col := range columns {
		row := i + 2
		required := "no"
		if col.Required {
			required = "sí"
		}
		f.SetCellValue(helpSheet, fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue(helpSheet, fmt.Sprintf("B%d", row), required)
		f.SetCellValue(helpSheet, fmt.Sprintf("C%d", row), col.Description)
		f.SetCellValue(helpSheet, fmt.Sprintf("D%d", row), col.Example)
	}
	f.SetColWidth(helpSheet, "A", "A", 18)
	f.SetColWidth(helpSheet, "C", "C", 50)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

// ParseJSON reads a JSON array of objects.
func (s *ImportService) ParseJSON(kind string, r io.Reader) ([]model.ImportRow, error) {
	if _, err := importColumns(kind); err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, store.Invalid("import", kind, "", fmt.Sprintf("decode json: %v", err))
	}
	rows := make([]model.ImportRow, 0, len(records))
	for i, rec := range records {
		rows = append(rows, model.ImportRow{RowNum: i + 1, Data: rec})
	}
	return rows, nil
}

// ParseExcel reads the first sheet of a workbook, or the template sheet
// when present. The header row holds JSON field names; a trailing "*"
// marks a required column and is ignored.
func (s *ImportService) ParseExcel(kind string, r io.Reader) ([]model.ImportRow, error) {
	columns, err := importColumns(kind)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, store.Invalid("import", kind, "", fmt.Sprintf("read workbook: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, store.Invalid("import", kind, "", "workbook has no sheets")
	}
	sheet := sheets[0]
	for _, name := range sheets {
		if name == templateSheet {
			sheet = name
			break
		}
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, store.Invalid("import", kind, "", fmt.Sprintf("read sheet %s: %v", sheet, err))
	}
	if len(cells) < 2 {
		return nil, store.Invalid("import", kind, "", "sheet needs a header row and at least one data row")
	}

	types := make(map[string]string, len(columns))
	for _, col := range columns {
		types[col.Name] = col.Type
	}
	header := make(map[int]string)
	for i, cell := range cells[0] {
		name := removeRequiredMark(strings.TrimSpace(cell))
		if _, ok := types[name]; ok {
			header[i] = name
		}
	}
	for _, col := range columns {
		if !col.Required {
			continue
		}
		found := false
		for _, name := range header {
			if name == col.Name {
				found = true
				break
			}
		}
		if !found {
			return nil, store.Invalid("import", kind, "", "missing required column "+col.Name)
		}
	}

	var rows []model.ImportRow
	for i := 1; i < len(cells); i++ {
		if isEmptyRow(cells[i]) {
			continue
		}
		row := model.ImportRow{RowNum: i + 1, Data: map[string]any{}}
		var errs []string
		for idx, name := range header {
			if idx >= len(cells[i]) {
				continue
			}
			v, err := cellValue(types[name], cells[i][idx])
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
				continue
			}
			if v != nil {
				row.Data[name] = v
			}
		}
		row.Error = strings.Join(errs, "; ")
		rows = append(rows, row)
	}
	return rows, nil
}

// cellValue converts a cell to the JSON value of a column type. Empty
// cells yield nil.
func cellValue(typ, cell string) (any, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	switch typ {
	case model.ColumnInt:
		return strconv.Atoi(cell)
	case model.ColumnList:
		return splitList(cell), nil
	case model.ColumnHoles:
		if !strings.Contains(cell, ",") {
			return strconv.Atoi(cell)
		}
		parts := splitList(cell)
		holes := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return nil, err
			}
			holes = append(holes, n)
		}
		return holes, nil
	}
	return cell, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate marks rows missing required fields or repeating an id.
func (s *ImportService) Validate(kind string, rows []model.ImportRow) []model.ImportRow {
	columns := model.ImportColumns(kind)
	seen := make(map[string]int)
	for i := range rows {
		row := &rows[i]
		var errs []string
		if row.Error != "" {
			errs = append(errs, row.Error)
		}
		for _, col := range columns {
			if !col.Required {
				continue
			}
			if v, ok := row.Data[col.Name]; !ok || v == nil || v == "" {
				errs = append(errs, col.Name+" is required")
			}
		}
		for _, col := range columns {
			if col.Type != model.ColumnHoles || row.Data[col.Name] == nil {
				continue
			}
			if err := checkHoles(row.Data[col.Name]); err != nil {
				errs = append(errs, err.Error())
			}
		}
		if id := row.ID(); id != "" {
			if prev, ok := seen[id]; ok {
				errs = append(errs, fmt.Sprintf("id %s repeats row %d", id, prev))
			} else {
				seen[id] = row.RowNum
			}
		} else if _, ok := row.Data["id"]; ok {
			errs = append(errs, "id must be a string")
		}
		row.Error = strings.Join(errs, "; ")
	}
	return rows
}

func checkHoles(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var h model.Holes
	return json.Unmarshal(b, &h)
}

// Import validates rows and upserts the valid ones. Imports of cameras or
// workers are followed by a rebuild of the worker views.
func (s *ImportService) Import(ctx context.Context, kind string, rows []model.ImportRow) (*model.ImportResult, error) {
	if _, err := importColumns(kind); err != nil {
		return nil, err
	}
	rows = s.Validate(kind, rows)

	result := &model.ImportResult{
		TaskID:     uuid.NewString(),
		Kind:       kind,
		Status:     "processing",
		TotalCount: len(rows),
	}
	s.track(result)

	total := len(rows)
	for i := 0; i < total; i += importBatchSize {
		end := min(i+importBatchSize, total)
		batch := rows[i:end]

		var valid []model.ImportRow
		for _, row := range batch {
			if row.Error != "" {
				s.recordError(result, row, row.Error)
				continue
			}
			valid = append(valid, row)
		}

		var n int64
		err := s.store.Transaction(ctx, func(tx store.Store) error {
			var err error
			n, err = upsertRows(ctx, tx, kind, valid)
			return err
		})
		if err != nil {
			for _, row := range valid {
				s.recordError(result, row, err.Error())
			}
		} else {
			s.update(result, func(r *model.ImportResult) { r.SuccessCount += int(n) })
		}

		s.update(result, func(r *model.ImportResult) {
			r.Progress = end * 100 / total
		})
	}

	if kind == model.KindCamera || kind == model.KindWorker {
		if _, err := s.assignments.RebuildViews(ctx); err != nil {
			log.Printf("[Import] rebuild views after %s import: %v", kind, err)
		}
	}

	s.update(result, func(r *model.ImportResult) {
		r.Status = "completed"
		r.Progress = 100
	})
	final, _ := s.Result(result.TaskID)
	events.Emit(ctx, s.events, events.New(kind, events.ActionImported, "", final))
	log.Printf("[Import] %s: %d rows, %d imported, %d rejected", kind, final.TotalCount, final.SuccessCount, final.ErrorCount)
	return final, nil
}

func upsertRows(ctx context.Context, tx store.Store, kind string, rows []model.ImportRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	switch kind {
	case model.KindTournament:
		return upsertAs(ctx, kind, tx.Tournaments(), rows, nil)
	case model.KindWorker:
		return upsertAs(ctx, kind, tx.Workers(), rows, func(w *model.Worker) {
			w.CamerasAssigned = []string{}
			if w.Status == "" {
				w.Status = model.WorkerAvailable
			}
		})
	case model.KindCamera:
		return upsertAs(ctx, kind, tx.Cameras(), rows, func(c *model.Camera) {
			if c.Status == "" {
				c.Status = model.CameraAvailable
			}
			if c.Location == "" {
				c.Location = model.Warehouse
			}
		})
	case model.KindShipment:
		return upsertAs(ctx, kind, tx.Shipments(), rows, nil)
	}
	return 0, store.Invalid("import", kind, "", "unknown collection")
}

func upsertAs[T store.Entity](ctx context.Context, kind string, repo store.Repository[T], rows []model.ImportRow, prepare func(*T)) (int64, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		b, err := json.Marshal(row.Data)
		if err != nil {
			return 0, store.Invalid("import", kind, row.ID(), fmt.Sprintf("row %d: %v", row.RowNum, err))
		}
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return 0, store.Invalid("import", kind, row.ID(), fmt.Sprintf("row %d: %v", row.RowNum, err))
		}
		if prepare != nil {
			prepare(&v)
		}
		out = append(out, v)
	}
	return repo.Upsert(ctx, out)
}

func (s *ImportService) track(r *model.ImportResult) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()
	s.tasks[r.TaskID] = r
	s.order = append(s.order, r.TaskID)
	for len(s.order) > maxImportTasks {
		delete(s.tasks, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *ImportService) update(r *model.ImportResult, fn func(*model.ImportResult)) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()
	fn(r)
}

func (s *ImportService) recordError(r *model.ImportResult, row model.ImportRow, msg string) {
	s.update(r, func(r *model.ImportResult) {
		r.ErrorCount++
		if len(r.Errors) < maxImportErrors {
			r.Errors = append(r.Errors, model.ImportError{RowNum: row.RowNum, ID: row.ID(), Error: msg})
		}
	})
}

// Result returns a copy of a recent import result.
func (s *ImportService) Result(taskID string) (*model.ImportResult, bool) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()
	r, ok := s.tasks[taskID]
	if !ok {
		return nil, false
	}
	c := *r
	c.Errors = append([]model.ImportError(nil), r.Errors...)
	return &c, true
}

// ErrorReport writes the rejected rows to a workbook.
func (s *ImportService) ErrorReport(result *model.ImportResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "errores"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "fila")
	f.SetCellValue(sheet, "B1", "id")
	f.SetCellValue(sheet, "C1", "error")
	for i, e := range result.Errors {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.RowNum)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.ID)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.Error)
	}
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 20)
	f.SetColWidth(sheet, "C", "C", 60)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func removeRequiredMark(s string) string {
	return strings.TrimSuffix(s, "*")
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
