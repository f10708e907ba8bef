package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/dorm-admin-api/internal/models"
	"github.com/noah-isme/dorm-admin-api/pkg/export"
	appErrors "github.com/noah-isme/dorm-admin-api/pkg/errors"
)

// Export formats of the student roster.
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatDOCX = "docx"
	ExportFormatPDF  = "pdf"
	ExportFormatCSV  = "csv"
)

var studentExportHeaders = []string{"ID", "Full name", "Group", "Room number"}

type studentRoster interface {
	ListForExport(ctx context.Context, scope models.Scope) ([]models.StudentExportRow, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders the student roster into downloadable files.
type ExportService struct {
	students studentRoster
	xlsx     tableRenderer
	csv      tableRenderer
	docx     documentRenderer
	pdf      documentRenderer
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewExportService constructs an ExportService with the default renderers.
func NewExportService(students studentRoster, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students: students,
		xlsx:     export.NewXLSXExporter(),
		csv:      export.NewCSVExporter(),
		docx:     export.NewDOCXExporter(),
		pdf:      export.NewPDFExporter(),
		metrics:  metrics,
		logger:   logger,
	}
}

// StudentsSpreadsheet renders every student into a single-sheet workbook.
func (s *ExportService) StudentsSpreadsheet(ctx context.Context) (*ExportFile, error) {
	dataset, err := s.rosterDataset(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.xlsx.Render(dataset)
	if err != nil {
		return nil, s.renderError(err, ExportFormatXLSX)
	}
	return s.file(ExportFormatXLSX, "students.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content), nil
}

// StudentsCSV renders every student as comma separated values.
func (s *ExportService) StudentsCSV(ctx context.Context) (*ExportFile, error) {
	dataset, err := s.rosterDataset(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.csv.Render(dataset)
	if err != nil {
		return nil, s.renderError(err, ExportFormatCSV)
	}
	return s.file(ExportFormatCSV, "students.csv", "text/csv; charset=utf-8", content), nil
}

// StudentsDocument renders every student as one paragraph of a Word document.
func (s *ExportService) StudentsDocument(ctx context.Context) (*ExportFile, error) {
	doc, err := s.rosterDocument(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.docx.Render(doc)
	if err != nil {
		return nil, s.renderError(err, ExportFormatDOCX)
	}
	return s.file(ExportFormatDOCX, "students.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", content), nil
}

// StudentsPDF renders the same document as StudentsDocument into PDF.
func (s *ExportService) StudentsPDF(ctx context.Context) (*ExportFile, error) {
	doc, err := s.rosterDocument(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Render(doc)
	if err != nil {
		return nil, s.renderError(err, ExportFormatPDF)
	}
	return s.file(ExportFormatPDF, "students.pdf", "application/pdf", content), nil
}

// roster reads every student regardless of owner.
func (s *ExportService) roster(ctx context.Context) ([]models.StudentExportRow, error) {
	rows, err := s.students.ListForExport(ctx, models.SystemScope())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students for export")
	}
	return rows, nil
}

func (s *ExportService) rosterDataset(ctx context.Context) (export.Dataset, error) {
	rows, err := s.roster(ctx)
	if err != nil {
		return export.Dataset{}, err
	}
	dataset := export.Dataset{Title: "Students", Headers: studentExportHeaders, Rows: make([][]interface{}, 0, len(rows))}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, []interface{}{row.ID, row.Name, row.Group, roomNumber(row)})
	}
	return dataset, nil
}

func (s *ExportService) rosterDocument(ctx context.Context) (export.Document, error) {
	rows, err := s.roster(ctx)
	if err != nil {
		return export.Document{}, err
	}
	doc := export.Document{Title: "Students List", Paragraphs: make([]string, 0, len(rows))}
	for _, row := range rows {
		doc.Paragraphs = append(doc.Paragraphs, fmt.Sprintf("ID: %d, Full name: %s, Group: %s, Room number: %s", row.ID, row.Name, row.Group, roomNumber(row)))
	}
	return doc, nil
}

func (s *ExportService) file(format, filename, contentType string, content []byte) *ExportFile {
	s.metrics.RecordExport(format)
	s.logger.Info("student roster exported", zap.String("format", format), zap.Int("bytes", len(content)))
	return &ExportFile{Filename: filename, ContentType: contentType, Content: content}
}

func (s *ExportService) renderError(err error, format string) error {
	s.logger.Error("render export failed", zap.String("format", format), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to render %s export", format))
}

func roomNumber(row models.StudentExportRow) string {
	if row.RoomNumber == nil {
		return ""
	}
	return *row.RoomNumber
}
