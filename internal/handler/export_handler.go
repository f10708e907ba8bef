package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dorm-admin-api/internal/service"
	"github.com/noah-isme/dorm-admin-api/pkg/response"
)

type studentExporter interface {
	StudentsSpreadsheet(ctx context.Context) (*service.ExportFile, error)
	StudentsDocument(ctx context.Context) (*service.ExportFile, error)
	StudentsPDF(ctx context.Context) (*service.ExportFile, error)
	StudentsCSV(ctx context.Context) (*service.ExportFile, error)
}

// ExportHandler serves student roster downloads.
type ExportHandler struct {
	exports studentExporter
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exports studentExporter) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Spreadsheet godoc
// @Summary Download the student roster as a workbook
// @Tags Students
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /students/export-excel [get]
func (h *ExportHandler) Spreadsheet(c *gin.Context) {
	h.serve(c, h.exports.StudentsSpreadsheet)
}

// Document godoc
// @Summary Download the student roster as a Word document
// @Tags Students
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Success 200 {file} file
// @Router /students/export-word [get]
func (h *ExportHandler) Document(c *gin.Context) {
	h.serve(c, h.exports.StudentsDocument)
}

// PDF godoc
// @Summary Download the student roster as PDF
// @Tags Students
// @Produce application/pdf
// @Success 200 {file} file
// @Router /students/export-pdf [get]
func (h *ExportHandler) PDF(c *gin.Context) {
	h.serve(c, h.exports.StudentsPDF)
}

// CSV godoc
// @Summary Download the student roster as CSV
// @Tags Students
// @Produce text/csv
// @Success 200 {file} file
// @Router /students/export-csv [get]
func (h *ExportHandler) CSV(c *gin.Context) {
	h.serve(c, h.exports.StudentsCSV)
}

func (h *ExportHandler) serve(c *gin.Context, render func(context.Context) (*service.ExportFile, error)) {
	file, err := render(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}
