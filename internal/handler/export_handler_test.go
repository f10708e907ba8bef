package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dorm-admin-api/internal/service"
)

type exporterStub struct {
	file   *service.ExportFile
	err    error
	format string
}

func (s *exporterStub) StudentsSpreadsheet(ctx context.Context) (*service.ExportFile, error) {
	s.format = service.ExportFormatXLSX
	return s.file, s.err
}

func (s *exporterStub) StudentsDocument(ctx context.Context) (*service.ExportFile, error) {
	s.format = service.ExportFormatDOCX
	return s.file, s.err
}

func (s *exporterStub) StudentsPDF(ctx context.Context) (*service.ExportFile, error) {
	s.format = service.ExportFormatPDF
	return s.file, s.err
}

func (s *exporterStub) StudentsCSV(ctx context.Context) (*service.ExportFile, error) {
	s.format = service.ExportFormatCSV
	return s.file, s.err
}

func TestExportHandlerServesAttachment(t *testing.T) {
	handler := NewExportHandler(&exporterStub{file: &service.ExportFile{
		Filename:    "students.csv",
		ContentType: "text/csv",
		Content:     []byte("ID,Full name,Group,Room number\n"),
	}})

	c, w := newUserContext(http.MethodGet, "/students/export-csv", "")
	handler.CSV(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="students.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "ID,Full name,Group,Room number\n", w.Body.String())
}

func TestExportHandlerFailure(t *testing.T) {
	handler := NewExportHandler(&exporterStub{err: errors.New("disk full")})

	c, w := newUserContext(http.MethodGet, "/students/export-excel", "")
	handler.Spreadsheet(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}
