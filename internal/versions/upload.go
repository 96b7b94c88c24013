package versions

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// NewFileUpload builds an attach-command file from raw multipart data,
// sniffing the content type when the client's header is missing or generic
// and extracting the page count for PDFs.
func NewFileUpload(logger *slog.Logger, name, contentType string, data []byte) FileUpload {
	ct := detectContentType(contentType, data)
	return FileUpload{
		Name:        name,
		ContentType: ct,
		Data:        data,
		PageCount:   extractPDFPageCount(logger, data, ct),
	}
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
