package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/raysh454/seoaudit/internal/utils"
)

// PDFSource downloads the rendered report of a job. auditclient.Client
// satisfies it.
type PDFSource interface {
	DownloadPDF(ctx context.Context, jobID string, w io.Writer) (int64, error)
}

// PDFFileName is the file name used for a job's PDF report.
func PDFFileName(jobID string) string {
	return fmt.Sprintf("audit_%s.pdf", utils.ShortID(jobID))
}

// SavePDF downloads the PDF of jobID into dir and returns the written path.
// The file only appears once the download has fully succeeded.
func SavePDF(ctx context.Context, src PDFSource, jobID, dir string) (string, error) {
	if jobID == "" {
		return "", fmt.Errorf("save pdf: empty job ID")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("save pdf: ensure dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".audit-*.pdf.part")
	if err != nil {
		return "", fmt.Errorf("save pdf: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := src.DownloadPDF(ctx, jobID, tmp); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("save pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("save pdf: %w", err)
	}

	dst := filepath.Join(dir, PDFFileName(jobID))
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("save pdf: %w", err)
	}
	return dst, nil
}
