// =============================================================================
// BKHD to UpSSE Converter - File Manager Utility
// =============================================================================
//
// This module places conversion output on disk:
//   - Output naming from a configurable pattern
//   - Single UpSSE workbooks
//   - Zip archives bundling the two workbooks of a two-period conversion
//
// Files are written to a temporary name in the output directory and then
// renamed, so a failed run never leaves a half-written workbook behind.
//
// =============================================================================

package utils

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles output files for the converter.
type FileManager struct {
	// OutputDir is the directory where output files are placed.
	OutputDir string

	// NameFormat is the file name pattern without extension.
	// See GenerateOutputFileName for placeholders.
	NameFormat string
}

// NewFileManager creates a FileManager. An empty nameFormat means "{name}".
func NewFileManager(outputDir, nameFormat string) *FileManager {
	if nameFormat == "" {
		nameFormat = "{name}"
	}
	return &FileManager{
		OutputDir:  outputDir,
		NameFormat: nameFormat,
	}
}

// EnsureDirectories creates the output directory if needed.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// WriteFile stores content under a generated name and returns its path.
//
// PARAMETERS:
//   - ext: the file extension including the dot (".xlsx", ".zip").
//   - params: placeholder values; "name" is the base name.
func (fm *FileManager) WriteFile(ext string, params map[string]string, content []byte) (string, error) {
	if err := fm.EnsureDirectories(); err != nil {
		return "", err
	}

	name := GenerateOutputFileName(fm.NameFormat, ext, params)
	path := filepath.Join(fm.OutputDir, name)

	if err := writeAtomic(path, content); err != nil {
		return "", err
	}
	return path, nil
}

// WriteArchive zips entries and stores the archive under a generated name.
func (fm *FileManager) WriteArchive(params map[string]string, entries []ArchiveEntry) (string, error) {
	var buf bytes.Buffer
	if err := WriteZip(&buf, entries); err != nil {
		return "", err
	}
	return fm.WriteFile(".zip", params, buf.Bytes())
}

func writeAtomic(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upsse-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// =============================================================================
// ARCHIVES
// =============================================================================

// ArchiveEntry is one file inside an output archive.
type ArchiveEntry struct {
	Name    string
	Content []byte
}

// WriteZip writes entries as a deflate-compressed zip archive. Entries
// without content are skipped.
func WriteZip(w io.Writer, entries []ArchiveEntry) error {
	zw := zip.NewWriter(w)

	for _, entry := range entries {
		if len(entry.Content) == 0 {
			continue
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entry.Name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			zw.Close()
			return fmt.Errorf("failed to add %s to archive: %w", entry.Name, err)
		}
		if _, err := fw.Write(entry.Content); err != nil {
			zw.Close()
			return fmt.Errorf("failed to add %s to archive: %w", entry.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

// =============================================================================
// FILE NAMING UTILITIES
// =============================================================================

// GenerateOutputFileName generates an output file name from a format string.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {name}      - Base name ("UpSSE", "UpSSE_gia_cu", ...)
//     {location}  - Selected location
//     {date}      - Transaction date (YYYYMMDD)
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {uuid}      - A random UUID
//   - ext: The extension to ensure, including the dot.
//   - params: A map of placeholder values.
//
// EXAMPLE:
//
//	format: "{name}_{location}_{date}"
//	params: {"name": "UpSSE", "location": "Nguyễn Huệ", "date": "20240703"}
//	output: "UpSSE_Nguyễn Huệ_20240703.xlsx"
func GenerateOutputFileName(format, ext string, params map[string]string) string {
	replacements := map[string]string{
		"{timestamp}": time.Now().Format("20060102_150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}
	for key, value := range params {
		replacements["{"+key+"}"] = sanitizeFileName(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// sanitizeFileName replaces characters that are not allowed in file names.
func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
