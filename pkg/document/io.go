package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	derrors "github.com/matzehuels/jsondiagram/pkg/errors"
)

// ExportName is the file name used by [ExportFile].
const ExportName = "data.json"

// maxImportSize bounds imported files.
const maxImportSize = 64 << 20

// Import reads and parses a document from r.
func Import(r io.Reader) (*Value, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImportSize+1))
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "read document")
	}
	if len(data) > maxImportSize {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "document larger than %d bytes", maxImportSize)
	}
	return Parse(data)
}

// ImportFile reads and parses the document at path. On failure the caller
// should keep whatever diagram it already shows.
func ImportFile(path string) (*Value, error) {
	if err := derrors.ValidateFilePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, derrors.Wrap(derrors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return Import(f)
}

// Format returns v as JSON indented with two spaces, with a trailing newline.
func Format(v *Value) ([]byte, error) {
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indent: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Export writes v to w as 2-space indented JSON.
func Export(w io.Writer, v *Value) error {
	data, err := Format(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ExportFile writes v as data.json inside dir and returns the written path.
func ExportFile(dir string, v *Value) (string, error) {
	return ExportFileNamed(dir, ExportName, v)
}

// ExportFileNamed writes v as name inside dir. name must be a plain file
// name ending in .json.
func ExportFileNamed(dir, name string, v *Value) (string, error) {
	if err := derrors.ValidateExportName(name); err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, name)
	data, err := Format(v)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
