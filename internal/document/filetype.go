package document

import (
	"archive/zip"
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type Kind string

const (
	KindPDF  Kind = "application/pdf"
	KindText Kind = "text/plain"
	KindEPUB Kind = "application/epub+zip"
)

// Classify decides whether data is one of the accepted types. Content wins
// over the extension; a .txt that sniffs as binary is rejected.
func Classify(name string, data []byte) (Kind, error) {
	sniffed := http.DetectContentType(data)
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case strings.HasPrefix(sniffed, "application/pdf"):
		return KindPDF, nil
	case sniffed == "application/zip" && isEPUB(data):
		return KindEPUB, nil
	case strings.HasPrefix(sniffed, "text/plain"):
		if ext == "" || ext == ".txt" || ext == ".text" || ext == ".md" {
			return KindText, nil
		}
	case ext == ".txt" && utf8.Valid(data) && !bytes.ContainsRune(data, 0):
		return KindText, nil
	}
	return "", ErrInvalidFileType
}

// AllowedName reports whether a file name could hold an accepted type. It
// looks only at the extension; names without one are left to Classify.
func AllowedName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case "", ".pdf", ".epub", ".txt", ".text", ".md":
		return true
	}
	return false
}

// ContentType maps a file name to the MIME type used when serving it back.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return string(KindPDF)
	case ".epub":
		return string(KindEPUB)
	default:
		return "text/plain; charset=utf-8"
	}
}

func isEPUB(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name != "mimetype" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return false
		}
		defer rc.Close()
		head, err := io.ReadAll(io.LimitReader(rc, 64))
		if err != nil {
			return false
		}
		return strings.TrimSpace(string(head)) == string(KindEPUB)
	}
	return false
}
