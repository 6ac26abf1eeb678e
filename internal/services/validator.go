package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	MIMETypePDF  = "application/pdf"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypeDOC  = "application/msword"
)

// canonicalMIMETypes maps each allowed extension to its declared MIME type.
var canonicalMIMETypes = map[string]string{
	".pdf":  MIMETypePDF,
	".docx": MIMETypeDOCX,
	".doc":  MIMETypeDOC,
}

// genericMIMETypes are octet-stream fallbacks browsers send when they cannot
// sniff the real type.
var genericMIMETypes = map[string]bool{
	"application/octet-stream": true,
	"binary/octet-stream":      true,
}

type FileValidator interface {
	Validate(fh *multipart.FileHeader) error
	SanitizeFilename(filename string) string
}

type fileValidator struct {
	maxFileSize int64
	minFileSize int64
}

func NewFileValidator(minFileSize, maxFileSize int64) FileValidator {
	return &fileValidator{
		maxFileSize: maxFileSize,
		minFileSize: minFileSize,
	}
}

// Validate runs the pre-processing checks in order: filename, extension,
// declared content type, size. The first failed check wins; no partial
// validation state is retained.
func (v *fileValidator) Validate(fh *multipart.FileHeader) error {
	if fh == nil || fh.Filename == "" {
		return &ValidationError{Reason: "file has no filename"}
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	canonical, ok := canonicalMIMETypes[ext]
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("invalid file extension %q: only PDF, DOCX, and DOC files are allowed", ext)}
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		return &ValidationError{Reason: "file has no declared content type"}
	}
	if contentType != canonical && !genericMIMETypes[contentType] {
		return &ValidationError{Reason: fmt.Sprintf("content type %q does not match extension %q", contentType, ext)}
	}

	if fh.Size < v.minFileSize {
		return &ValidationError{Reason: fmt.Sprintf("file size %d bytes is too small (minimum %d bytes)", fh.Size, v.minFileSize)}
	}
	if fh.Size > v.maxFileSize {
		return &ValidationError{Reason: fmt.Sprintf("file size %d bytes exceeds the %d byte limit", fh.Size, v.maxFileSize)}
	}

	return nil
}

// SanitizeFilename strips path components and characters that are unsafe in
// stored metadata.
func (v *fileValidator) SanitizeFilename(filename string) string {
	if filename == "" {
		return "unnamed_file"
	}

	filename = filepath.Base(filename)

	replacer := strings.NewReplacer(
		"<", "_", ">", "_", ":", "_", `"`, "_",
		"|", "_", "?", "_", "*", "_", `\`, "_", "/", "_",
	)
	filename = replacer.Replace(filename)

	if len(filename) > 255 {
		ext := filepath.Ext(filename)
		filename = filename[:255-len(ext)] + ext
	}

	if filename == "" {
		return "unnamed_file"
	}
	return filename
}
