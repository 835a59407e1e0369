// validation.go - Upload and signup input validation.
package server

import (
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// allowedExtensions is the upload allow-list. Extensions are matched
// case-insensitively, without the leading dot.
var allowedExtensions = map[string]bool{
	"pptx": true,
	"docx": true,
	"xlsx": true,
}

// allowedMediaTypes are the media types a stored file must actually
// sniff as. Extension checks alone are spoofable; the bytes decide.
var allowedMediaTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

// fileExtension returns the lower-cased extension without the dot, or
// "" when the name has none.
func fileExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	return strings.TrimPrefix(ext, ".")
}

// allowedFile reports whether a declared filename passes the extension
// allow-list.
func allowedFile(name string) bool {
	if name == "" {
		return false
	}
	return allowedExtensions[fileExtension(name)]
}

// allowedContent sniffs the actual media type of stored bytes and
// checks it against the office-document allow-list.
func allowedContent(r io.Reader) (bool, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return false, err
	}
	return allowedMediaTypes[mt.String()], nil
}

// contentTypeForExtension maps a validated extension back to the type
// served on download.
func contentTypeForExtension(ext string) string {
	switch ext {
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	default:
		return "application/octet-stream"
	}
}

// sanitizeFilename reduces an untrusted filename to a filesystem-safe
// form: path separators and control characters are stripped before any
// part of the name is used in a stored path.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")

	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	name = strings.Trim(b.String(), " .")

	if len(name) > 255 {
		ext := filepath.Ext(name)
		name = name[:255-len(ext)] + ext
	}
	if name == "" {
		name = "unnamed"
	}
	return name
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func validatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters long"
	}
	if len(password) > 128 {
		return false, "Password must be less than 128 characters"
	}
	return true, ""
}
