// Package encoding provides text encoding utilities for MUGEN character files.
package encoding

import (
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const utf8BOM = "\uFEFF"

// ShiftJISToUTF8 converts Shift-JIS encoded bytes to a UTF-8 string.
// Returns the original bytes as a string if conversion fails.
func ShiftJISToUTF8(data []byte) string {
	result, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToShiftJIS converts a UTF-8 string to Shift-JIS encoded bytes.
// Returns the original bytes if conversion fails.
func UTF8ToShiftJIS(s string) []byte {
	result, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// DecodeText returns character file text as UTF-8. Valid UTF-8 (with or
// without a byte order mark) is kept; anything else is read as Shift-JIS.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), utf8BOM)
	}
	return ShiftJISToUTF8(data)
}

// NormalizePath converts a path written in a character file to a clean
// slash-separated relative path.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, `"`)
	p = strings.ReplaceAll(p, `\`, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}
