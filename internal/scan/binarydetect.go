package scan

import (
	"bytes"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const sniffWindow = 512

// SniffMimeType returns path's detected MIME type by content, not
// extension.
func SniffMimeType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}

// IsBinary reports whether path looks like binary content: either its
// sniffed MIME type is outside the text/ tree and the known text-ish
// application subtypes, or its first sniffWindow bytes carry a NUL
// byte or a high ratio of non-text bytes. The byte heuristics run only
// when sniffing fails. No converter calls it; the plain-text and code
// converters check UTF-8 validity themselves.
func IsBinary(path string) (bool, error) {
	if mtype, err := SniffMimeType(path); err == nil {
		if looksTextual(mtype) {
			return false, nil
		}
		if !strings.HasPrefix(mtype, "text/") {
			return true, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, sniffWindow)
	n, _ := f.Read(buf)
	if n == 0 {
		return false, nil
	}
	buf = buf[:n]

	if bytes.IndexByte(buf, 0x00) >= 0 {
		return true, nil
	}

	nonText := 0
	for _, b := range buf {
		if b < 0x09 || (b > 0x0D && b < 0x20) {
			nonText++
		}
	}
	ratio := float64(nonText) / float64(len(buf))
	return ratio > 0.30, nil
}

var textualApplicationTypes = []string{
	"application/json", "application/xml", "application/yaml",
	"application/toml", "application/x-sh", "application/javascript",
	"application/x-ndjson",
}

func looksTextual(mtype string) bool {
	if strings.HasPrefix(mtype, "text/") {
		return true
	}
	base := mtype
	if i := strings.IndexByte(mtype, ';'); i >= 0 {
		base = mtype[:i]
	}
	for _, t := range textualApplicationTypes {
		if base == t {
			return true
		}
	}
	return false
}
