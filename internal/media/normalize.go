// Package media turns uploaded files into inline payloads for the model and
// assembles video keyframes into a single sprite sheet.
package media

import (
	"fmt"
	"io"
	"strings"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

var imageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

var qrTypes = []string{"image/png", "image/jpeg"}

// Normalize reads an uploaded file and checks its sniffed type against what
// the category accepts. maxBytes <= 0 disables the size limit.
func Normalize(r io.Reader, name string, category models.Category, maxBytes int64) (*models.MediaPayload, error) {
	if r == nil {
		return nil, models.ErrMediaRead
	}
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMediaRead, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", models.ErrMediaRead)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", models.ErrMediaRead, maxBytes)
	}

	mt := mimetype.Detect(data)
	if !Accepts(category, mt) {
		return nil, fmt.Errorf("%w: %s for %s", models.ErrUnsupportedMedia, mt.String(), category)
	}

	return &models.MediaPayload{
		MIMEType: baseType(mt.String()),
		Data:     data,
		Name:     name,
	}, nil
}

// Accepts reports whether a sniffed type is allowed for the category
func Accepts(category models.Category, mt *mimetype.MIME) bool {
	switch category {
	case models.CategoryImage:
		return isAny(mt, imageTypes)
	case models.CategoryQRCode:
		return isAny(mt, qrTypes)
	case models.CategoryVideo:
		for m := mt; m != nil; m = m.Parent() {
			if strings.HasPrefix(m.String(), "video/") {
				return true
			}
		}
		return false
	}
	return false
}

func isAny(mt *mimetype.MIME, types []string) bool {
	for _, t := range types {
		if mt.Is(t) {
			return true
		}
	}
	return false
}

// baseType drops MIME parameters such as charset
func baseType(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		return strings.TrimSpace(m[:i])
	}
	return m
}
