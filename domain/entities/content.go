package entities

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultImageMIMEType is used when the capture source does not say what it sent
const DefaultImageMIMEType = "image/jpeg"

// InlineImage is raw image bytes sent alongside the prompt
type InlineImage struct {
	Data     []byte
	MIMEType string
}

// ContentPart is either a text fragment or an inline image
type ContentPart struct {
	Text  string
	Image *InlineImage
}

// NewTextPart creates a text content part
func NewTextPart(text string) ContentPart {
	return ContentPart{Text: text}
}

// IsEmpty reports whether the part carries neither text nor image bytes
func (p ContentPart) IsEmpty() bool {
	return p.Text == "" && (p.Image == nil || len(p.Image.Data) == 0)
}

// NewImagePartFromDataURL builds an image part from a data URL such as
// "data:image/png;base64,iVBOR...". A bare base64 string is accepted too and
// gets the default MIME type.
func NewImagePartFromDataURL(dataURL string) (ContentPart, error) {
	mimeType, payload := splitDataURL(strings.TrimSpace(dataURL))
	if payload == "" {
		return ContentPart{}, fmt.Errorf("%w: image payload is empty", ErrInvalidInput)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ContentPart{}, fmt.Errorf("%w: image is not valid base64: %v", ErrInvalidInput, err)
	}

	return ContentPart{Image: &InlineImage{Data: data, MIMEType: mimeType}}, nil
}

// splitDataURL strips the "data:...;base64," prefix and returns the MIME type and payload
func splitDataURL(s string) (string, string) {
	if !strings.HasPrefix(s, "data:") {
		return DefaultImageMIMEType, s
	}

	header, payload, found := strings.Cut(s, ",")
	if !found {
		return DefaultImageMIMEType, ""
	}

	mimeType := strings.TrimPrefix(header, "data:")
	mimeType, _, _ = strings.Cut(mimeType, ";")
	if mimeType == "" {
		mimeType = DefaultImageMIMEType
	}
	return mimeType, payload
}
