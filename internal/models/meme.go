package models

import (
	"encoding/base64"
	"fmt"
)

// Supported submission image types.
const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
)

// Meme is the single image a group has uploaded.
//
// An upload fully overwrites any prior submission for the group; a delete
// clears it. A Meme only exists while referencing a live group.
type Meme struct {
	// GroupID references the owning group.
	GroupID string

	// Data is the raw image payload.
	Data []byte

	// MIMEType is the image content type, restricted to JPEG or PNG.
	MIMEType string

	// Preview is a data URL rendering of the image, suitable for direct
	// display by a client without a separate fetch.
	Preview string
}

// ValidMIMEType reports whether mimeType is an accepted submission format.
func ValidMIMEType(mimeType string) bool {
	return mimeType == MIMETypeJPEG || mimeType == MIMETypePNG
}

// NewMeme builds a submission for the given group, deriving the preview
// data URL from the payload.
func NewMeme(groupID string, data []byte, mimeType string) Meme {
	return Meme{
		GroupID:  groupID,
		Data:     data,
		MIMEType: mimeType,
		Preview:  fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)),
	}
}
