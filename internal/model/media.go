// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Supported upload MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// IsSupportedMimeType reports whether uploads of this MIME type are accepted.
func IsSupportedMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	}
	return false
}

// Media represents an uploaded file and its stored location.
type Media struct {
	ID           int64
	UUID         string
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	Width        int
	Height       int
	FilePath     string
	ThumbPath    string
	UploadedBy   sql.NullInt64
	CreatedAt    time.Time
}

// ImageVariantConfig describes a derived image size.
type ImageVariantConfig struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// ThumbnailVariant is the single derived size produced for uploads.
var ThumbnailVariant = ImageVariantConfig{MaxWidth: 480, MaxHeight: 480, Quality: 85}
