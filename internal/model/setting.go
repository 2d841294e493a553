// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Setting value types. Values are stored as strings and parsed once at
// the settings boundary according to this tag.
const (
	SettingTypeString = "string"
	SettingTypeInt    = "int"
	SettingTypeBool   = "bool"
	SettingTypeJSON   = "json"
)

// ValidSettingType reports whether t is a known setting value type.
func ValidSettingType(t string) bool {
	switch t {
	case SettingTypeString, SettingTypeInt, SettingTypeBool, SettingTypeJSON:
		return true
	}
	return false
}

// Canonical setting keys.
const (
	SettingKeySiteName        = "site_name"
	SettingKeySiteDescription = "site_description"
	SettingKeySiteURL         = "site_url"
	SettingKeySiteLogo        = "site_logo"
	SettingKeySiteFavicon     = "site_favicon"
	SettingKeyPostsPerPage    = "posts_per_page"
	SettingKeyAdminEmail      = "admin_email"
	SettingKeyCommentsEnabled = "comments_enabled"
	SettingKeySMTPPassword    = "smtp_password"
)

// SettingDefinition describes a standard setting with its default.
type SettingDefinition struct {
	Key          string
	DefaultValue string
	Type         string
	Description  string
}

// StandardSettings are the settings every installation is expected to have.
// Missing rows are presented with their defaults and created on first write.
var StandardSettings = []SettingDefinition{
	{Key: SettingKeySiteName, DefaultValue: "Bloghost", Type: SettingTypeString, Description: "Site name shown in the header and page titles"},
	{Key: SettingKeySiteDescription, DefaultValue: "", Type: SettingTypeString, Description: "Short description used in meta tags"},
	{Key: SettingKeySiteURL, DefaultValue: "", Type: SettingTypeString, Description: "Canonical site URL"},
	{Key: SettingKeySiteLogo, DefaultValue: "", Type: SettingTypeString, Description: "Logo path, relative to the uploads directory"},
	{Key: SettingKeySiteFavicon, DefaultValue: "", Type: SettingTypeString, Description: "Favicon path"},
	{Key: SettingKeyPostsPerPage, DefaultValue: "10", Type: SettingTypeInt, Description: "Posts per page on list endpoints"},
	{Key: SettingKeyAdminEmail, DefaultValue: "", Type: SettingTypeString, Description: "Contact address for administrative notices"},
	{Key: SettingKeyCommentsEnabled, DefaultValue: "true", Type: SettingTypeBool, Description: "Whether new comments are accepted"},
}

// Setting represents a site configuration row. Key preserves the literal
// spelling as stored; consumers must compare normalized keys, never Key itself.
type Setting struct {
	Key       string
	Value     string
	Type      string
	UpdatedAt time.Time
	UpdatedBy sql.NullInt64
}
