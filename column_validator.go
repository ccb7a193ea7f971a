package main

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const MAX_COLUMN_NAME_LENGTH = 300

// Reserved by BigQuery for pseudo-columns, matched case-insensitively at the start of a name
var RESTRICTED_COLUMN_PREFIXES = []string{
	"_PARTITION",
	"_TABLE_",
	"_FILE_",
	"_ROW_TIMESTAMP",
	"__ROOT__",
	"_COLIDENTIFIER",
}

// ValidateColumnName checks a column name against BigQuery naming rules.
// Rules are applied in order and the first violation is reported.
func ValidateColumnName(name string) (valid bool, reason string) {
	if name == "" {
		return false, "Empty column name"
	}

	length := utf8.RuneCountInString(name)
	if length > MAX_COLUMN_NAME_LENGTH {
		return false, fmt.Sprintf("Column name too long (%d > %d chars)", length, MAX_COLUMN_NAME_LENGTH)
	}

	if prefix := RestrictedPrefix(name); prefix != "" {
		return false, "Column name starts with restricted prefix '" + prefix + "'"
	}

	firstRune, _ := utf8.DecodeRuneInString(name)
	if !isColumnNameStart(firstRune) {
		return false, "Column name must start with letter or underscore"
	}

	for _, char := range name {
		if !isColumnNameChar(char) {
			return false, "Column name contains invalid characters"
		}
	}

	return true, ""
}

// RestrictedPrefix returns the restricted prefix the name starts with, or "" if none.
func RestrictedPrefix(name string) string {
	upperName := strings.ToUpper(name)
	for _, prefix := range RESTRICTED_COLUMN_PREFIXES {
		if strings.HasPrefix(upperName, prefix) {
			return prefix
		}
	}
	return ""
}

func isColumnNameStart(char rune) bool {
	return unicode.IsLetter(char) || char == '_'
}

func isColumnNameChar(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsNumber(char) || char == '_'
}
