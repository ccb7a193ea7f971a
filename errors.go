package main

import (
	"fmt"
	"strings"
)

// SourceReadError means the Parquet file could not be opened or its schema could not be read.
type SourceReadError struct {
	Path  string
	cause error
}

func NewSourceReadError(path string, cause error) *SourceReadError {
	return &SourceReadError{Path: path, cause: cause}
}

func (err *SourceReadError) Error() string {
	return fmt.Sprintf("Error reading parquet file %s: %v", err.Path, err.cause)
}

func (err *SourceReadError) Unwrap() error {
	return err.cause
}

// NoValidColumnsError means every column of the file was skipped by name validation.
type NoValidColumnsError struct {
	SkippedColumns []SkippedColumn
}

func (err *NoValidColumnsError) Error() string {
	details := make([]string, len(err.SkippedColumns))
	for i, skippedColumn := range err.SkippedColumns {
		details[i] = skippedColumn.String()
	}

	return fmt.Sprintf(
		"No valid columns found! All %d column(s) were skipped: %s",
		len(err.SkippedColumns),
		strings.Join(details, "; "),
	)
}
