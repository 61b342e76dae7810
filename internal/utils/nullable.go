package utils

import "strings"

// StringOrNil maps blank provider fields to NULL columns.
func StringOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue reads a nullable column, "" for NULL.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
