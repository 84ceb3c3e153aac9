package util

import (
	"fmt"
	"strings"
)

// FieldDir is the directory name of a field inside the repository root.
// "A B" and "A_B" share the same directory.
func FieldDir(field string) string {
	return strings.ReplaceAll(field, " ", "_")
}

// BookID builds the ID of the n-th book of the library.
func BookID(field string, n int) string {
	return fmt.Sprintf("%s_%d", FieldDir(field), n)
}

// SplitTags splits a comma separated list, see CleanTags.
func SplitTags(tags string) []string {
	return CleanTags(strings.Split(tags, ","))
}

// CleanTags trims every tag and drops the empty ones, order is kept.
// It never returns nil.
func CleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}
