package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SetKeyInFile updates or adds a key in the config file, preserving comments
// and formatting. An empty section targets the global block.
//
// If the key exists in the target block its line is replaced in place. A
// missing global key is inserted before the first section header, a missing
// section key at the end of its section, and a missing section is appended.
func SetKeyInFile(path, section, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(string(data), "\n")
	}

	newLine := key
	if value != "" {
		newLine = key + " " + value
	}

	// Trailing empty element from the final newline stays last.
	trailing := len(lines) > 0 && lines[len(lines)-1] == ""
	if trailing {
		lines = lines[:len(lines)-1]
	}

	inTarget := section == ""
	sectionFound := section == ""
	insertIndex := -1 // end of the target block, once known

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if name, ok := sectionHeader(trimmed); ok {
			if inTarget && insertIndex < 0 {
				insertIndex = blockEnd(lines, i)
			}
			inTarget = name == section
			if inTarget {
				sectionFound = true
				insertIndex = -1
			}
			continue
		}

		if !inTarget || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		name, _, _ := strings.Cut(trimmed, " ")
		if name == key {
			lines[i] = newLine
			return writeLines(path, lines, trailing)
		}
	}

	switch {
	case !sectionFound:
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "" {
			lines = append(lines, "")
		}
		lines = append(lines, "["+section+"]", newLine)
		trailing = true
	case insertIndex < 0:
		// Target block runs to the end of the file.
		lines = slices.Insert(lines, blockEnd(lines, len(lines)), newLine)
	default:
		lines = slices.Insert(lines, insertIndex, newLine)
	}

	return writeLines(path, lines, trailing)
}

// blockEnd backs up from the header at end past blank lines, so inserted
// keys stay attached to their block.
func blockEnd(lines []string, end int) int {
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return end
}

func writeLines(path string, lines []string, trailing bool) error {
	result := strings.Join(lines, "\n")
	if trailing {
		result += "\n"
	}
	return atomicWriteFile(path, []byte(result), 0644)
}

// atomicWriteFile writes data to a temporary file in the target directory
// and renames it over filename.
func atomicWriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-config-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	var success bool
	defer func() {
		if !success {
			if err := os.Remove(tempFile.Name()); err != nil {
				slog.Warn("[Config] failed to remove temporary file", "path", tempFile.Name(), "error", err)
			}
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file %q: %w", tempFile.Name(), err)
	}
	if err := os.Chmod(tempFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tempFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	success = true
	return nil
}
