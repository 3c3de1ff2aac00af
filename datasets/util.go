package datasets

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// Auto-discovery helpers

func autoFindList(patterns []string) (string, error) {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err == nil && len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", fmt.Errorf("no annotation list found in common locations")
}

// FindAnnotationList finds the annotation list for the given split ("train"
// or "test") in dir. It prefers files named like set_0_<split>.txt and falls
// back to any *<split>*.txt file.
func FindAnnotationList(dir, split string) (string, error) {
	path, err := autoFindList([]string{
		filepath.Join(dir, "set_*_"+split+".txt"),
		filepath.Join(dir, "*"+split+"*.txt"),
	})
	if err != nil {
		return "", fmt.Errorf("no %s annotation list found in %s", split, dir)
	}
	return path, nil
}
