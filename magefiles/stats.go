//go:build mage

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// goLines holds production and test line counts for one source area.
type goLines struct {
	prod, test int
}

// Stats prints Go lines of code per top-level area and documentation word counts.
func Stats() error {
	areas := map[string]*goLines{}

	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			switch path {
			case "vendor", ".git", binaryDir, "magefiles":
				return filepath.SkipDir
			}
			if strings.HasPrefix(d.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return nil
		}
		area := strings.SplitN(filepath.ToSlash(path), "/", 2)[0]
		if areas[area] == nil {
			areas[area] = &goLines{}
		}
		if strings.HasSuffix(path, "_test.go") {
			areas[area].test += n
		} else {
			areas[area].prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	names := make([]string, 0, len(areas))
	for name := range areas {
		names = append(names, name)
	}
	sort.Strings(names)

	var total goLines
	for _, name := range names {
		a := areas[name]
		fmt.Printf("%-10s production %6d  tests %6d\n", name, a.prod, a.test)
		total.prod += a.prod
		total.test += a.test
	}
	fmt.Printf("%-10s production %6d  tests %6d\n", "total", total.prod, total.test)

	words, err := countWordsInGlob("*.md")
	if err != nil {
		return err
	}
	fmt.Printf("Words (documentation): %d\n", words)
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func countWordsInGlob(pattern string) (int, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		total += countWords(string(data))
	}
	return total, nil
}

func countWords(s string) int {
	count := 0
	inWord := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count
}
