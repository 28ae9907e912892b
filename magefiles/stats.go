//go:build mage

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pkgStats counts Go lines of one package directory.
type pkgStats struct {
	Package string `json:"package"`
	Prod    int    `json:"prod"`
	Test    int    `json:"test"`
}

// Stats prints Go lines per package as JSON, then the totals and the word
// count of the Markdown docs at the repo root.
func Stats() error {
	byDir := map[string]*pkgStats{}
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") || d.Name() == ".git" || path == binaryDir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		dir := filepath.Dir(path)
		st, ok := byDir[dir]
		if !ok {
			st = &pkgStats{Package: dir}
			byDir[dir] = st
		}
		n := bytes.Count(data, []byte("\n"))
		if strings.HasSuffix(path, "_test.go") {
			st.Test += n
		} else {
			st.Prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	var pkgs []pkgStats
	total := pkgStats{Package: "total"}
	for _, st := range byDir {
		pkgs = append(pkgs, *st)
		total.Prod += st.Prod
		total.Test += st.Test
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Package < pkgs[j].Package })
	pkgs = append(pkgs, total)

	docs, err := filepath.Glob("*.md")
	if err != nil {
		return err
	}
	words := 0
	for _, doc := range docs {
		data, err := os.ReadFile(doc)
		if err != nil {
			return err
		}
		words += len(strings.Fields(string(data)))
	}

	out, err := json.MarshalIndent(struct {
		Packages []pkgStats `json:"packages"`
		DocWords int        `json:"doc_words"`
	}{pkgs, words}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
