package main

import (
	"fmt"
	"os"
	"strings"
)

// goldenCase is one `-- test: <name>` block: a JSON AST document (standing
// in for Boon source, per document.go's doc comment) and its expected
// rendered output.
type goldenCase struct {
	Name   string
	Source string
	Expect string
}

// parseGoldenFile splits data into goldenCases. Format: a line `-- test:
// <name>`, the source document (one or more lines), a line `-- expect:`,
// then the expected rendering, running until the next `-- test:` header
// or EOF.
func parseGoldenFile(data []byte) ([]goldenCase, error) {
	lines := strings.Split(string(data), "\n")
	var cases []goldenCase
	i := 0
	for i < len(lines) {
		name, ok := cutPrefix(lines[i], "-- test: ")
		if !ok {
			i++
			continue
		}
		tc := goldenCase{Name: strings.TrimSpace(name)}
		i++
		var src []string
		for i < len(lines) && !strings.HasPrefix(lines[i], "-- expect:") {
			src = append(src, lines[i])
			i++
		}
		if i >= len(lines) {
			return nil, fmt.Errorf("test %q: missing \"-- expect:\" block", tc.Name)
		}
		tc.Source = strings.TrimSpace(strings.Join(src, "\n"))
		i++ // consume "-- expect:"
		var exp []string
		for i < len(lines) && !strings.HasPrefix(lines[i], "-- test: ") {
			exp = append(exp, lines[i])
			i++
		}
		tc.Expect = strings.TrimRight(strings.Join(exp, "\n"), "\n")
		cases = append(cases, tc)
	}
	return cases, nil
}

func cutPrefix(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

// renderGoldenFile serializes cases back to the golden-file format, used
// by --update to rewrite a file's expect blocks in place.
func renderGoldenFile(cases []goldenCase) string {
	var b strings.Builder
	for i, tc := range cases {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "-- test: %s\n%s\n-- expect:\n%s\n", tc.Name, tc.Source, tc.Expect)
	}
	return b.String()
}

// runGoldenFile runs every case in path, logging a mismatch for each case
// that doesn't match (unless update rewrites the expectation instead). It
// reports ok=false if any case failed (when not updating).
func runGoldenFile(log *cliLogger, path string, update bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	cases, err := parseGoldenFile(data)
	if err != nil {
		return false, err
	}

	ok := true
	changed := false
	for i := range cases {
		tc := &cases[i]
		got, err := execDocument([]byte(tc.Source), false, execOptions{UntilIdle: true})
		if err != nil {
			ok = false
			log.Error("golden test errored", field("file", path), field("test", tc.Name), field("error", err.Error()))
			continue
		}
		if got == tc.Expect {
			continue
		}
		if update {
			tc.Expect = got
			changed = true
			continue
		}
		ok = false
		log.Error("golden test mismatch", field("file", path), field("test", tc.Name), field("want", tc.Expect), field("got", got))
	}

	if update && changed {
		if err := os.WriteFile(path, []byte(renderGoldenFile(cases)), 0o644); err != nil {
			return false, err
		}
		log.Info("golden file updated", field("file", path))
	}
	return ok, nil
}
