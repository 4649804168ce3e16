package config

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// loadDotEnv exports the pairs of a dotenv file. A missing file is not an error and variables
// already present in the environment win over the file.
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	pairs, err := parseDotEnv(f)
	if err != nil {
		return err
	}
	for _, kv := range pairs {
		if os.Getenv(kv[0]) != "" {
			continue
		}
		if err := os.Setenv(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// parseDotEnv returns the KEY=VALUE pairs of r in file order. Blank lines, # comments and
// lines without a key are skipped; an "export " prefix is allowed. Quoted values keep their
// content verbatim, unquoted values end at " #".
func parseDotEnv(r io.Reader) ([][2]string, error) {
	var pairs [][2]string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if k, v, ok := parseLine(sc.Text()); ok {
			pairs = append(pairs, [2]string{k, v})
		}
	}
	return pairs, sc.Err()
}

func parseLine(raw string) (key, value string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || line[0] == '#' {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	key, value, ok = strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", false
	}
	return key, unquote(strings.TrimSpace(value)), true
}

func unquote(v string) string {
	if n := len(v); n >= 2 && (v[0] == '"' || v[0] == '\'') && v[n-1] == v[0] {
		return v[1 : n-1]
	}
	if i := strings.Index(v, " #"); i >= 0 {
		return strings.TrimSpace(v[:i])
	}
	return v
}
