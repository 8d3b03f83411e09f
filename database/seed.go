/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/uptrace/bun"
)

// unorderedSeed is the order of seed files without a numeric prefix.
const unorderedSeed = 999

var seedOrderPattern = regexp.MustCompile(`^(\d+)_`)

// SeedFile is a SQL file found under the seed directory.
type SeedFile struct {
	Path  string
	Name  string
	Order int
}

// SeedResult is the outcome of one seed file.
type SeedResult struct {
	File         string        `json:"file"`
	Statements   int           `json:"statements"`
	RowsAffected int64         `json:"rows_affected"`
	Duration     time.Duration `json:"duration"`
}

// Seeder executes the *.sql files of a directory against a database. Files
// run ordered by their numeric "NN_" prefix, each inside its own transaction.
// File contents are text/template documents rendered with the process
// environment plus TIMESTAMP.
type Seeder struct {
	db     *bun.DB
	dir    string
	logger Logger
}

// NewSeeder returns a Seeder for dir on the connection held by manager.
func NewSeeder(manager Manager, dir string) *Seeder {
	return &Seeder{db: manager.GetDB(), dir: dir, logger: GetLogger()}
}

// Files lists the seed files in execution order.
func (s *Seeder) Files() ([]SeedFile, error) {
	var files []SeedFile
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			return nil
		}
		files = append(files, SeedFile{Path: path, Name: d.Name(), Order: seedOrder(d.Name())})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list seed files in %s: %w", s.dir, err)
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Seed runs every seed file and stops at the first failure. Results of the
// files that completed are returned either way.
func (s *Seeder) Seed(ctx context.Context) ([]SeedResult, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	files, err := s.Files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.logger.Info("No seed files found", "dir", s.dir)
		return nil, nil
	}

	results := make([]SeedResult, 0, len(files))
	for _, file := range files {
		result, err := s.execute(ctx, file)
		if err != nil {
			s.logger.Error("Seed file failed", "file", file.Path, "error", err)
			return results, fmt.Errorf("seed file %s failed: %w", file.Path, err)
		}
		s.logger.Info("Seed file executed",
			"file", result.File,
			"statements", result.Statements,
			"rows_affected", result.RowsAffected,
			"duration", result.Duration.String())
		results = append(results, result)
	}
	return results, nil
}

func (s *Seeder) execute(ctx context.Context, file SeedFile) (SeedResult, error) {
	start := time.Now()
	result := SeedResult{File: file.Path}

	content, err := os.ReadFile(file.Path)
	if err != nil {
		return result, err
	}
	rendered, err := renderSeed(file.Name, string(content))
	if err != nil {
		return result, err
	}
	statements := splitStatements(rendered)

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range statements {
			res, err := tx.ExecContext(ctx, stmt)
			if err != nil {
				return fmt.Errorf("statement %q: %w", stmt, err)
			}
			n, _ := res.RowsAffected()
			result.RowsAffected += n
		}
		return nil
	})
	if err != nil {
		return result, err
	}
	result.Statements = len(statements)
	result.Duration = time.Since(start)
	return result, nil
}

func seedOrder(name string) int {
	m := seedOrderPattern.FindStringSubmatch(name)
	if len(m) < 2 {
		return unorderedSeed
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return unorderedSeed
	}
	return n
}

func renderSeed(name, content string) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	vars["TIMESTAMP"] = time.Now().Format("2006-01-02 15:04:05")

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// splitStatements splits SQL text on lines ending with ';'. Blank lines and
// "--" comment lines are dropped.
func splitStatements(content string) []string {
	var (
		statements []string
		current    strings.Builder
	)
	flush := func() {
		stmt := strings.TrimSuffix(strings.TrimSpace(current.String()), ";")
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			flush()
		}
	}
	flush()
	return statements
}
