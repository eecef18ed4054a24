package datadict

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"text/template"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/psych-ds/psychds-r-sub000/profile"
	"github.com/psych-ds/psychds-r-sub000/source"
)

var (
	badChars *regexp.Regexp
	sepChars *regexp.Regexp

	sqlTmpl = template.New("sql")

	queryTmpls = map[string]string{
		"createSchema": `create schema if not exists "{{.Schema}}"`,
		"createTable":  `create table if not exists "{{.Schema}}"."{{.Table}}" ( {{.Columns}} )`,
		"dropTable":    `drop table if exists "{{.Schema}}"."{{.Table}}"`,
		"renameTable":  `alter table "{{.Schema}}"."{{.TempTable}}" rename to "{{.Table}}"`,
		"analyzeTable": `analyze "{{.Schema}}"."{{.Table}}"`,
	}
)

func init() {
	for name, tmpl := range queryTmpls {
		template.Must(sqlTmpl.New(name).Parse(tmpl))
	}

	badChars = regexp.MustCompile(`[^a-z0-9_\-\.\+]+`)
	sepChars = regexp.MustCompile(`[_\-\.\+]+`)
}

// Map of inferred types to SQL column types. Categorical and boolean
// columns stay text so the enumerated values load verbatim.
var sqlTypeMap = map[profile.Type]string{
	profile.UnknownType:     "text",
	profile.StringType:      "text",
	profile.IntegerType:     "integer",
	profile.NumberType:      "double precision",
	profile.BooleanType:     "boolean",
	profile.CategoricalType: "text",
}

type tableData struct {
	Schema    string
	TempTable string
	Table     string
	Columns   string
}

func cleanIdent(n string) string {
	n = strings.ToLower(n)
	n = badChars.ReplaceAllString(n, "_")
	return sepChars.ReplaceAllString(n, "_")
}

// PublishRequest describes one publish operation: the dictionary, the
// sources the row data is drawn from, and the destination table.
type PublishRequest struct {
	Schema string
	Table  string

	Dictionary Dictionary
	Sources    []source.Source

	// Rows sampled per source when loading data. <= 0 loads everything.
	SampleRows int

	// Missing tokens loaded as SQL nulls. Defaults to
	// profile.DefaultMissingTokens.
	MissingTokens []string
}

// Publisher loads a dictionary and its sampled data into Postgres: the
// data lands in <table>, the variable profiles in <table>_dictionary.
// The data table is built under a temporary name and swapped in, so a
// failed publish never leaves a half-loaded table behind.
type Publisher struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPublisher(db *sql.DB, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Publisher{
		db:     db,
		logger: logger,
	}
}

func execTmpl(tx *sql.Tx, name string, data *tableData) error {
	var b strings.Builder
	if err := sqlTmpl.ExecuteTemplate(&b, name, data); err != nil {
		return err
	}

	_, err := tx.Exec(b.String())
	return err
}

// Publish replaces the destination tables with the request's dictionary
// and data inside a single transaction.
func (p *Publisher) Publish(ctx context.Context, req *PublishRequest) error {
	if req.Table == "" {
		return fmt.Errorf("publish: table name required")
	}
	if req.Schema == "" {
		req.Schema = "public"
	}

	vars := req.Dictionary.Variables()
	if len(vars) == 0 {
		return fmt.Errorf("publish: empty dictionary")
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := execTmpl(tx, "createSchema", &tableData{Schema: req.Schema}); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	if err := p.loadData(tx, req, vars); err != nil {
		return err
	}

	if err := p.loadDictionary(tx, req, vars); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	p.logger.Info("published dictionary",
		"schema", req.Schema,
		"table", req.Table,
		"variables", len(vars),
	)

	return nil
}

// loadData creates a temp data table, COPYs the sampled rows from every
// source into it, then swaps it in for the target table.
func (p *Publisher) loadData(tx *sql.Tx, req *PublishRequest, vars []*profile.Variable) error {
	cols := make([]string, len(vars))
	defs := make([]string, len(vars))
	for i, v := range vars {
		cols[i] = cleanIdent(v.Name)
		defs[i] = fmt.Sprintf(`"%s" %s`, cols[i], sqlTypeMap[v.Type])
	}

	tempTable := uuid.New().String()

	data := &tableData{
		Schema:    req.Schema,
		TempTable: tempTable,
		Table:     tempTable,
		Columns:   strings.Join(defs, ", "),
	}

	if err := execTmpl(tx, "createTable", data); err != nil {
		return fmt.Errorf("creating data table: %w", err)
	}

	stmt, err := tx.Prepare(pq.CopyInSchema(req.Schema, tempTable, cols...))
	if err != nil {
		return fmt.Errorf("preparing copy: %w", err)
	}

	missing := profile.MissingTokenSet(req.MissingTokens)

	var rows int64
	for _, src := range req.Sources {
		n, err := copySource(stmt, src, vars, missing, req.SampleRows)
		if err != nil {
			return fmt.Errorf("loading %s: %w", src.Name(), err)
		}
		rows += n
	}

	if _, err := stmt.Exec(); err != nil {
		return fmt.Errorf("flushing copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	data.Table = req.Table
	if err := execTmpl(tx, "dropTable", data); err != nil {
		return fmt.Errorf("dropping old table: %w", err)
	}
	if err := execTmpl(tx, "renameTable", data); err != nil {
		return fmt.Errorf("renaming table: %w", err)
	}
	if err := execTmpl(tx, "analyzeTable", data); err != nil {
		return fmt.Errorf("analyzing table: %w", err)
	}

	p.logger.Debug("loaded rows", "table", req.Table, "rows", rows)

	return nil
}

// copySource streams one source's sampled columns into the COPY
// statement. Missing cells and cells that do not fit the column's
// inferred type load as nulls.
func copySource(stmt *sql.Stmt, src source.Source, vars []*profile.Variable, missing map[string]struct{}, sampleRows int) (int64, error) {
	header, err := src.Header()
	if err != nil {
		return 0, err
	}

	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}

	columns := make([][]string, len(vars))
	var nrows int
	for i, v := range vars {
		if _, ok := present[v.Name]; !ok {
			continue
		}

		values, err := src.Column(v.Name, sampleRows)
		if err != nil {
			return 0, err
		}

		columns[i] = values
		if len(values) > nrows {
			nrows = len(values)
		}
	}

	for row := 0; row < nrows; row++ {
		args := make([]interface{}, len(vars))
		for i, v := range vars {
			if columns[i] == nil || row >= len(columns[i]) {
				continue
			}
			args[i] = sqlValue(columns[i][row], v.Type, missing)
		}

		if _, err := stmt.Exec(args...); err != nil {
			return 0, err
		}
	}

	return int64(nrows), nil
}

// sqlValue converts a raw cell to a COPY argument. Returns nil for
// missing cells and for cells the typed column would reject.
func sqlValue(raw string, typ profile.Type, missing map[string]struct{}) interface{} {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	if _, ok := missing[v]; ok {
		return nil
	}

	switch typ {
	case profile.IntegerType, profile.NumberType:
		// Up to 10% of a numeric column may be non-numeric noise.
		if _, ok := profile.ParseNumber(v); !ok {
			return nil
		}
	}

	return v
}

// loadDictionary replaces <table>_dictionary with one row per variable.
func (p *Publisher) loadDictionary(tx *sql.Tx, req *PublishRequest, vars []*profile.Variable) error {
	table := req.Table + "_dictionary"

	data := &tableData{
		Schema: req.Schema,
		Table:  table,
		Columns: strings.Join([]string{
			`"name" text primary key`,
			`"value_type" text not null`,
			`"unit_text" text`,
			`"min_value" text`,
			`"max_value" text`,
			`"required" boolean not null`,
			`"is_unique" boolean not null`,
			`"pattern" text`,
			`"description" text`,
			`"value_reference" jsonb`,
			`"files" jsonb`,
			`"needs_review" boolean not null`,
		}, ", "),
	}

	if err := execTmpl(tx, "dropTable", data); err != nil {
		return fmt.Errorf("dropping old dictionary table: %w", err)
	}
	if err := execTmpl(tx, "createTable", data); err != nil {
		return fmt.Errorf("creating dictionary table: %w", err)
	}

	stmt, err := tx.Prepare(pq.CopyInSchema(req.Schema, table,
		"name", "value_type", "unit_text", "min_value", "max_value",
		"required", "is_unique", "pattern", "description",
		"value_reference", "files", "needs_review",
	))
	if err != nil {
		return fmt.Errorf("preparing dictionary copy: %w", err)
	}

	for _, v := range vars {
		var valueRef interface{}
		if len(v.Values) > 0 {
			b, err := json.Marshal(v.Values)
			if err != nil {
				return err
			}
			valueRef = string(b)
		}

		files, err := json.Marshal(v.Files)
		if err != nil {
			return err
		}

		if _, err := stmt.Exec(
			v.Name, v.Type.String(), nullable(v.Unit),
			nullable(v.MinValue), nullable(v.MaxValue),
			v.Required, v.Unique, nullable(v.Pattern),
			nullable(v.Description), valueRef, string(files), v.NeedsReview,
		); err != nil {
			return fmt.Errorf("writing dictionary row %s: %w", v.Name, err)
		}
	}

	if _, err := stmt.Exec(); err != nil {
		return fmt.Errorf("flushing dictionary copy: %w", err)
	}

	return stmt.Close()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
