// Copyright (C) 2023 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/SnellerInc/predicate/locale"
	"github.com/SnellerInc/predicate/querystore"
	"github.com/SnellerInc/predicate/tree"
	"github.com/SnellerInc/predicate/tree/render"
	"github.com/SnellerInc/predicate/tree/sqlparse"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app is the state shared by all commands
// of one invocation.
type app struct {
	cfg        config
	configPath string

	runID uuid.UUID
	log   *zap.Logger
	ctx   tree.Context
	fmtr  *locale.Formatter
	store querystore.Store
	close func() error
}

func newLogger(w io.Writer, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// merge applies the settings of the configuration
// file that were not overridden on the command line.
func (a *app) merge(cmd *cobra.Command, file *config) {
	flags := cmd.Flags()
	set := func(name string, dst, src any) {
		if flags.Changed(name) {
			return
		}
		switch d := dst.(type) {
		case *string:
			*d = *src.(*string)
		case *bool:
			*d = *src.(*bool)
		case *int:
			*d = *src.(*int)
		}
	}
	set("locale", &a.cfg.Locale, &file.Locale)
	set("international", &a.cfg.International, &file.International)
	set("quote", &a.cfg.Quote, &file.Quote)
	set("identifier-quote", &a.cfg.IdentifierQuote, &file.IdentifierQuote)
	set("catalog-sep", &a.cfg.CatalogSep, &file.CatalogSep)
	set("use-real-name", &a.cfg.UseRealName, &file.UseRealName)
	set("log-level", &a.cfg.LogLevel, &file.LogLevel)
	set("log-statements", &a.cfg.LogStatements, &file.LogStatements)
	set("jobs", &a.cfg.Jobs, &file.Jobs)
	set("store", &a.cfg.Store.Path, &file.Store.Path)
	set("store-kind", &a.cfg.Store.Kind, &file.Store.Kind)
	set("field", &a.cfg.Field.Name, &file.Field.Name)
	set("real-name", &a.cfg.Field.RealName, &file.Field.RealName)
	set("type", &a.cfg.Field.Type, &file.Field.Type)
	set("format-key", &a.cfg.Field.FormatKey, &file.Field.FormatKey)
	set("table", &a.cfg.Field.Table, &file.Field.Table)
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.configPath != "" {
		file, err := loadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.merge(cmd, &file)
	}
	log, err := newLogger(cmd.ErrOrStderr(), a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	a.runID = uuid.New()
	a.log = log.With(zap.Stringer("run_id", a.runID))
	a.fmtr, err = locale.Parse(a.cfg.Locale)
	if err != nil {
		return err
	}
	a.ctx = tree.NewContext(a.fmtr.Tag())
	a.store, a.close, err = openStore(&a.cfg.Store)
	if err != nil {
		return err
	}
	a.log.Debug("starting",
		zap.String("command", cmd.Name()),
		zap.String("locale", a.fmtr.Tag().String()),
		zap.String("store", a.cfg.Store.Path))
	return nil
}

// shutdown releases the resources acquired by setup.
func (a *app) shutdown() error {
	var err error
	if a.close != nil {
		err = a.close()
		a.close = nil
	}
	if a.log != nil {
		// syncing a console writer may fail harmlessly
		_ = a.log.Sync()
	}
	return err
}

// parser returns a new parser configured for a;
// parsers are not shared between goroutines.
func (a *app) parser() *sqlparse.Parser {
	return sqlparse.New(sqlparse.Config{
		Context:     a.ctx,
		Logger:      a.log,
		UseRealName: a.cfg.UseRealName,
	})
}

// options returns the rendering options of
// a for statements parsed by p.
func (a *app) options(p *sqlparse.Parser) (*render.Options, error) {
	sep, err := a.cfg.catalogSep()
	if err != nil {
		return nil, err
	}
	return &render.Options{
		Quote:           a.cfg.Quote,
		IdentifierQuote: a.cfg.IdentifierQuote,
		CatalogSep:      sep,
		International:   a.cfg.International,
		Context:         a.ctx,
		Queries:         a.store,
		Parser:          p,
		Logger:          a.log,
	}, nil
}

// statementField returns the field that logs
// the statement s, redacted unless configured
// otherwise.
func (a *app) statementField(s string) zap.Field {
	if a.cfg.LogStatements {
		return zap.String("statement", s)
	}
	return zap.String("statement", tree.RedactText(s))
}

var errFailed = errors.New("failed")

func newRootCommand() (*cobra.Command, *app) {
	a := &app{cfg: defaultConfig()}
	cmd := &cobra.Command{
		Use:   "predicate",
		Short: "Parse, normalize and render SQL search conditions",
		Long: `predicate parses SQL statements and the predicates of
query filters, applies boolean normalizations to their
search conditions and renders them back to text.

Statements are read one per line from the files named
on the command line, from standard input if there are
none, or from the --expr flag. Files ending in .zst are
decompressed. Empty lines and lines starting with "--"
are skipped.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "configuration file (YAML)")
	flags.StringVar(&a.cfg.Locale, "locale", a.cfg.Locale, "locale of keywords, messages, numbers and dates (BCP 47)")
	flags.BoolVarP(&a.cfg.International, "international", "i", false, "use international keywords and LIKE wildcards")
	flags.BoolVarP(&a.cfg.Quote, "quote", "q", false, "quote identifiers")
	flags.StringVar(&a.cfg.IdentifierQuote, "identifier-quote", "", `identifier quote (default '"')`)
	flags.StringVar(&a.cfg.CatalogSep, "catalog-sep", "", "catalog separator of the SQL dialect")
	flags.BoolVar(&a.cfg.UseRealName, "use-real-name", false, "refer to the real name of the field")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&a.cfg.LogStatements, "log-statements", false, "log statements without redacting literals")
	flags.IntVarP(&a.cfg.Jobs, "jobs", "j", 0, "number of statements processed concurrently (default GOMAXPROCS)")
	flags.StringVar(&a.cfg.Store.Path, "store", "", "stored query definitions (YAML file or SQLite database)")
	flags.StringVar(&a.cfg.Store.Kind, "store-kind", "", "stored query backend: yaml or sqlite (default from extension)")
	flags.StringVar(&a.cfg.Field.Name, "field", a.cfg.Field.Name, "name of the field predicates are bound to")
	flags.StringVar(&a.cfg.Field.RealName, "real-name", "", "real name of the field")
	flags.StringVar(&a.cfg.Field.Type, "type", a.cfg.Field.Type, "SQL type of the field")
	flags.IntVar(&a.cfg.Field.FormatKey, "format-key", 0, "number format of the field")
	flags.StringVar(&a.cfg.Field.Table, "table", "", "table alias of the field")

	cmd.AddCommand(newParseCommand(a))
	cmd.AddCommand(newRenderCommand(a))
	cmd.AddCommand(newPredicateCommand(a))
	cmd.AddCommand(newNormalizeCommand(a))
	cmd.AddCommand(newNegateCommand(a))
	cmd.AddCommand(newCheckCommand(a))
	cmd.AddCommand(newQueriesCommand(a))
	return cmd, a
}

// execute runs the command line args with
// the given standard streams.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd, a := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	return errors.Join(err, a.shutdown())
}
