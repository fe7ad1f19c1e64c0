package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/schemata/internal/compiler"
	"github.com/roach88/schemata/internal/model"
	"github.com/roach88/schemata/internal/store"
	"github.com/roach88/schemata/internal/store/dynamostore"
	"github.com/roach88/schemata/internal/store/sqlstore"
)

// ProjectOptions holds flags for the project command.
type ProjectOptions struct {
	*RootOptions
	Data        string
	Database    string
	DynamoTable string
	AWSProfile  string
}

// NewProjectCommand creates the project command.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProjectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "project <specs-dir> <model>",
		Short: "Construct a record and print its JSON projection",
		Long: `Construct a record of a compiled model from JSON input and print its
JSON projection. Input is coerced field by field; fields left out take
their defaults.

With --db the record is saved to a SQLite database first (created if
missing), so identifiers assigned on save show up in the output.
--dynamo-table saves to a DynamoDB table instead, using the shared AWS
configuration.

Example:
  schemata project ./specs Person --data '{"firstName":"Bruce","age":"33"}'
  schemata project ./specs Person --data '{"firstName":"Bruce"}' --db ./records.db
  schemata project ./specs Person --data '{"firstName":"Bruce"}' --dynamo-table people`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Data, "data", "{}", "record data as a JSON object")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to a SQLite database to save the record to")
	cmd.Flags().StringVar(&opts.DynamoTable, "dynamo-table", "", "DynamoDB table to save the record to")
	cmd.Flags().StringVar(&opts.AWSProfile, "aws-profile", "", "shared AWS config profile for --dynamo-table")
	cmd.MarkFlagsMutuallyExclusive("db", "dynamo-table")

	return cmd
}

func runProject(opts *ProjectOptions, specsDir, modelName string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	data, err := decodeData(opts.Data)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --data", err)
	}

	loadResult, err := LoadSpecs(specsDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	ctx := context.Background()
	storeFor, closeStore, err := openStore(ctx, opts)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer closeStore()
	buildOpts := compiler.BuildOptions{Store: storeFor}

	registry := model.NewRegistry()
	if _, err := compiler.Build(loadResult.Specs, registry, buildOpts); err != nil {
		_ = formatter.Error(ErrCodeInvalidModel, err.Error(), nil)
		return WrapExitError(ExitCommandError, "build models", err)
	}

	t, ok := registry.Lookup(modelName)
	if !ok {
		msg := fmt.Sprintf("unknown model %q (have %s)", modelName, strings.Join(modelNames(registry), ", "))
		_ = formatter.Error(ErrCodeUnknownModel, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	record, err := model.New(t, data)
	if err != nil {
		_ = formatter.Error(ErrCodeRecordFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "construct record", err)
	}

	if storeFor != nil {
		if _, err := record.Save(ctx); err != nil {
			_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "save record", err)
		}
	}

	projection, err := record.MarshalJSON()
	if err != nil {
		return WrapExitError(ExitCommandError, "marshal record", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(json.RawMessage(projection))
	}
	fmt.Fprintln(formatter.Writer, string(projection))
	return nil
}

// openStore returns the store factory selected by the flags, nil when the
// record is only projected, and a func releasing what it opened.
func openStore(ctx context.Context, opts *ProjectOptions) (func(string) (store.Store, error), func(), error) {
	switch {
	case opts.Database != "":
		db, err := sqlstore.Open(opts.Database)
		if err != nil {
			return nil, nil, err
		}
		slog.Debug("opened record database", "path", opts.Database)
		return func(name string) (store.Store, error) {
			return db.Collection(name), nil
		}, func() { db.Close() }, nil

	case opts.DynamoTable != "":
		cfg := dynamostore.DefaultConfig()
		cfg.TableName = opts.DynamoTable
		cfg.Profile = opts.AWSProfile
		s, err := dynamostore.NewFromConfig(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		slog.Debug("using dynamodb table", "table", opts.DynamoTable)
		return func(string) (store.Store, error) {
			return s, nil
		}, func() {}, nil
	}
	return nil, func() {}, nil
}

// decodeData parses a JSON object, keeping numbers as json.Number so
// integers survive unchanged.
func decodeData(s string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("--data must be a JSON object: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

func modelNames(reg *model.Registry) []string {
	types := reg.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name()
	}
	return names
}
