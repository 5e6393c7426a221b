package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/oukeidos/promptaudit/internal/warehouse"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the BigQuery table schema as JSON",
		Long: "Print the schema used when the table is created, in the format accepted by\n" +
			"bq mk --schema and the BigQuery console.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := warehouse.Schema().ToJSONFields()
			if err != nil {
				return fmt.Errorf("failed to encode schema: %w", err)
			}
			var compact, out bytes.Buffer
			if err := json.Compact(&compact, data); err != nil {
				return err
			}
			if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
				return err
			}
			out.WriteByte('\n')
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
