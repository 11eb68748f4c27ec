package main

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/ternarybob/moneypulse/internal/app"
	"github.com/ternarybob/moneypulse/internal/services/rating"
)

var paramsShowVersion string

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List parameter sets or print one",
	Long: `Without --show, lists the built-in parameter set versions and marks the
configured one. With --show, prints that set as TOML, ready to edit and load
through scoring.params_file.`,
	RunE: runParams,
}

func init() {
	paramsCmd.Flags().StringVar(&paramsShowVersion, "show", "", `Version to print, "active" for the configured set`)
}

func runParams(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	active, err := app.LoadParams(config)
	if err != nil {
		return err
	}

	if paramsShowVersion == "" {
		versions := rating.ParameterSetVersions()
		if outputJSON {
			return printJSON(out, map[string]interface{}{
				"versions": versions,
				"active":   active.Version,
			})
		}
		for _, v := range versions {
			marker := " "
			if v == active.Version {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, v)
		}
		return nil
	}

	params := active
	if paramsShowVersion != "active" {
		if params, err = rating.LookupParameterSet(paramsShowVersion); err != nil {
			return err
		}
	}

	if outputJSON {
		return printJSON(out, params)
	}

	data, err := toml.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode parameter set: %w", err)
	}
	_, err = out.Write(data)
	return err
}
