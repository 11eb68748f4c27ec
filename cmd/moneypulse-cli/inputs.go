package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/moneypulse/internal/models"
)

// inputFlags binds the six figures to a command. --input reads a JSON
// document (or "-" for stdin); explicit flags override its values.
type inputFlags struct {
	file   string
	values models.RawInputs
}

func (f *inputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.file, "input", "i", "", `JSON file with the inputs, "-" reads stdin`)
	flags.Float64Var(&f.values.MonthlyIncome, "income", 0, "Monthly income")
	flags.Float64Var(&f.values.MonthlySpending, "spending", 0, "Monthly spending")
	flags.Float64Var(&f.values.TotalSavings, "savings", 0, "Total savings")
	flags.Float64Var(&f.values.TotalDebt, "debt", 0, "Total debt")
	flags.Float64Var(&f.values.MonthlyInvestments, "investments", 0, "Monthly investments")
	flags.Float64Var(&f.values.InvestmentBalance, "investment-balance", 0, "Investment balance")
}

var flagFields = map[string]func(r *models.RawInputs, v float64){
	"income":             func(r *models.RawInputs, v float64) { r.MonthlyIncome = v },
	"spending":           func(r *models.RawInputs, v float64) { r.MonthlySpending = v },
	"savings":            func(r *models.RawInputs, v float64) { r.TotalSavings = v },
	"debt":               func(r *models.RawInputs, v float64) { r.TotalDebt = v },
	"investments":        func(r *models.RawInputs, v float64) { r.MonthlyInvestments = v },
	"investment-balance": func(r *models.RawInputs, v float64) { r.InvestmentBalance = v },
}

func (f *inputFlags) resolve(cmd *cobra.Command) (models.RawInputs, error) {
	var raw models.RawInputs

	if f.file != "" {
		var r io.Reader = cmd.InOrStdin()
		if f.file != "-" {
			file, err := os.Open(f.file)
			if err != nil {
				return raw, fmt.Errorf("failed to open inputs: %w", err)
			}
			defer file.Close()
			r = file
		}
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return raw, fmt.Errorf("failed to parse inputs: %w", err)
		}
	}

	for name, set := range flagFields {
		if cmd.Flags().Changed(name) {
			v, err := cmd.Flags().GetFloat64(name)
			if err != nil {
				return raw, err
			}
			set(&raw, v)
		}
	}

	return raw.Sanitized(), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
