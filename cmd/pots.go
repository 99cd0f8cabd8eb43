package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"animalitos/config"
	"animalitos/domain/entities"

	"github.com/spf13/cobra"
)

func newPotsCommand() *cobra.Command {
	potsCmd := &cobra.Command{
		Use:   "pots",
		Short: "Inspect and configure pots",
	}

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List pots with balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), config.Get(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			pots, err := a.ledger.ListPots(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), pots)
			}
			return printPots(cmd.OutOrStdout(), pots)
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	var file string
	configureCmd := &cobra.Command{
		Use:   "configure",
		Short: "Apply a TOML pot configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configs, err := readPotConfigs(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), config.Get(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			pots, err := a.ledger.ConfigurePots(cmd.Context(), configs)
			if err != nil {
				return err
			}
			return printPots(cmd.OutOrStdout(), pots)
		},
	}
	configureCmd.Flags().StringVarP(&file, "file", "f", "", "TOML pot configuration file, - for stdin")
	_ = configureCmd.MarkFlagRequired("file")

	potsCmd.AddCommand(listCmd, configureCmd)
	return potsCmd
}

// readPotConfigs loads the configuration from path, or from stdin when path is "-"
func readPotConfigs(stdin io.Reader, path string) ([]entities.PotConfig, error) {
	if path != "-" {
		return config.LoadPotConfigs(path)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read pot configuration from stdin: %w", err)
	}
	return config.DecodePotConfigs(string(data))
}

func printPots(out io.Writer, pots []*entities.Pot) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPERCENTAGE\tBALANCE\tACTIVE")
	for _, pot := range pots {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", pot.Name, pot.Percentage.String(), pot.Balance.StringFixed(2), pot.Active)
	}
	return tw.Flush()
}
