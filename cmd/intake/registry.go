package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "List the field registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := initRegistry()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PATH\tTYPE\tREQUIRED\tVALIDATE\tAUTOFILL\tLABEL")
		for _, spec := range registry.Fields() {
			autofillMark := "-"
			if spec.Autofill != nil {
				autofillMark = fmt.Sprintf("#%d", spec.Autofill.Order)
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\t%s\n",
				spec.Path, spec.Type, spec.Required, spec.Validate, autofillMark, spec.Label)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(registryCmd)
}
