package run

import (
	"fmt"

	"github.com/muesli/coral"
)

func (a *app) existsCmd() *coral.Command {
	return &coral.Command{
		Use:   "exists <location>",
		Short: "check if a location exists",
		Long:  "Print true if a file or directory exists at location and false otherwise.",
		Args:  coral.ExactArgs(1),
		RunE: func(cmd *coral.Command, args []string) error {
			d, err := a.driver()
			if err != nil {
				return err
			}
			ok, err := d.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
}
