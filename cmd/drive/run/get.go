package run

import (
	"io"

	"github.com/muesli/coral"
)

func (a *app) getCmd() *coral.Command {
	return &coral.Command{
		Use:   "get <location>",
		Short: "print a file's contents",
		Long:  "Write the contents of the file at location to stdout.",
		Args:  coral.ExactArgs(1),
		RunE: func(cmd *coral.Command, args []string) error {
			d, err := a.driver()
			if err != nil {
				return err
			}
			r, err := d.GetStream(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			_, err = io.Copy(cmd.OutOrStdout(), r)
			return err
		},
	}
}
