package run

import (
	"io"
	"os"

	"github.com/muesli/coral"
)

func (a *app) putCmd() *coral.Command {
	var public bool
	cmd := &coral.Command{
		Use:   "put <location> [file]",
		Short: "write a file to the storage root",
		Long:  "Write the contents of file (or stdin) to location, creating missing directories.",
		Args:  coral.RangeArgs(1, 2),
		RunE: func(cmd *coral.Command, args []string) error {
			d, err := a.driver()
			if err != nil {
				return err
			}
			var src io.Reader = cmd.InOrStdin()
			if len(args) > 1 {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}
			if err := d.PutStream(cmd.Context(), args[0], src, writeOptions(public)); err != nil {
				return err
			}
			a.log.Info("put", "location", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&public, "public", false, "write with public visibility")
	return cmd
}
