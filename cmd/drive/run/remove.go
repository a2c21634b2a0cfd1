package run

import (
	"github.com/muesli/coral"
)

func (a *app) removeCmd() *coral.Command {
	return &coral.Command{
		Use:   "rm <location>...",
		Short: "remove files or directories",
		Long:  "Remove each location and everything under it. Missing locations are ignored.",
		Args:  coral.MinimumNArgs(1),
		RunE: func(cmd *coral.Command, args []string) error {
			d, err := a.driver()
			if err != nil {
				return err
			}
			for _, loc := range args {
				if err := d.Delete(cmd.Context(), loc); err != nil {
					return err
				}
				a.log.Info("removed", "location", loc)
			}
			return nil
		},
	}
}
