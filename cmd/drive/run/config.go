package run

import (
	"github.com/muesli/coral"
)

func (a *app) configCmd() *coral.Command {
	return &coral.Command{
		Use:   "config",
		Short: "print config",
		Long:  "Print the effective driver configuration as YAML.",
		Args:  coral.NoArgs,
		RunE: func(cmd *coral.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			b, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
