package run

import (
	"context"

	"github.com/muesli/coral"
	"github.com/srerickson/drive"
)

func (a *app) copyCmd() *coral.Command {
	return a.transferCmd("cp", "copy", "copied", func(ctx context.Context, d drive.Driver, src, dst string, opts *drive.WriteOptions) error {
		return d.Copy(ctx, src, dst, opts)
	})
}

func (a *app) moveCmd() *coral.Command {
	return a.transferCmd("mv", "move", "moved", func(ctx context.Context, d drive.Driver, src, dst string, opts *drive.WriteOptions) error {
		return d.Move(ctx, src, dst, opts)
	})
}

type transferFunc func(ctx context.Context, d drive.Driver, src, dst string, opts *drive.WriteOptions) error

func (a *app) transferCmd(use, verb, done string, fn transferFunc) *coral.Command {
	var public bool
	cmd := &coral.Command{
		Use:   use + " <src> <dst>",
		Short: verb + " a file or directory",
		Long:  "The " + use + " command will " + verb + " src to dst, replacing dst if it exists. Without --public, file permissions are kept.",
		Args:  coral.ExactArgs(2),
		RunE: func(cmd *coral.Command, args []string) error {
			d, err := a.driver()
			if err != nil {
				return err
			}
			if err := fn(cmd.Context(), d, args[0], args[1], writeOptions(public)); err != nil {
				return err
			}
			a.log.Info(done, "src", args[0], "dst", args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&public, "public", false, "set public visibility on the destination")
	return cmd
}
