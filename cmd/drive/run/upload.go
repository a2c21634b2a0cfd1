package run

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"github.com/muesli/coral"
	"golang.org/x/sync/errgroup"
)

func (a *app) uploadCmd() *coral.Command {
	var (
		public bool
		jobs   int
	)
	cmd := &coral.Command{
		Use:   "upload <dir> <prefix>",
		Short: "write a local directory to the storage root",
		Long:  "Write every regular file under the local directory dir to the storage root under prefix.",
		Args:  coral.ExactArgs(2),
		RunE: func(cmd *coral.Command, args []string) error {
			d, err := a.driver()
			if err != nil {
				return err
			}
			dir, prefix := args[0], args[1]
			opts := writeOptions(public)
			grp, ctx := errgroup.WithContext(cmd.Context())
			grp.SetLimit(max(jobs, 1))
			var count atomic.Int64
			walkErr := filepath.WalkDir(dir, func(name string, entry fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !entry.Type().IsRegular() {
					return nil
				}
				rel, err := filepath.Rel(dir, name)
				if err != nil {
					return err
				}
				location := path.Join(prefix, filepath.ToSlash(rel))
				grp.Go(func() error {
					f, err := os.Open(name)
					if err != nil {
						return err
					}
					defer f.Close()
					if err := d.PutStream(ctx, location, f, opts); err != nil {
						return err
					}
					count.Add(1)
					return nil
				})
				return ctx.Err()
			})
			if err := grp.Wait(); err != nil {
				return err
			}
			if walkErr != nil {
				return walkErr
			}
			a.log.Info("upload complete", "dir", dir, "prefix", prefix, "files", count.Load())
			return nil
		},
	}
	cmd.Flags().BoolVar(&public, "public", false, "write with public visibility")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "number of files to write concurrently")
	return cmd
}
