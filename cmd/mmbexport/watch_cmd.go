package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mm0-org/mmb/export"
)

// newWatchCmd re-exports fixture on every write, a development
// convenience so a fixture author sees export errors immediately
// instead of re-running the CLI by hand after every edit.
func newWatchCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "watch <fixture.json>",
		Short: "Re-export a fixture on every change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			runOnce := func() {
				e, err := loadEnvironment(path)
				if err != nil {
					slog.Error("fixture load failed", "path", path, "error", err)
					return
				}
				f, err := os.Create(out)
				if err != nil {
					slog.Error("failed to open output", "path", out, "error", err)
					return
				}
				defer func() { _ = f.Close() }()
				res, err := export.Export(e, f)
				if err != nil {
					slog.Error("export failed", "path", path, "error", err)
					return
				}
				slog.Info("re-exported container", "path", out, "bytes", res.Size)
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer func() { _ = watcher.Close() }()

			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return err
			}

			runOnce()
			slog.Info("watching for changes", "path", path)

			for {
				select {
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(ev.Name) != filepath.Clean(path) {
						continue
					}
					if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					runOnce()
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					slog.Error("watch error", "error", err)
				}
			}
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "out.mmb", "Output container path")
	return cmd
}
