package main

import (
	"path/filepath"

	"github.com/phanxgames/parallax"
	"github.com/phanxgames/parallax/pagespec"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <page.yaml>",
	Short: "Open a window and scroll through the page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPage,
}

func init() {
	runCmd.Flags().Bool("watch", false, "Rebuild the page when the file changes")
	runCmd.Flags().Bool("stats", false, "Show the stats overlay")
	runCmd.Flags().Bool("debug", false, "Enable tree checks and debug logging")
	runCmd.Flags().String("script", "", "Optional JSON scroll script to replay")
}

func runPage(cmd *cobra.Command, args []string) error {
	path := args[0]
	watch, _ := cmd.Flags().GetBool("watch")
	stats, _ := cmd.Flags().GetBool("stats")
	debug, _ := cmd.Flags().GetBool("debug")
	scriptPath, _ := cmd.Flags().GetString("script")

	spec, err := pagespec.Load(path)
	if err != nil {
		return err
	}

	page := parallax.NewPage(spec.Viewport.Width, spec.Viewport.Height)
	page.SetLogger(newLogger(cmd))
	page.SetDebugMode(debug)
	if scriptPath != "" {
		runner, err := loadScript(scriptPath)
		if err != nil {
			return err
		}
		page.SetTestRunner(runner)
	}

	r := &reloader{path: path, page: page}
	if r.mount, err = pagespec.Build(page, spec); err != nil {
		return err
	}
	defer r.close()

	if watch {
		if r.watcher, err = pagespec.NewWatcher(filepath.Dir(path)); err != nil {
			return err
		}
		page.SetUpdateFunc(r.poll)
	}

	return parallax.Run(page, parallax.RunConfig{
		Title:     "parallax - " + filepath.Base(path),
		ShowStats: stats,
		Resizable: true,
	})
}

// reloader rebuilds the page when the watched file changes. A file that
// fails to load leaves the current page in place.
type reloader struct {
	path    string
	page    *parallax.Page
	mount   *pagespec.Mount
	watcher *pagespec.Watcher
}

func (r *reloader) poll() error {
	log := r.page.Logger()
	for {
		select {
		case changed, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(changed) != filepath.Clean(r.path) {
				continue
			}
			r.reload()
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch failed", "err", err)
		default:
			return nil
		}
	}
}

func (r *reloader) reload() {
	log := r.page.Logger()
	spec, err := pagespec.Load(r.path)
	if err != nil {
		log.Error("reload failed", "path", r.path, "err", err)
		return
	}
	if r.mount != nil {
		if err := r.mount.Unmount(); err != nil {
			log.Error("unmount failed", "err", err)
		}
	}
	scroll := r.page.Viewport().ScrollY
	if r.mount, err = pagespec.Build(r.page, spec); err != nil {
		log.Error("rebuild failed", "path", r.path, "err", err)
		r.mount = nil
		return
	}
	r.page.Viewport().SetScroll(scroll)
	r.page.RefreshAll()
	log.Info("page reloaded", "path", r.path, "triggers", r.page.Registry().Len())
}

func (r *reloader) close() {
	if r.watcher != nil {
		_ = r.watcher.Close()
	}
	if r.mount != nil {
		_ = r.mount.Unmount()
	}
}
