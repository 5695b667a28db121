package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/example/photoedit/internal/appstate"
	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/theme"
)

const loadTimeout = 30 * time.Second

// editCmd opens the desktop editor.
type editCmd struct {
	*root
	fs     *flag.FlagSet
	input  inputFlags
	output string
	theme  string
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r.subcommand("edit"), fs: fs}
	fs.Usage = usageFunc(e)
	e.input.register(fs, true)
	fs.StringVar(&e.output, "output", "", "file written by Ctrl+S (defaults to the source name in the save directory)")
	fs.StringVar(&e.theme, "theme", r.config.Theme, "window theme: default, dark, a theme name or a file path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := e.input.validate(); err != nil {
		return nil, &UsageError{of: e}
	}
	return e, nil
}

func (e *editCmd) Run() error {
	th, err := theme.NewLoader().Load(e.theme)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}
	app := appstate.New(
		appstate.WithTheme(th),
		appstate.WithOutput(e.output),
		appstate.WithSaveDir(e.config.SaveDir),
		appstate.WithExportOptions(e.config.ExportOptions()),
		appstate.WithNotifier(e.notifier),
		appstate.WithLogger(e.log),
	)
	opts := append(e.config.EditorOptions(),
		editor.WithLogger(e.log),
		editor.WithOnChange(app.NotifyChanged),
		editor.WithOnSave(app.SaveFile),
		editor.WithOnClose(app.RequestClose),
	)
	ed := editor.New(opts...)
	defer func() {
		if err := ed.Teardown(); err != nil {
			e.log.Warn("teardown", "err", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	if err := e.input.load(ctx, e.root, ed); err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	e.log.Debug("editing", "name", ed.SourceName())
	app.Run(ed)
	return nil
}
