package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"flowdesigner/config"
	"flowdesigner/connections"
	"flowdesigner/core"
	"flowdesigner/diagram"
	"flowdesigner/editor"
	"flowdesigner/terminal"
)

const tuiHelp = `Mouse: drag boxes to move them, drag borders to resize, drag points to connect.
Right click deletes, double click edits a label.

Keys:
  s / n     select tool / create tool
  c         toggle live connection preview
  m         toggle a marker at the pointer
  a         toggle the arrow on the connection under the pointer
  f b ] [   bring to front, send to back, forward, backward
  x, Del    delete under the pointer
  Esc       clear the selection
  q, Ctrl-C quit`

func (a *app) newTUICmd() *cobra.Command {
	var (
		logFile string
		sample  bool
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit a diagram in the terminal",
		Long:  tuiHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The screen owns the terminal, so logs go to a file or nowhere.
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				logger = slog.New(tint.NewHandler(f, &tint.Options{Level: a.cfg.LogLevel(), NoColor: true}))
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initialising screen: %w", err)
			}
			defer screen.Fini()

			scene := diagram.NewScene(a.cfg.Canvas.Width, a.cfg.Canvas.Height)
			ed := editor.New(scene, a.cfg.EditorOptions(logger)...)
			if sample {
				if err := addSample(scene, a.cfg.Router(logger), a.cfg.Shapes); err != nil {
					return err
				}
			}

			err = terminal.New(screen, ed, terminal.WithLogger(logger)).Run(cmd.Context())
			if errors.Is(err, cmd.Context().Err()) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file while the editor runs")
	cmd.Flags().BoolVar(&sample, "sample", false, "Start with two connected boxes")
	return cmd
}

// addSample places two boxes and joins them with a routed connection.
func addSample(scene *diagram.Scene, router connections.Router, shapes config.Shapes) error {
	left := &diagram.Component{Rectangle: diagram.Rectangle{Position: core.Pt(4, 3), Size: core.Pt(16, 6), Margin: shapes.Margin, Label: "source"}}
	right := &diagram.Component{Rectangle: diagram.Rectangle{Position: core.Pt(40, 4), Size: core.Pt(16, 6), Margin: shapes.Margin, Label: "sink"}}
	scene.Add(left)
	scene.Add(right)

	a, err := connections.NewPoint(scene, left.ID, right.MidPoint())
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	b, err := connections.NewPoint(scene, right.ID, left.MidPoint())
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	a.Size, b.Size = shapes.PointSize, shapes.PointSize
	conn, err := scene.Connect(a.ID, b.ID)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	conn.ModeB = diagram.EndArrow
	return connections.Redraw(scene, router, conn)
}
