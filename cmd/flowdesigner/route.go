package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"flowdesigner/core"
	"flowdesigner/obstacles"
	"flowdesigner/pathfinding"
)

var errBadCoordinates = errors.New("bad coordinates")

func (a *app) newRouteCmd() *cobra.Command {
	var (
		from, to  string
		rects     []string
		dump, out string
		stride    int
		scale     float64
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Route a path between two points around obstacles",
		Example: `  flowdesigner route --from 20,30 --to 100,30 --obstacle 50,10,20,40 --dump ascii
  flowdesigner route --from 20,30 --to 100,30 --obstacle 50,10,20,40 --dump png --out map.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dump != "" && dump != "ascii" && dump != "png" {
				return fmt.Errorf("unknown dump format %q", dump)
			}
			if dump == "png" && out == "" {
				return errors.New("--dump png needs --out")
			}

			start, err := parsePoint(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := parsePoint(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			obs := make([]core.Rect, 0, len(rects))
			for _, arg := range rects {
				r, err := parseRect(arg)
				if err != nil {
					return fmt.Errorf("--obstacle: %w", err)
				}
				obs = append(obs, r)
			}

			bounds := core.R(0, 0, a.cfg.Canvas.Width, a.cfg.Canvas.Height)
			m, path, err := a.cfg.Router(a.logger).Plan(start, end, obs, bounds)
			if err != nil {
				return err
			}
			a.logger.Debug("routed", "points", len(path), "cols", m.Cols, "rows", m.Rows)

			w := cmd.OutOrStdout()
			headerColor.Fprintln(w, "Path")
			fmt.Fprintf(w, "  %s\n", pathfinding.PathToString(path))
			fmt.Fprintf(w, "  %d points\n", len(path))

			switch dump {
			case "ascii":
				headerColor.Fprintln(w, "Grid")
				fmt.Fprint(w, m.Describe())
				headerColor.Fprintln(w, "Map")
				fmt.Fprint(w, m.ASCII(path, stride))
				fmt.Fprintln(w, obstacles.Legend())
			case "png":
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				if err := m.WritePNG(f, path, scale); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Fprintf(w, "  map written to %s\n", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start point as x,y")
	cmd.Flags().StringVar(&to, "to", "", "End point as x,y")
	cmd.Flags().StringArrayVar(&rects, "obstacle", nil, "Obstacle as x,y,w,h (repeatable)")
	cmd.Flags().StringVar(&dump, "dump", "", "Dump the obstacle map: ascii or png")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file for --dump png")
	cmd.Flags().IntVar(&stride, "stride", 2, "Grid cells per character in the ascii dump")
	cmd.Flags().Float64Var(&scale, "scale", 4, "Pixels per canvas unit in the png dump")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%w: %q wants %d comma-separated numbers", errBadCoordinates, s, n)
	}
	vals := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", errBadCoordinates, s, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func parsePoint(s string) (core.Point, error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return core.Point{}, err
	}
	return core.Pt(v[0], v[1]), nil
}

func parseRect(s string) (core.Rect, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return core.Rect{}, err
	}
	if v[2] <= 0 || v[3] <= 0 {
		return core.Rect{}, fmt.Errorf("%w: %q has no area", errBadCoordinates, s)
	}
	return core.R(v[0], v[1], v[2], v[3]), nil
}
