package main

import (
	"context"
	"log/slog"

	"github.com/enixma/dashboard/internal/api"
	"github.com/enixma/dashboard/internal/config"
	"github.com/enixma/dashboard/internal/crossline"
	"github.com/enixma/dashboard/internal/interaction"
	"github.com/enixma/dashboard/internal/polygon"
	"github.com/enixma/dashboard/internal/scene"
)

// Editor names used by the page controls.
const (
	firstEditor  = "first"
	secondEditor = "second"
)

// Where each editor draws its default shape, in frame pixels.
const (
	firstRegionX  = 20.0
	secondRegionX = 527.0
	firstLineX    = 80.0
	secondLineX   = 587.0
)

type overlay struct {
	scene   *scene.Scene
	panels  *scene.Panels
	lanes   *scene.Lanes
	regions []*polygon.Editor
	lines   []*crossline.Editor
}

// buildOverlay wires the two regions and two crosslines of the camera view
// around one interaction token.
func buildOverlay(names config.RecordNames, cfg config.EditorConfig, sync api.Committer, logger *slog.Logger) *overlay {
	token := interaction.NewToken()
	panels := scene.NewPanels()
	lanes := scene.NewLanes(map[string]int{
		firstEditor:  cfg.FirstLanes,
		secondEditor: cfg.SecondLanes,
	})

	lineDeps := crossline.Dependencies{Token: token, Sync: sync, Lanes: lanes, Notify: panels, Logger: logger}
	lines := []*crossline.Editor{
		crossline.New(firstEditor, names.FirstCrossline, lineDeps),
		crossline.New(secondEditor, names.SecondCrossline, lineDeps),
	}

	regionDeps := polygon.Dependencies{Token: token, Sync: sync, Probe: crossline.Probe(lines), Notify: panels, Logger: logger}
	regions := []*polygon.Editor{
		polygon.New(firstEditor, names.FirstPoly, regionDeps),
		polygon.New(secondEditor, names.SecondPoly, regionDeps),
	}

	sc := scene.New(token,
		[]scene.Region{
			{Editor: regions[0], StartX: firstRegionX},
			{Editor: regions[1], StartX: secondRegionX},
		},
		[]scene.Line{
			{Editor: lines[0], StartX: firstLineX},
			{Editor: lines[1], StartX: secondLineX},
		},
		logger,
	)

	return &overlay{scene: sc, panels: panels, lanes: lanes, regions: regions, lines: lines}
}

// load fetches every editor's record once. A record that cannot be read
// leaves its editor empty.
func (o *overlay) load(ctx context.Context, f api.Fetcher, logger *slog.Logger) {
	for _, e := range o.regions {
		if err := e.Load(ctx, f); err != nil {
			logger.Warn("Failed to load area", "name", e.Name(), "error", err)
		}
	}
	for _, e := range o.lines {
		if err := e.Load(ctx, f); err != nil {
			logger.Warn("Failed to load crossline", "name", e.Name(), "error", err)
		}
	}
}
