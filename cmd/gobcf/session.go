package main

import (
	"context"
	"fmt"
	"os"

	"github.com/philipparndt/gobcf/internal/history"
	"github.com/philipparndt/gobcf/internal/host/memory"
	"github.com/philipparndt/gobcf/internal/logging"
	"github.com/philipparndt/gobcf/internal/viewpoint"
	"github.com/philipparndt/gobcf/internal/zoom"
	"github.com/philipparndt/gobcf/pkg/bcf"
	"github.com/philipparndt/gobcf/pkg/geometry"
)

// stderrNotifier shows user messages on stderr
type stderrNotifier struct{}

func (stderrNotifier) Error(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}

// session wires the scene document to the viewpoint engine
type session struct {
	doc      *memory.Document
	applier  *viewpoint.Applier
	exporter *viewpoint.Exporter
	history  *history.Store
}

func openSession(ctx context.Context) (*session, error) {
	doc, err := memory.Open(scenePath)
	if err != nil {
		return nil, err
	}

	unit, err := cfg.Unit()
	if err != nil {
		return nil, err
	}
	opts := viewpoint.Options{
		AngleThreshold:  cfg.AngleThreshold,
		InvertDirection: cfg.InvertDirection,
		Unit:            unit,
		FieldOfView:     cfg.DefaultFieldOfView,
	}

	frame := func() geometry.Frame {
		return geometry.Frame{Position: doc.ProjectPosition(), Unit: unit}
	}
	applier := viewpoint.NewApplier(doc, zoom.NewScheduler(doc, doc, frame), stderrNotifier{}, opts)
	s := &session{
		doc:      doc,
		applier:  applier,
		exporter: viewpoint.NewExporter(doc, applier.Markup(), opts),
	}

	if cfg.HistoryPath != "" {
		store, err := history.Open(ctx, cfg.HistoryPath)
		if err != nil {
			return nil, err
		}
		s.history = store
	}
	return s, nil
}

func (s *session) apply(ctx context.Context, source string, vp *bcf.Viewpoint) error {
	err := s.applier.Apply(ctx, vp)
	s.record(ctx, history.Import, source, vp, err)
	return err
}

func (s *session) export(ctx context.Context, source string) (*bcf.Viewpoint, error) {
	vp, err := s.exporter.Export()
	if err != nil {
		return nil, err
	}
	s.record(ctx, history.Export, source, vp, nil)
	return vp, nil
}

func (s *session) record(ctx context.Context, direction history.Direction, source string, vp *bcf.Viewpoint, applyErr error) {
	if s.history == nil || vp == nil {
		return
	}
	if _, err := s.history.Record(ctx, direction, source, vp, applyErr); err != nil {
		logging.Logger().Warn("Failed to record history", "error", err)
	}
}

func (s *session) save() error {
	if err := s.doc.Scene().Save(scenePath); err != nil {
		return err
	}
	logging.Logger().Info("Saved scene", "path", scenePath)
	return nil
}

func (s *session) Close() {
	if s.history != nil {
		s.history.Close()
	}
}
