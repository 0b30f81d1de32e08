package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/piatra-institute/morviq/internal/collective"
	"github.com/piatra-institute/morviq/internal/composite"
	"github.com/piatra-institute/morviq/internal/config"
	"github.com/piatra-institute/morviq/internal/control"
	"github.com/piatra-institute/morviq/internal/metrics"
	"github.com/piatra-institute/morviq/internal/monitor"
	"github.com/piatra-institute/morviq/internal/render"
	"github.com/piatra-institute/morviq/internal/sink"
	"github.com/piatra-institute/morviq/internal/store"
	"github.com/piatra-institute/morviq/internal/volume"
	"github.com/piatra-institute/morviq/pkg/core"
)

// peerDeps bundles one peer goroutine's dependencies. frameSink, ledger,
// metrics, and status are only ever touched by rank 0; every other rank
// carries them unused so the signature doesn't fork by rank.
type peerDeps struct {
	rank       int
	view       *collective.View
	settings   config.Settings
	mode       core.CompositeMode
	log        zerolog.Logger
	frameSink  sink.FrameSink
	ledger     store.Backend
	metrics    *metrics.Manager
	status     *monitor.Service
	state      *control.State
	fieldCache *volume.FieldCache
}

// runPeer executes the fixed per-frame loop for one rank, settings.Frames
// times: broadcast → assign → render → composite → (rank 0) encode →
// barrier.
func runPeer(ctx context.Context, d peerDeps) error {
	log := d.log.With().Int("rank", d.rank).Logger()
	bricks := core.DefaultBricks()

	raymarcher := render.NewRaymarcher(log)
	compositor := composite.New(d.view, d.mode)

	local, err := core.NewFrame(d.settings.Width, d.settings.Height)
	if err != nil {
		return fmt.Errorf("allocating local frame: %w", err)
	}
	output := local
	if d.rank == 0 {
		output, err = core.NewFrame(d.settings.Width, d.settings.Height)
		if err != nil {
			return fmt.Errorf("allocating output frame: %w", err)
		}
	}

	for frameNum := 0; frameNum < d.settings.Frames; frameNum++ {
		snapshot, err := exchangeControlState(d.view, d.rank, d.state)
		if err != nil {
			return fmt.Errorf("broadcasting control state: %w", err)
		}

		assigned := render.AssignBricks(d.rank, d.view.Size(), len(bricks))
		myBricks := make([]core.BrickInfo, 0, len(assigned))
		for _, id := range assigned {
			myBricks = append(myBricks, bricks[id])
		}

		field, err := volume.LoadCached(log, d.fieldCache, d.settings.DataPath, d.settings.Dataset, snapshot.TimeStep, snapshot.BioParams)
		if err != nil {
			log.Warn().Err(err).Msg("morviq: volume load failed, rendering with a procedural fallback")
			field = nil
		}
		raymarcher.SetVolume(field)
		raymarcher.SetParams(core.ParamsForQuality(snapshot.Quality))
		raymarcher.SetBioParams(snapshot.BioParams)

		cam := core.Camera{
			Projection: snapshot.Projection,
			View:       snapshot.View,
			Viewport:   core.Viewport{W: snapshot.Viewport[0], H: snapshot.Viewport[1]},
		}
		if err := raymarcher.SetCamera(cam); err != nil {
			log.Warn().Err(err).Msg("morviq: rejecting broadcast camera, keeping prior camera")
		}

		renderStart := time.Now()
		if err := raymarcher.Render(local, myBricks); err != nil {
			log.Error().Err(err).Int("frame", frameNum).Msg("morviq: render failed, skipping frame")
			d.view.Barrier()
			continue
		}
		renderElapsed := time.Since(renderStart)

		compositeStart := time.Now()
		if err := compositor.Composite(local, output); err != nil {
			return fmt.Errorf("compositing frame %d: %w", frameNum, err)
		}
		compositeElapsed := time.Since(compositeStart)

		if d.rank == 0 {
			d.finishFrame(frameNum, output, snapshot, renderElapsed, compositeElapsed)
		}

		d.view.Barrier()
	}

	return nil
}

// finishFrame runs rank 0's per-frame bookkeeping: writing the composited
// PNG, recording it in the ledger, pushing timing metrics, and updating
// the status monitor. Errors here never abort the run — a failed sink
// write just drops that frame.
func (d peerDeps) finishFrame(frameNum int, output *core.Frame, snapshot core.ControlState, renderElapsed, compositeElapsed time.Duration) {
	total := renderElapsed + compositeElapsed

	if err := d.frameSink.WriteFrame(frameNum, output); err != nil {
		d.log.Error().Err(err).Int("frame", frameNum).Msg("morviq: sink write failed, dropping frame")
		d.status.RecordDrop()
		return
	}
	d.status.RecordFrame(frameNum, total)

	rec := &store.FrameRecord{
		FrameNumber:   frameNum,
		Timestep:      snapshot.TimeStep,
		Dataset:       d.settings.Dataset,
		BioParams:     snapshot.BioParams,
		CompositeMode: d.mode.String(),
		PeerCount:     d.view.Size(),
		Width:         output.Width,
		Height:        output.Height,
		RenderMillis:  total.Milliseconds(),
		OutputPath:    filepath.Join(d.settings.OutputDir, "composited", fmt.Sprintf("frame_%06d.png", frameNum)),
		RenderedAt:    time.Now(),
	}
	if err := d.ledger.RecordFrame(rec); err != nil {
		d.log.Warn().Err(err).Int("frame", frameNum).Msg("morviq: ledger write failed")
	}
	if err := d.metrics.RecordFrameTiming(frameNum, d.view.Size(), renderElapsed, compositeElapsed, total); err != nil {
		d.log.Debug().Err(err).Int("frame", frameNum).Msg("morviq: metrics write failed")
	}
}

// exchangeControlState runs the once-per-frame ControlState broadcast:
// rank 0 snapshots and broadcasts it; every other rank decodes what it
// receives.
func exchangeControlState(view *collective.View, rank int, state *control.State) (core.ControlState, error) {
	if rank == 0 {
		snapshot := state.Get()
		if _, err := view.Broadcast(0, control.EncodeState(snapshot)); err != nil {
			return core.ControlState{}, err
		}
		return snapshot, nil
	}

	payload, err := view.Broadcast(0, nil)
	if err != nil {
		return core.ControlState{}, err
	}
	return control.DecodeState(payload)
}
