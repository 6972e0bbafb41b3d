// Package controller - This file contains the controller for running suppression over batches of frames.
package controller

import (
	"context"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/nvr-ai/go-hnms/hierarchy"
	"github.com/nvr-ai/go-hnms/models/postprocess"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Frame is the raw detector output for a single image or video frame.
type Frame struct {
	ID         int
	Timestamp  time.Time
	Detections []postprocess.Detection
}

// FrameResult holds the detections of one frame that survived suppression.
type FrameResult struct {
	FrameID   int
	Timestamp time.Time
	Results   []postprocess.Result
}

// Controller runs independent suppression passes, one per frame, on a worker pool.
//
// The graph is shared read-only by every worker. Work inside a single frame is never
// split, since each greedy step depends on the previous selection.
type Controller struct {
	Graph   *hierarchy.Graph
	Config  *postprocess.SuppressConfig
	Workers int
	Log     logs.Log
}

// New creates a controller. workers < 1 is treated as 1.
func New(graph *hierarchy.Graph, config *postprocess.SuppressConfig, workers int, log logs.Log) *Controller {
	if workers < 1 {
		workers = 1
	}
	return &Controller{Graph: graph, Config: config, Workers: workers, Log: log}
}

// Run suppresses every frame and returns the results in frame order.
//
// Arguments:
//   - ctx: Cancelling stops frames that have not started yet.
//   - frames: The frames to process.
//
// Returns:
//   - []FrameResult: One entry per input frame, same order.
//   - error: The first suppression error (wrapped with its frame id), or ctx.Err().
func (c *Controller) Run(ctx context.Context, frames []Frame) ([]FrameResult, error) {
	if err := c.Config.Validate(); err != nil {
		return nil, err
	}

	out := make([]FrameResult, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Workers)

	start := time.Now()
	for i := range frames {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := c.SuppressFrame(frames[i])
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.Log != nil {
		c.Log.Infof("Suppressed %v frames in %v", len(frames), time.Since(start))
	}
	return out, nil
}

// SuppressFrame runs a single suppression pass over one frame.
func (c *Controller) SuppressFrame(frame Frame) (FrameResult, error) {
	if err := c.Config.Validate(); err != nil {
		return FrameResult{}, errors.Wrapf(err, "frame %d", frame.ID)
	}
	cfg := *c.Config
	if cfg.Logger == nil {
		cfg.Logger = c.Log
	}
	results, err := postprocess.Suppress(frame.Detections, c.Graph, &cfg)
	if err != nil {
		return FrameResult{}, errors.Wrapf(err, "frame %d", frame.ID)
	}
	if c.Log != nil {
		c.Log.Debugf("Frame %v: kept %v of %v detections", frame.ID, len(results), len(frame.Detections))
	}
	return FrameResult{FrameID: frame.ID, Timestamp: frame.Timestamp, Results: results}, nil
}
