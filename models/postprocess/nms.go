// Package postprocess - provides hierarchy-aware Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"
	"time"

	flatbush "github.com/bmharper/flatbush-go"
	"github.com/chewxy/math32"
	"github.com/cyclopcam/logs"
	"github.com/nvr-ai/go-hnms/hierarchy"
	"github.com/nvr-ai/go-hnms/images"
	"github.com/pkg/errors"
)

// ErrInvalidInput is returned for malformed detection batches and thresholds.
var ErrInvalidInput = errors.New("invalid input")

// SuppressConfig defines parameters for hierarchy-aware suppression.
type SuppressConfig struct {
	ScoreThreshold float32 // Detections with score <= this are dropped before suppression.
	IoUThreshold   float32 // Overlap above which a candidate is suppressed.
	Gate           Gate    // Retention policy for overlapping pairs. Nil means AncestorGate.
	Logger         logs.Log
}

// Validate checks that the config is non-nil and both thresholds lie in [0, 1].
func (c *SuppressConfig) Validate() error {
	if c == nil {
		return errors.Wrap(ErrInvalidInput, "nil suppress config")
	}
	if !inUnitRange(c.ScoreThreshold) {
		return errors.Wrapf(ErrInvalidInput, "score threshold %v outside [0,1]", c.ScoreThreshold)
	}
	if !inUnitRange(c.IoUThreshold) {
		return errors.Wrapf(ErrInvalidInput, "iou threshold %v outside [0,1]", c.IoUThreshold)
	}
	return nil
}

func inUnitRange(v float32) bool {
	return v >= 0 && v <= 1
}

// SuppressArrays is Suppress over parallel box, score and class slices.
//
// Returns:
//   - ErrInvalidInput when the three slices differ in length.
func SuppressArrays(
	boxes []images.Rect,
	scores []float32,
	classes []hierarchy.ClassID,
	graph *hierarchy.Graph,
	config *SuppressConfig,
) ([]Result, error) {
	if len(boxes) != len(scores) || len(boxes) != len(classes) {
		return nil, errors.Wrapf(ErrInvalidInput,
			"mismatched lengths: %d boxes, %d scores, %d classes", len(boxes), len(scores), len(classes))
	}
	detections := make([]Detection, len(boxes))
	for i := range boxes {
		detections[i] = Detection{Box: boxes[i], Score: scores[i], Class: classes[i]}
	}
	return Suppress(detections, graph, config)
}

// Suppress filters overlapping detections with greedy Non-Maximum Suppression, gated by
// the class hierarchy.
//
// Detections scoring at or below the score threshold are dropped. The rest form a pool
// from which the highest scoring detection is repeatedly taken and emitted. Each
// remaining detection whose IoU with it exceeds the IoU threshold is removed from the
// pool unless the gate retains it; with the default AncestorGate that happens when the
// emitted detection's class is an ancestor of the candidate's class. Classes missing
// from the graph have no ancestors.
//
// Arguments:
//   - detections: Unsorted detections. The slice is not modified.
//   - graph: The class hierarchy. Nil behaves like an empty hierarchy.
//   - config: Thresholds, gate policy and optional logger. Required.
//
// Returns:
//   - Results ordered by descending score. Equal scores come out in input order.
//   - ErrInvalidInput for a nil config, out-of-range thresholds or malformed boxes.
func Suppress(detections []Detection, graph *hierarchy.Graph, config *SuppressConfig) ([]Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	for i, d := range detections {
		if !d.Box.Valid() {
			return nil, errors.Wrapf(ErrInvalidInput, "detection %d: malformed box %s", i, d.Box)
		}
		if math32.IsNaN(d.Score) {
			return nil, errors.Wrapf(ErrInvalidInput, "detection %d: score is NaN", i)
		}
	}

	start := time.Now()
	defer func() {
		SuppressDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
	}()

	gate := config.Gate
	if gate == nil {
		gate = AncestorGate
	}
	if graph == nil {
		graph = hierarchy.NewGraph()
	}

	// Pool of surviving input indices, ascending by score so the maximum sits at the end.
	// Among equal scores the lowest input index sorts last and is taken first.
	pool := make([]int, 0, len(detections))
	for i, d := range detections {
		if d.Score > config.ScoreThreshold {
			pool = append(pool, i)
		}
	}
	if len(pool) == 0 {
		return []Result{}, nil
	}
	sort.Slice(pool, func(a, b int) bool {
		sa, sb := detections[pool[a]].Score, detections[pool[b]].Score
		if sa != sb {
			return sa < sb
		}
		return pool[a] > pool[b]
	})

	warnUnknownClasses(detections, pool, graph, config.Logger)
	DetectionsConsidered.Add(float64(len(pool)))

	// Spatial index over the pool, so each kept box only examines boxes it touches.
	fb := flatbush.NewFlatbush[float32]()
	fb.Reserve(len(pool))
	for _, idx := range pool {
		fb.Add(detections[idx].Box.SearchExtent())
	}
	fb.Finish()

	removed := make([]bool, len(pool))
	results := make([]Result, 0, len(pool))
	nSuppressed, nRetained := 0, 0

	for top := len(pool) - 1; top >= 0; top-- {
		if removed[top] {
			continue
		}
		removed[top] = true
		kept := detections[pool[top]]
		results = append(results, Result{Box: kept.Box, Score: kept.Score, Class: kept.Class, Index: pool[top]})

		for _, slot := range fb.Search(kept.Box.SearchExtent()) {
			if removed[slot] {
				continue
			}
			cand := detections[pool[slot]]
			if images.CalculateIoU(kept.Box, cand.Box) <= config.IoUThreshold {
				continue
			}
			if gate(graph, kept.Class, cand.Class) {
				nRetained++
				continue
			}
			removed[slot] = true
			nSuppressed++
		}
	}

	DetectionsKept.Add(float64(len(results)))
	DetectionsSuppressed.Add(float64(nSuppressed))
	GateRetentions.Add(float64(nRetained))

	return results, nil
}

// warnUnknownClasses logs each distinct class in the pool that the graph does not know.
func warnUnknownClasses(detections []Detection, pool []int, graph *hierarchy.Graph, log logs.Log) {
	var seen map[hierarchy.ClassID]bool
	for _, idx := range pool {
		class := detections[idx].Class
		if graph.Has(class) || seen[class] {
			continue
		}
		if seen == nil {
			seen = make(map[hierarchy.ClassID]bool)
		}
		seen[class] = true
		UnknownClasses.Inc()
		if log != nil {
			log.Warnf("UnknownClassWarning: class %q is not in the hierarchy, suppressing it without hierarchy gating", class)
		}
	}
}
