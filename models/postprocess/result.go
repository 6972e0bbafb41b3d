// Package postprocess - Postprocessing utilities for detector output.
package postprocess

import (
	"fmt"

	"github.com/nvr-ai/go-hnms/hierarchy"
	"github.com/nvr-ai/go-hnms/images"
)

// Detection is a single raw detector output.
type Detection struct {
	// The bounding box in absolute pixel coordinates (inclusive corners).
	Box images.Rect
	// The confidence score, in [0, 1].
	Score float32
	// The predicted class.
	Class hierarchy.ClassID
}

// Result is a detection that survived suppression.
type Result struct {
	// The bounding box of the kept detection.
	Box images.Rect
	// The confidence score of the kept detection.
	Score float32
	// The class of the kept detection.
	Class hierarchy.ClassID
	// Index is the position of the detection in the caller's input batch.
	Index int
}

func (r Result) String() string {
	return fmt.Sprintf("%s (confidence %f): %s", r.Class, r.Score, r.Box)
}
