package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/nvr-ai/go-hnms/config"
	"github.com/nvr-ai/go-hnms/controller"
	"github.com/nvr-ai/go-hnms/hierarchy"
	"github.com/nvr-ai/go-hnms/images"
	"github.com/nvr-ai/go-hnms/models"
	"github.com/nvr-ai/go-hnms/models/postprocess"
	"github.com/nvr-ai/go-hnms/util"
	"github.com/pkg/errors"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks failures caused by the command line rather than the data.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	logger, err := logs.NewLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(exitError)
	}
	os.Exit(run(os.Args, os.Stdout, logger))
}

func run(args []string, stdout io.Writer, logger logs.Log) int {
	parser := argparse.NewParser("hnms", "Query a class hierarchy and run hierarchy-aware suppression")
	hierarchyFile := parser.String("H", "hierarchy", &argparse.Options{Help: "Class hierarchy file (parent_id child_id per line)"})
	namesFile := parser.String("n", "names", &argparse.Options{Help: "Class id to name file (id<TAB>name per line)"})
	configFile := parser.String("c", "config", &argparse.Options{Help: "YAML config file"})
	siblings := parser.String("s", "siblings", &argparse.Options{Help: "Find siblings of a class"})
	parent := parser.String("p", "parent", &argparse.Options{Help: "Find parents of a class"})
	ancestors := parser.String("a", "ancestors", &argparse.Options{Help: "Find ancestors of a class"})
	sameAncestors := parser.StringList("m", "same-ancestors", &argparse.Options{Help: "Check if two classes share an ancestor (give twice)"})
	suppress := parser.String("d", "suppress", &argparse.Options{Help: "Run suppression over a JSON detection batch"})

	if err := parser.Parse(args); err != nil {
		logger.Errorf("%v", parser.Usage(err))
		return exitUsage
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			logger.Errorf("%v", err)
			if errors.Is(err, config.ErrInvalidConfig) {
				return exitUsage
			}
			return exitError
		}
		cfg = loaded
	}
	if *hierarchyFile != "" {
		cfg.HierarchyFile = *hierarchyFile
	}
	if *namesFile != "" {
		cfg.NamesFile = *namesFile
	}
	if cfg.HierarchyFile == "" || cfg.NamesFile == "" {
		logger.Errorf("%v", parser.Usage("hierarchy and names files are required (flags or config)"))
		return exitUsage
	}

	graph, err := util.LoadHierarchyFile(cfg.HierarchyFile)
	if err != nil {
		logger.Errorf("%v", err)
		return exitError
	}
	names, err := util.LoadClassNamesFile(cfg.NamesFile)
	if err != nil {
		logger.Errorf("%v", err)
		return exitError
	}
	logger.Debugf("Loaded %v classes in hierarchy, %v names", graph.Len(), names.Len())

	q := &query{graph: graph, names: names, out: stdout}
	switch {
	case *siblings != "":
		err = q.siblings(*siblings)
	case *parent != "":
		err = q.parents(*parent)
	case *ancestors != "":
		err = q.ancestors(*ancestors)
	case len(*sameAncestors) > 0:
		err = q.sameAncestors(*sameAncestors)
	case *suppress != "":
		err = q.suppress(*suppress, cfg, logger)
	default:
		logger.Errorf("%v", parser.Usage("one of --siblings, --parent, --ancestors, --same-ancestors or --suppress is required"))
		return exitUsage
	}

	if err != nil {
		logger.Errorf("%v", err)
		var ue usageError
		if errors.As(err, &ue) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

type query struct {
	graph *hierarchy.Graph
	names *models.ClassNames
	out   io.Writer
}

func (q *query) resolve(name string) (hierarchy.ClassID, error) {
	id, err := q.names.ID(name)
	if err != nil {
		return "", usageError{err}
	}
	return id, nil
}

func (q *query) printList(what, name string, ids []hierarchy.ClassID) {
	resolved := q.names.Names(ids)
	if len(resolved) == 0 {
		fmt.Fprintf(q.out, "No %s found for %s\n", what, name)
		return
	}
	fmt.Fprintf(q.out, "%s of %s: %s\n", strings.ToUpper(what[:1])+what[1:], name, strings.Join(resolved, ", "))
}

func (q *query) siblings(name string) error {
	id, err := q.resolve(name)
	if err != nil {
		return err
	}
	q.printList("siblings", name, q.graph.Siblings(id))
	return nil
}

func (q *query) parents(name string) error {
	id, err := q.resolve(name)
	if err != nil {
		return err
	}
	q.printList("parents", name, q.graph.Parents(id))
	return nil
}

func (q *query) ancestors(name string) error {
	id, err := q.resolve(name)
	if err != nil {
		return err
	}
	q.printList("ancestors", name, q.graph.Ancestors(id))
	return nil
}

func (q *query) sameAncestors(classNames []string) error {
	if len(classNames) != 2 {
		return usageError{errors.Errorf("--same-ancestors needs exactly two classes, got %d", len(classNames))}
	}
	a, err := q.resolve(classNames[0])
	if err != nil {
		return err
	}
	b, err := q.resolve(classNames[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(q.out, "%s and %s share an ancestor: %v\n", classNames[0], classNames[1], q.graph.ShareCommonAncestor(a, b))
	return nil
}

type batchDetection struct {
	Box   [4]float32 `json:"box"`
	Score float32    `json:"score"`
	Class string     `json:"class"`
}

type batchFrame struct {
	ID         int              `json:"id"`
	Detections []batchDetection `json:"detections"`
}

// batchFile is the JSON layout read by --suppress. Classes are display names.
// A top-level "detections" list is shorthand for a single frame with id 0.
type batchFile struct {
	Frames     []batchFrame     `json:"frames"`
	Detections []batchDetection `json:"detections"`
}

func (b batchFile) frames() ([]batchFrame, error) {
	switch {
	case b.Frames != nil && b.Detections != nil:
		return nil, errors.New(`batch has both "frames" and "detections"`)
	case b.Detections != nil:
		return []batchFrame{{Detections: b.Detections}}, nil
	case len(b.Frames) == 0:
		return nil, errors.New(`batch has no "frames" or "detections"`)
	}
	return b.Frames, nil
}

func (q *query) suppress(path string, cfg config.Config, logger logs.Log) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read detection batch")
	}
	var batch batchFile
	if err := json.Unmarshal(data, &batch); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}

	batchFrames, err := batch.frames()
	if err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}

	frames := make([]controller.Frame, len(batchFrames))
	for i, f := range batchFrames {
		frames[i].ID = f.ID
		for _, d := range f.Detections {
			id, err := q.resolve(d.Class)
			if err != nil {
				return err
			}
			frames[i].Detections = append(frames[i].Detections, postprocess.Detection{
				Box:   images.Rect{X1: d.Box[0], Y1: d.Box[1], X2: d.Box[2], Y2: d.Box[3]},
				Score: d.Score,
				Class: id,
			})
		}
	}

	sc, err := cfg.SuppressConfig()
	if err != nil {
		return err
	}
	results, err := controller.New(q.graph, sc, cfg.Workers, logger).Run(context.Background(), frames)
	if err != nil {
		return err
	}

	for _, fr := range results {
		fmt.Fprintf(q.out, "Frame %d: kept %d detections\n", fr.FrameID, len(fr.Results))
		for _, r := range fr.Results {
			name, err := q.names.Name(r.Class)
			if err != nil {
				name = string(r.Class)
			}
			fmt.Fprintf(q.out, "  %s %.3f %s\n", name, r.Score, r.Box)
		}
	}
	return nil
}
