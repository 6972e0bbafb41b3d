package util

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/nvr-ai/go-hnms/hierarchy"
	"github.com/nvr-ai/go-hnms/models"
	"github.com/pkg/errors"
)

// ParseHierarchy reads one whitespace separated "parent_id child_id" edge per line.
//
// Blank lines and lines starting with '#' are skipped.
//
// Arguments:
// - r: Source of the edge list.
//
// Returns:
// - []hierarchy.Edge: The edges in file order.
// - error: A malformed line, with its 1-based line number.
func ParseHierarchy(r io.Reader) ([]hierarchy.Edge, error) {
	var edges []hierarchy.Edge
	err := scanLines(r, func(lineNo int, line string) error {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return errors.Errorf("line %d: expected \"parent child\", got %d fields", lineNo, len(fields))
		}
		edges = append(edges, hierarchy.Edge{
			Parent: hierarchy.ClassID(fields[0]),
			Child:  hierarchy.ClassID(fields[1]),
		})
		return nil
	})
	return edges, err
}

// LoadHierarchyFile parses an edge file and builds the class graph from it.
func LoadHierarchyFile(path string) (*hierarchy.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open hierarchy file")
	}
	defer f.Close()

	edges, err := ParseHierarchy(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	g, err := hierarchy.NewGraphFromEdges(edges)
	if err != nil {
		return nil, errors.Wrapf(err, "build hierarchy from %s", path)
	}
	return g, nil
}

// ParseClassNames reads one "id<TAB>name" pair per line.
//
// Names may contain spaces, so only the first tab separates the fields.
//
// Arguments:
// - r: Source of the table.
//
// Returns:
// - *models.ClassNames: The bidirectional table.
// - error: A malformed line or a duplicate id/name, with its 1-based line number.
func ParseClassNames(r io.Reader) (*models.ClassNames, error) {
	names, err := models.NewClassNames()
	if err != nil {
		return nil, err
	}
	err = scanLines(r, func(lineNo int, line string) error {
		id, name, ok := strings.Cut(line, "\t")
		if !ok {
			return errors.Errorf("line %d: expected \"id<TAB>name\"", lineNo)
		}
		if err := names.Add(hierarchy.ClassID(strings.TrimSpace(id)), strings.TrimSpace(name)); err != nil {
			return errors.Wrapf(err, "line %d", lineNo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// LoadClassNamesFile reads an id<TAB>name file.
func LoadClassNamesFile(path string) (*models.ClassNames, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open class names file")
	}
	defer f.Close()

	names, err := ParseClassNames(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return names, nil
}

func scanLines(r io.Reader, fn func(lineNo int, line string) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
