package main

import (
	"io"
	"os"

	"github.com/ar90n/kdtree"
	"github.com/ar90n/kdtree/metric"
	"github.com/cockroachdb/errors"
)

type index = kdtree.Tree[point, string]

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(path)
}

func createOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

func buildIndex(points []point, dims []string, cfg Config) (*index, error) {
	base, _ := metric.ByName(cfg.Metric)
	return kdtree.Build[point, string](points, metric.OnKeys(base, dims...), kdtree.MapAccessor[float64]{}, dims)
}

func loadIndex(path string, cfg Config) (*index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// The dimension keys are only known once the snapshot is decoded.
	base, _ := metric.ByName(cfg.Metric)
	var distance kdtree.Metric[point]
	lazy := func(lhs, rhs point) float64 {
		return distance(lhs, rhs)
	}

	var tree *index
	switch cfg.Format {
	case "gob":
		tree, err = kdtree.Load[point, string](file, lazy, kdtree.MapAccessor[float64]{})
	case "json":
		tree, err = kdtree.LoadJSON[point, string](file, lazy, kdtree.MapAccessor[float64]{})
	case "msgpack":
		tree, err = kdtree.LoadMsgpack[point, string](file, lazy, kdtree.MapAccessor[float64]{})
	case "zstd":
		tree, err = kdtree.LoadCompressed[point, string](file, lazy, kdtree.MapAccessor[float64]{})
	default:
		return nil, errors.Newf("unknown format: %s", cfg.Format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load index %s", path)
	}

	distance = metric.OnKeys(base, tree.Dimensions()...)
	return tree, nil
}

func saveIndex(tree *index, path string, cfg Config) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	switch cfg.Format {
	case "gob":
		err = tree.Save(file)
	case "json":
		err = tree.SaveJSON(file)
	case "msgpack":
		err = tree.SaveMsgpack(file)
	case "zstd":
		err = tree.SaveCompressed(file)
	default:
		err = errors.Newf("unknown format: %s", cfg.Format)
	}
	if err != nil {
		return errors.Wrapf(err, "save index %s", path)
	}
	return file.Close()
}

// collectPoints returns the stored points in pre-order.
func collectPoints(tree *index) []point {
	points := make([]point, 0, tree.Len())
	tree.Walk(func(node *kdtree.Node[point], _ int) bool {
		points = append(points, node.Data())
		return true
	})
	return points
}
