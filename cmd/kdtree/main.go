package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ar90n/kdtree/graph"
	"github.com/ar90n/kdtree/metric"
	"github.com/ar90n/kdtree/pipeline"
	"github.com/ar90n/kdtree/plot"
	"github.com/urfave/cli/v2"
)

type env struct {
	cfg    Config
	logger *Logger
}

func setup(c *cli.Context) (env, error) {
	cfg, err := configFromContext(c)
	if err != nil {
		return env{}, err
	}
	logger, err := NewLogger(c.App.ErrWriter, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return env{}, err
	}
	return env{cfg: cfg, logger: logger.WithCommand(c.Command.Name)}, nil
}

func readInput(c *cli.Context) ([]string, []point, error) {
	r, err := openInput(c.String("input"), c.App.Reader)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()
	return readPoints(r)
}

// readIndexedInput reads points that must carry every dimension of tree.
func readIndexedInput(c *cli.Context, tree *index) ([]point, error) {
	header, points, err := readInput(c)
	if err != nil {
		return nil, err
	}
	if _, err := resolveDimensions(header, tree.Dimensions()); err != nil {
		return nil, err
	}
	return points, nil
}

func buildAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	e.logger.Info("reading points", "input", c.String("input"))
	header, points, err := readInput(c)
	if err != nil {
		return err
	}
	dims, err := resolveDimensions(header, e.cfg.Dimensions)
	if err != nil {
		return err
	}

	e.logger.Info("building index", "points", len(points), "dimensions", dims)
	tree, err := buildIndex(points, dims, e.cfg)
	if err != nil {
		return err
	}

	output := c.String("output")
	if err := saveIndex(tree, output, e.cfg); err != nil {
		return err
	}
	e.logger.WithPath(output).Info("saved index", "height", tree.Height(), "format", e.cfg.Format)
	return nil
}

func queryAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	tree, err := loadIndex(c.String("index"), e.cfg)
	if err != nil {
		return err
	}
	queries, err := readIndexedInput(c, tree)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	results := tree.NearestStream(ctx, pipeline.FromSlice(ctx, queries), int(e.cfg.Neighbors), e.cfg.Radius)
	if limit := c.Uint("limit"); 0 < limit {
		results = pipeline.Take(ctx, limit, results)
	}

	out, err := newCandidateWriter(c.App.Writer, tree.Dimensions())
	if err != nil {
		return err
	}
	answered := 0
	for r := range results {
		if r.Err != nil {
			return r.Err
		}
		if err := out.Write(answered, r.Candidates); err != nil {
			return err
		}
		answered++
	}
	e.logger.Debug("answered queries", "queries", answered, "neighbors", e.cfg.Neighbors)
	return out.Flush()
}

func insertAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	path := c.String("index")
	tree, err := loadIndex(path, e.cfg)
	if err != nil {
		return err
	}
	points, err := readIndexedInput(c, tree)
	if err != nil {
		return err
	}

	for _, p := range points {
		tree.Insert(p)
	}
	e.logger.Info("inserted points", "points", len(points), "size", tree.Len())
	warnUnbalanced(e, tree)
	return saveIndex(tree, path, e.cfg)
}

func removeAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	path := c.String("index")
	tree, err := loadIndex(path, e.cfg)
	if err != nil {
		return err
	}
	points, err := readIndexedInput(c, tree)
	if err != nil {
		return err
	}

	removed := 0
	for _, p := range points {
		if tree.Root() == nil {
			break
		}
		if !tree.Contains(p) {
			e.logger.Debug("point not found", "point", p)
			continue
		}
		if _, err := tree.Remove(p); err != nil {
			return err
		}
		removed++
	}
	e.logger.Info("removed points", "removed", removed, "size", tree.Len())
	warnUnbalanced(e, tree)
	return saveIndex(tree, path, e.cfg)
}

func warnUnbalanced(e env, tree *index) bool {
	factor := tree.BalanceFactor()
	if factor <= e.cfg.RebuildThreshold {
		return false
	}
	e.logger.Warn("index is unbalanced, rebuild recommended", "balance_factor", factor, "threshold", e.cfg.RebuildThreshold)
	return true
}

func statsAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	path := c.String("index")
	tree, err := loadIndex(path, e.cfg)
	if err != nil {
		return err
	}
	if err := tree.Check(); err != nil {
		return err
	}

	unbalanced := warnUnbalanced(e, tree)
	if unbalanced && c.Bool("rebuild") {
		tree, err = buildIndex(collectPoints(tree), tree.Dimensions(), e.cfg)
		if err != nil {
			return err
		}
		if err := saveIndex(tree, path, e.cfg); err != nil {
			return err
		}
		e.logger.WithPath(path).Info("rebuilt index", "balance_factor", tree.BalanceFactor())
	}

	_, err = fmt.Fprintf(c.App.Writer, "points\t%d\nheight\t%d\nbalance_factor\t%g\ndimensions\t%s\n",
		tree.Len(), tree.Height(), tree.BalanceFactor(), strings.Join(tree.Dimensions(), ","))
	return err
}

func dotAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	tree, err := loadIndex(c.String("index"), e.cfg)
	if err != nil {
		return err
	}

	w, err := createOutput(c.String("output"), c.App.Writer)
	if err != nil {
		return err
	}
	defer w.Close()

	dims := tree.Dimensions()
	label := func(p point) string {
		values := make([]string, len(dims))
		for i, dim := range dims {
			values[i] = formatValue(p[dim])
		}
		return "(" + strings.Join(values, ", ") + ")"
	}
	if err := graph.WriteTreeDOT(w, tree, label); err != nil {
		return err
	}
	return w.Close()
}

func plotAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	tree, err := loadIndex(c.String("index"), e.cfg)
	if err != nil {
		return err
	}

	opts := plot.DefaultOptions()
	opts.Width = c.Int("width")
	opts.Height = c.Int("height")

	output := c.String("output")
	w, err := createOutput(output, c.App.Writer)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := plot.RenderPartition(w, tree, opts); err != nil {
		return err
	}
	e.logger.WithPath(output).Debug("rendered partition", "points", tree.Len())
	return w.Close()
}

func knnGraphAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	header, points, err := readInput(c)
	if err != nil {
		return err
	}
	dims, err := resolveDimensions(header, e.cfg.Dimensions)
	if err != nil {
		return err
	}

	features := make([][]float64, len(points))
	for i, p := range points {
		features[i] = make([]float64, len(dims))
		for j, dim := range dims {
			features[i][j] = p[dim]
		}
	}

	base, _ := metric.ByName(e.cfg.Metric)
	e.logger.Info("building knn graph", "points", len(points), "k", e.cfg.Neighbors, "workers", e.cfg.Workers)
	g, err := graph.NewKnnGraphBuilder().
		SetK(e.cfg.Neighbors).
		SetRadius(e.cfg.Radius).
		SetMaxGoroutines(e.cfg.Workers).
		Build(c.Context, features, base)
	if err != nil {
		return err
	}
	if c.Bool("undirected") {
		g = graph.ConvertToUndirected(g)
	}

	w, err := createOutput(c.String("output"), c.App.Writer)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := graph.WriteDOT(w, g); err != nil {
		return err
	}
	return w.Close()
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "yaml config file",
		},
		&cli.StringFlag{
			Name:  "metric",
			Value: "euclidean",
			Usage: "distance metric (euclidean, sq-euclidean, manhattan, haversine)",
		},
		&cli.StringFlag{
			Name:  "format",
			Value: "gob",
			Usage: "index file format (gob, json, msgpack, zstd)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "log level",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Value: "text",
			Usage: "log format (text, json)",
		},
		&cli.Float64Flag{
			Name:  "rebuild-threshold",
			Value: 2,
			Usage: "balance factor above which a rebuild is recommended",
		},
	}
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "input",
		Value: "-",
		Usage: "csv file with a header row, - for stdin",
	}
}

func indexFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "index",
		Value: "index.bin",
		Usage: "index file",
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.UintFlag{
			Name:  "neighbors",
			Value: 1,
			Usage: "number of neighbors",
		},
		&cli.Float64Flag{
			Name:  "radius",
			Usage: "only report neighbors closer than radius, 0 for unbounded",
		},
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var ret []cli.Flag
	for _, group := range groups {
		ret = append(ret, group...)
	}
	return ret
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "kdtree",
		HelpName: "kdtree",
		Usage:    "build and query k-d tree indexes over csv points",
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "build index",
				UsageText: "kdtree build [command options]",
				Action:    buildAction,
				Flags: flags(commonFlags(), []cli.Flag{
					inputFlag(),
					&cli.StringSliceFlag{
						Name:  "dims",
						Usage: "columns used as dimensions, all columns when omitted",
					},
					&cli.StringFlag{
						Name:  "output",
						Value: "index.bin",
						Usage: "output file",
					},
				}),
			},
			{
				Name:      "query",
				Usage:     "search nearest neighbors",
				UsageText: "kdtree query [command options]",
				Action:    queryAction,
				Flags: flags(commonFlags(), searchFlags(), []cli.Flag{
					inputFlag(),
					indexFlag(),
					&cli.UintFlag{
						Name:  "limit",
						Usage: "answer at most this many queries, 0 for all",
					},
				}),
			},
			{
				Name:      "insert",
				Usage:     "insert points into index",
				UsageText: "kdtree insert [command options]",
				Action:    insertAction,
				Flags:     flags(commonFlags(), []cli.Flag{inputFlag(), indexFlag()}),
			},
			{
				Name:      "remove",
				Usage:     "remove points from index",
				UsageText: "kdtree remove [command options]",
				Action:    removeAction,
				Flags:     flags(commonFlags(), []cli.Flag{inputFlag(), indexFlag()}),
			},
			{
				Name:      "stats",
				Usage:     "show index statistics",
				UsageText: "kdtree stats [command options]",
				Action:    statsAction,
				Flags: flags(commonFlags(), []cli.Flag{
					indexFlag(),
					&cli.BoolFlag{
						Name:  "rebuild",
						Usage: "rebuild the index when it is unbalanced",
					},
				}),
			},
			{
				Name:      "dot",
				Usage:     "render index structure as graphviz dot",
				UsageText: "kdtree dot [command options]",
				Action:    dotAction,
				Flags: flags(commonFlags(), []cli.Flag{
					indexFlag(),
					&cli.StringFlag{
						Name:  "output",
						Value: "-",
						Usage: "output file, - for stdout",
					},
				}),
			},
			{
				Name:      "plot",
				Usage:     "render the cells of a two dimensional index as png",
				UsageText: "kdtree plot [command options]",
				Action:    plotAction,
				Flags: flags(commonFlags(), []cli.Flag{
					indexFlag(),
					&cli.IntFlag{
						Name:  "width",
						Value: 800,
						Usage: "image width",
					},
					&cli.IntFlag{
						Name:  "height",
						Value: 800,
						Usage: "image height",
					},
					&cli.StringFlag{
						Name:  "output",
						Value: "partition.png",
						Usage: "output file, - for stdout",
					},
				}),
			},
			{
				Name:      "knn-graph",
				Usage:     "render k nearest neighbor graph of points as graphviz dot",
				UsageText: "kdtree knn-graph [command options]",
				Action:    knnGraphAction,
				Flags: flags(commonFlags(), searchFlags(), []cli.Flag{
					inputFlag(),
					&cli.StringSliceFlag{
						Name:  "dims",
						Usage: "columns used as dimensions, all columns when omitted",
					},
					&cli.UintFlag{
						Name:  "workers",
						Usage: "number of goroutines, 0 for one per cpu",
					},
					&cli.BoolFlag{
						Name:  "undirected",
						Usage: "add reverse edges",
					},
					&cli.StringFlag{
						Name:  "output",
						Value: "-",
						Usage: "output file, - for stdout",
					},
				}),
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "kdtree: %v\n", err)
		os.Exit(1)
	}
}
