package main

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ar90n/kdtree"
	"github.com/cockroachdb/errors"
)

type point = map[string]float64

// readPoints parses a CSV stream whose first row names the columns. Every
// cell must be a number.
func readPoints(r io.Reader) ([]string, []point, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "read header")
	}

	points := make([]point, 0, 1024)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "read line %d", line)
		}

		p := make(point, len(header))
		for i, column := range header {
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "line %d column %s", line, column)
			}
			p[column] = v
		}
		points = append(points, p)
	}

	return header, points, nil
}

// resolveDimensions checks that every configured dimension is a column of
// the input. No configured dimensions selects all columns.
func resolveDimensions(header []string, dims []string) ([]string, error) {
	if len(dims) == 0 {
		return header, nil
	}

	columns := make(map[string]struct{}, len(header))
	for _, column := range header {
		columns[column] = struct{}{}
	}
	for _, dim := range dims {
		if _, ok := columns[dim]; !ok {
			return nil, errors.Newf("dimension %s is not a column of the input", dim)
		}
	}
	return dims, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type candidateWriter struct {
	w    *csv.Writer
	dims []string
}

func newCandidateWriter(w io.Writer, dims []string) (*candidateWriter, error) {
	cw := &candidateWriter{w: csv.NewWriter(w), dims: dims}
	header := append([]string{"query", "rank", "distance"}, dims...)
	if err := cw.w.Write(header); err != nil {
		return nil, err
	}
	return cw, nil
}

func (cw *candidateWriter) Write(query int, candidates []kdtree.Candidate[point]) error {
	for rank, c := range candidates {
		record := make([]string, 0, 3+len(cw.dims))
		record = append(record, strconv.Itoa(query), strconv.Itoa(rank), formatValue(c.Distance))
		for _, dim := range cw.dims {
			record = append(record, formatValue(c.Item[dim]))
		}
		if err := cw.w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (cw *candidateWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}
