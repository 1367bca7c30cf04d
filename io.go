package kdtree

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// snapshot is the gob form of a tree: nodes in pre-order with the root at
// index 0, children referenced by index and 0 meaning none.
type snapshot[P any, K comparable] struct {
	Dimensions []K
	Nodes      []snapshotNode[P]
}

type snapshotNode[P any] struct {
	Data      P
	Dimension int
	Left      uint
	Right     uint
}

type jsonSnapshot[P any, K comparable] struct {
	Dimensions []K           `json:"dimensions"`
	Root       *NodeGraph[P] `json:"root"`
}

// Save writes the tree in gob encoding.
func (t *Tree[P, K]) Save(w io.Writer) error {
	s := snapshot[P, K]{
		Dimensions: t.dims,
		Nodes:      flatten(t.Serialize()),
	}
	return saveIndex(&s, w)
}

// Load reads a tree written by Save. The dimension keys come from the
// stream.
func Load[P any, K comparable](r io.Reader, metric Metric[P], accessor Accessor[P, K]) (*Tree[P, K], error) {
	s, err := loadIndex[snapshot[P, K]](r)
	if err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return s.restore(metric, accessor)
}

func (s *snapshot[P, K]) restore(metric Metric[P], accessor Accessor[P, K]) (*Tree[P, K], error) {
	graph, err := unflatten(s.Nodes)
	if err != nil {
		return nil, err
	}
	return Restore(graph, metric, accessor, s.Dimensions)
}

// SaveCompressed writes the Save encoding through a zstd stream.
func (t *Tree[P, K]) SaveCompressed(w io.Writer) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return errors.Wrap(err, "create zstd writer")
	}
	if err := t.Save(enc); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func LoadCompressed[P any, K comparable](r io.Reader, metric Metric[P], accessor Accessor[P, K]) (*Tree[P, K], error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "create zstd reader")
	}
	defer dec.Close()

	return Load(dec, metric, accessor)
}

// SaveMsgpack writes the same node arena as Save in msgpack encoding.
func (t *Tree[P, K]) SaveMsgpack(w io.Writer) error {
	s := snapshot[P, K]{
		Dimensions: t.dims,
		Nodes:      flatten(t.Serialize()),
	}
	return msgpack.NewEncoder(w).Encode(&s)
}

func LoadMsgpack[P any, K comparable](r io.Reader, metric Metric[P], accessor Accessor[P, K]) (*Tree[P, K], error) {
	var s snapshot[P, K]
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return s.restore(metric, accessor)
}

// SaveJSON writes the tree as nested {data, dimension, left, right} records.
func (t *Tree[P, K]) SaveJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(jsonSnapshot[P, K]{
		Dimensions: t.dims,
		Root:       t.Serialize(),
	})
}

func LoadJSON[P any, K comparable](r io.Reader, metric Metric[P], accessor Accessor[P, K]) (*Tree[P, K], error) {
	var s jsonSnapshot[P, K]
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return Restore(s.Root, metric, accessor, s.Dimensions)
}

type flattenTask[P any] struct {
	src    *NodeGraph[P]
	parent int
	left   bool
}

func flatten[P any](graph *NodeGraph[P]) []snapshotNode[P] {
	if graph == nil {
		return nil
	}

	nodes := []snapshotNode[P]{}
	queue := []flattenTask[P]{{src: graph, parent: -1}}
	for 0 < len(queue) {
		task := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		idx := uint(len(nodes))
		nodes = append(nodes, snapshotNode[P]{
			Data:      task.src.Data,
			Dimension: task.src.Dimension,
		})
		if 0 <= task.parent {
			if task.left {
				nodes[task.parent].Left = idx
			} else {
				nodes[task.parent].Right = idx
			}
		}

		if task.src.Right != nil {
			queue = append(queue, flattenTask[P]{src: task.src.Right, parent: int(idx)})
		}
		if task.src.Left != nil {
			queue = append(queue, flattenTask[P]{src: task.src.Left, parent: int(idx), left: true})
		}
	}

	return nodes
}

// unflatten rejects child references that do not point forward or that are
// shared, so the result is always a tree.
func unflatten[P any](nodes []snapshotNode[P]) (*NodeGraph[P], error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	graphs := make([]NodeGraph[P], len(nodes))
	linked := make([]bool, len(nodes))
	link := func(parent int, child uint) (*NodeGraph[P], error) {
		if child == 0 {
			return nil, nil
		}
		if child <= uint(parent) || uint(len(nodes)) <= child || linked[child] {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "node %d has bad child reference %d", parent, child)
		}
		linked[child] = true
		return &graphs[child], nil
	}

	for i, node := range nodes {
		graphs[i].Data = node.Data
		graphs[i].Dimension = node.Dimension

		var err error
		if graphs[i].Left, err = link(i, node.Left); err != nil {
			return nil, err
		}
		if graphs[i].Right, err = link(i, node.Right); err != nil {
			return nil, err
		}
	}
	for i := 1; i < len(nodes); i++ {
		if !linked[i] {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "node %d is unreachable", i)
		}
	}

	return &graphs[0], nil
}

func saveIndex[T any](index *T, w io.Writer) error {
	var buffer bytes.Buffer
	enc := gob.NewEncoder(&buffer)
	if err := enc.Encode(index); err != nil {
		return err
	}

	beg := 0
	byteArray := buffer.Bytes()
	for beg < len(byteArray) {
		n, err := w.Write(byteArray[beg:])
		if err != nil {
			return err
		}
		beg += n
	}

	return nil
}

func loadIndex[T any](r io.Reader) (ret T, _ error) {
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&ret); err != nil {
		return ret, err
	}

	return ret, nil
}
