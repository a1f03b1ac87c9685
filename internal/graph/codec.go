package graph

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// dumpBufferBytes is the buffered-writer size used for both the graph data
// and metadata files, matching the 64 MiB buffer the original build used for
// its bincode writer.
const dumpBufferBytes = 1 << 26

// dumpFormatVersion is a one-byte marker prefixed to both dump files ahead
// of the gob stream, so a future format change can be detected on load
// instead of failing deep inside gob decoding.
const dumpFormatVersion = 1

// gobEdge is the on-the-wire edge shape (§6): Src/Dst are persisted as
// uint32 node ids rather than Edge's in-memory int, matching the documented
// dump format exactly.
type gobEdge struct {
	Src, Dst uint32
	TxID     string
}

// gobData is the data file's on-the-wire shape (§6).
type gobData struct {
	NodeLabels []string
	Edges      []gobEdge
}

// Dump writes g's address->node-id map to metaPath and its node labels plus
// edge list to dataPath, each prefixed with a one-byte format version and
// gob-encoded from there (§6, §11: not byte-compatible with the original's
// bincode format, a documented alternative).
func Dump(g *Graph, metaPath, dataPath string) error {
	meta := make(map[string]uint32, len(g.Addrs))
	for addr, id := range g.index {
		meta[addr] = uint32(id)
	}
	if err := writeVersionedGob(metaPath, meta); err != nil {
		return fmt.Errorf("write graph metadata: %w", err)
	}

	edges := make([]gobEdge, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = gobEdge{Src: uint32(e.From), Dst: uint32(e.To), TxID: e.TxID}
	}
	if err := writeVersionedGob(dataPath, gobData{NodeLabels: g.Addrs, Edges: edges}); err != nil {
		return fmt.Errorf("write graph data: %w", err)
	}
	return nil
}

// Load reads back a graph previously written by Dump. The metadata file's
// address->id map is not needed to reconstruct the graph (NodeLabels
// already carries node order) - it is read back only to validate it agrees
// with the data file, catching dump corruption early.
func Load(metaPath, dataPath string) (*Graph, error) {
	var meta map[string]uint32
	if err := readVersionedGob(metaPath, &meta); err != nil {
		return nil, fmt.Errorf("load graph metadata: %w", err)
	}

	var gd gobData
	if err := readVersionedGob(dataPath, &gd); err != nil {
		return nil, fmt.Errorf("load graph data: %w", err)
	}
	if len(meta) != len(gd.NodeLabels) {
		return nil, fmt.Errorf("graph dump mismatch: metadata has %d addresses, data has %d node labels", len(meta), len(gd.NodeLabels))
	}

	edges := make([]Edge, len(gd.Edges))
	for i, e := range gd.Edges {
		edges[i] = Edge{From: int(e.Src), To: int(e.Dst), TxID: e.TxID}
	}

	g := &Graph{Addrs: gd.NodeLabels, Edges: edges}
	g.rebuildIndex()
	for addr, id := range meta {
		if want, ok := g.index[addr]; !ok || want != int(id) {
			return nil, fmt.Errorf("graph dump mismatch: metadata id for %q disagrees with node labels", addr)
		}
	}
	return g, nil
}

func writeVersionedGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, dumpBufferBytes)
	if _, err := w.Write([]byte{dumpFormatVersion}); err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return err
	}
	return w.Flush()
}

func readVersionedGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, dumpBufferBytes)
	version, err := r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty dump file")
		}
		return err
	}
	if version != dumpFormatVersion {
		return fmt.Errorf("unsupported dump format version %d", version)
	}
	return gob.NewDecoder(r).Decode(v)
}
