// Package dotreduce implements `dotreduce`: textual deduplication and
// minification of the line-oriented DOT-ish graph text this repository's
// own graph dump/DOT commands emit. It is a simple two-pass line parser,
// not a general DOT grammar: it expects one node line per `id [label]` and
// one edge line per `from -> to [label]`.
package dotreduce

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

type node struct {
	id    int
	label string
}

type edge struct {
	from, to int
	label    string
}

// Reduce reads a DOT-ish node/edge text stream from r, drops nodes with no
// incident edge, collapses duplicate (from, to, label) edges into one edge
// annotated with its occurrence count, renumbers surviving nodes
// sequentially starting at 1, and writes the minimized digraph to w.
func Reduce(r io.Reader, w io.Writer) error {
	nodes, edges, err := parse(r)
	if err != nil {
		return err
	}

	withEdges := make(map[int]bool, len(nodes))
	for _, e := range edges {
		withEdges[e.from] = true
		withEdges[e.to] = true
	}

	survivors := nodes[:0]
	for _, n := range nodes {
		if withEdges[n.id] {
			survivors = append(survivors, n)
		}
	}

	idMapping := make(map[int]int, len(survivors))
	for i, n := range survivors {
		idMapping[n.id] = i + 1
	}

	type edgeKey struct {
		from, to int
		label    string
	}
	counts := make(map[edgeKey]int)
	order := make([]edgeKey, 0)
	for _, e := range edges {
		stripped := strings.SplitN(e.label, "|", 2)[0]
		key := edgeKey{from: e.from, to: e.to, label: stripped}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}

	fmt.Fprintln(w, "digraph { ")
	for _, n := range survivors {
		fmt.Fprintf(w, "%d [label = \"%s\"]\n", idMapping[n.id], n.label)
	}
	for _, key := range order {
		newFrom, newTo := idMapping[key.from], idMapping[key.to]
		fmt.Fprintf(w, "%d -> %d [label = \"%s (%d)\"]\n", newFrom, newTo, key.label, counts[key])
	}
	fmt.Fprintln(w, "}")

	return nil
}

func parse(r io.Reader) ([]node, []edge, error) {
	var nodes []node
	var edges []edge

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "->"):
			e, ok, err := parseEdgeLine(line)
			if err != nil {
				return nil, nil, err
			}
			if ok {
				edges = append(edges, e)
			}
		case strings.Contains(line, "["):
			n, ok, err := parseNodeLine(line)
			if err != nil {
				return nil, nil, err
			}
			if ok {
				nodes = append(nodes, n)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan dot input: %w", err)
	}

	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })
	return nodes, edges, nil
}

func parseEdgeLine(line string) (edge, bool, error) {
	parts := strings.SplitN(line, "->", 2)
	if len(parts) != 2 {
		return edge{}, false, nil
	}
	from, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return edge{}, false, nil
	}
	rest := strings.SplitN(parts[1], "[", 2)
	if len(rest) != 2 {
		return edge{}, false, nil
	}
	to, err := strconv.Atoi(strings.TrimSpace(rest[0]))
	if err != nil {
		return edge{}, false, nil
	}
	label := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest[1]), "]"))
	return edge{from: from, to: to, label: label}, true, nil
}

func parseNodeLine(line string) (node, bool, error) {
	parts := strings.SplitN(line, "[", 2)
	if len(parts) != 2 {
		return node{}, false, nil
	}
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return node{}, false, nil
	}
	label := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[1]), "]"))
	return node{id: id, label: label}, true, nil
}
