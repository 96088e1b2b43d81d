package generator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// WriteDataset serializes the dataset as N-Triples into graph.nt under the
// provided directory. Statements come out in generation order followed by
// label statements in sorted order, so identical datasets produce identical
// files.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, "graph.nt")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := EncodeNTriples(w, dataset); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return w.Flush()
}

// EncodeNTriples writes the dataset in N-Triples form.
func EncodeNTriples(w io.Writer, dataset Dataset) error {
	for _, t := range dataset.Triples {
		if _, err := fmt.Fprintf(w, "<%s> <%s> <%s> .\n", t.S, t.P, t.O); err != nil {
			return err
		}
	}

	entities := make([]string, 0, len(dataset.Labels))
	for iri := range dataset.Labels {
		entities = append(entities, iri)
	}
	sort.Strings(entities)
	for _, iri := range entities {
		// %q escaping matches N-Triples string literal rules for the
		// characters these labels contain.
		if _, err := fmt.Fprintf(w, "<%s> <%s> %q .\n", iri, LabelPred, dataset.Labels[iri]); err != nil {
			return err
		}
	}
	return nil
}
