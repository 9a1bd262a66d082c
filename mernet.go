/*
Package mernet computes, for a protein structure, the residue that is
most centrally connected in its interaction graph, and the shortest-path
distance of every other residue to it.

The pipeline parses a PDB file into mers, detects bonded mer pairs by
atomic proximity, derives a symmetric weighted graph from the bond
counts, discards every connected component but the largest, and runs
Dijkstra from every remaining mer to pick the best source. An annotated
copy of the original file, with per-mer distances stored in the
temperature factor column, can then be rendered for any source mer.

All state is built fresh per invocation; nothing in this module is
shared, so the pipeline may be run from a worker goroutine.
*/
package mernet

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/TuftsBCB/mernet/bond"
	"github.com/TuftsBCB/mernet/graph"
	"github.com/TuftsBCB/mernet/pdb"
)

var (
	// ErrNoMers is returned when a file parses cleanly but contains no
	// usable ATOM or HETATM records.
	ErrNoMers = errors.New("no atom records found")

	// ErrNoInteractions is returned when no two mers are bonded, leaving
	// nothing to build a graph from.
	ErrNoInteractions = errors.New("no bonded mer pairs found")
)

// Options controls a processing run. The zero value uses the default
// bond detector and discards warnings.
type Options struct {
	// Detector provides the bonding thresholds. A zero BondDist is
	// replaced by the default (4.5); if the whole Detector is zero, the
	// default centroid pre-filter (10.0) is used as well. Setting
	// CentroidDist alone keeps it: a BondDist with CentroidDist zero (or
	// negative) disables the pre-filter, as in the bond package.
	Detector bond.Detector

	// Warn receives recoverable diagnostics. Nil discards them.
	Warn graph.WarnFunc
}

// Result holds everything computed for one structure. All maps and lists
// are restricted to the largest connected component of the interaction
// graph; Fragmented reports whether that restriction discarded anything.
type Result struct {
	// BestSource is the mer minimizing the sum of shortest-path distances
	// to every other retained mer. Ties go to the smallest key.
	BestSource string

	// Mers maps each retained mer key to its mer.
	Mers map[string]*pdb.Mer

	// Graph is the reduced adjacency map the distances were computed on.
	Graph graph.Adjacency

	// Distances maps each retained mer to its shortest-path distance from
	// BestSource.
	Distances map[string]float64

	// AllDistances holds the full distance map for every retained mer as
	// a source. Best-source selection computes these anyway, so they are
	// kept for on-demand annotation.
	AllDistances map[string]map[string]float64

	// Interactions lists each bonded mer pair within the retained
	// component, one per unordered pair.
	Interactions []bond.Interaction

	// Fragmented is true when the interaction graph had more than one
	// connected component and the smaller ones were discarded.
	Fragmented bool

	entry *pdb.Entry
}

// ProcessFile runs the whole pipeline on the named PDB file with default
// options. I/O errors reading the file are returned as-is; malformed
// record lines never cause an error.
func ProcessFile(fileName string) (*Result, error) {
	entry, err := pdb.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	return Process(entry, Options{})
}

// Process runs bond detection, graph construction, component reduction
// and best-source selection on an already parsed entry.
func Process(entry *pdb.Entry, opts Options) (*Result, error) {
	if len(entry.Mers) == 0 {
		return nil, ErrNoMers
	}

	det := opts.Detector
	if det.BondDist == 0 {
		det.BondDist = bond.DefaultBondDist
		// Only a wholly zero detector gets the default pre-filter; a
		// caller-set CentroidDist survives on its own.
		if det.CentroidDist == 0 {
			det.CentroidDist = bond.DefaultCentroidDist
		}
	}

	interactions := det.Detect(entry.Mers)
	if len(interactions) == 0 {
		return nil, ErrNoInteractions
	}

	adj := bond.BuildAdjacency(entry.Mers, opts.Warn)
	reduced, fragmented := adj.LargestComponent()

	mers := make(map[string]*pdb.Mer, len(reduced))
	for key := range reduced {
		mers[key] = entry.Mers[key]
	}
	kept := interactions[:0]
	for _, inter := range interactions {
		if _, ok := reduced[inter.From]; !ok {
			continue
		}
		if _, ok := reduced[inter.To]; !ok {
			continue
		}
		kept = append(kept, inter)
	}

	best, all := reduced.BestSource()

	return &Result{
		BestSource:   best,
		Mers:         mers,
		Graph:        reduced,
		Distances:    all[best],
		AllDistances: all,
		Interactions: kept,
		Fragmented:   fragmented,
		entry:        entry,
	}, nil
}

// Entry returns the parsed entry the result was computed from.
func (r *Result) Entry() *pdb.Entry {
	return r.entry
}

// Annotated renders a copy of the original file with each atom record's
// temperature factor replaced by its mer's distance from the given source
// mer. The result is built fresh on every call; nothing is cached or
// mutated, so distinct sources may be rendered in any order.
func (r *Result) Annotated(source string) (string, error) {
	dists, ok := r.AllDistances[source]
	if !ok {
		return "", fmt.Errorf("no distance map for mer '%s'", source)
	}
	buf := new(bytes.Buffer)
	if err := r.entry.Annotate(buf, source, dists); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// AnnotatedAll eagerly renders the annotated file for every retained mer
// as the source. On large structures this produces one full copy of the
// file per mer; prefer Annotated unless every copy is really wanted.
func (r *Result) AnnotatedAll() (map[string]string, error) {
	out := make(map[string]string, len(r.AllDistances))
	for source := range r.AllDistances {
		text, err := r.Annotated(source)
		if err != nil {
			return nil, err
		}
		out[source] = text
	}
	return out, nil
}
