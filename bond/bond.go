/*
Package bond detects spatial bonds between mers and derives the weighted
interactions used to build the mer graph. Two mers are bonded when any
atom of one lies within the bonding distance of any atom of the other.

Because the atom-pair scan is quadratic, a coarse centroid pre-filter can
skip mer pairs that are obviously far apart. The pre-filter is an
optimization only: with a conservative threshold it never changes which
pairs are found bonded, and it can be disabled outright.
*/
package bond

import (
	"math"
	"sort"

	"github.com/TuftsBCB/structure"

	"github.com/TuftsBCB/mernet/graph"
	"github.com/TuftsBCB/mernet/pdb"
)

const (
	// DefaultBondDist is the inter-atomic distance (in angstroms) under
	// which two mers are considered bonded.
	DefaultBondDist = 4.5

	// DefaultCentroidDist is the centroid-to-centroid distance above which
	// the full atom-pair scan for a mer pair is skipped.
	DefaultCentroidDist = 10.0
)

// Interaction is a read-only summary of one bonded mer pair. From is
// always the smaller key. Affinity normalizes the bond count by the mers'
// sizes, and Weight is its reciprocal (the shortest-path edge cost), +Inf
// when there are no bonds.
type Interaction struct {
	From, To string
	Bonds    int
	Affinity float64
	Weight   float64
}

// Detector holds the thresholds for bond detection. The zero Detector is
// not useful; use Detect or fill in the fields explicitly. A CentroidDist
// of zero or less disables the centroid pre-filter.
type Detector struct {
	BondDist     float64
	CentroidDist float64
}

// Detect finds all bonded mer pairs using the default thresholds.
func Detect(mers map[string]*pdb.Mer) []Interaction {
	d := Detector{BondDist: DefaultBondDist, CentroidDist: DefaultCentroidDist}
	return d.Detect(mers)
}

// Detect scans every unordered mer pair once, in sorted key order. The
// first atom pair found within BondDist marks the pair bonded: both mers
// record one bond to each other and exactly one Interaction is produced
// for the pair. Self pairs are never considered.
//
// Every mer's bond table is cleared before the scan, so detecting on the
// same mers twice (say, with different thresholds) yields the counts of
// the last run only.
func (d Detector) Detect(mers map[string]*pdb.Mer) []Interaction {
	keys := merKeys(mers)
	for _, key := range keys {
		mers[key].Bonds = make(map[string]int)
	}

	var interactions []Interaction
	for i := 0; i < len(keys); i++ {
		src := mers[keys[i]]
		for j := i + 1; j < len(keys); j++ {
			dst := mers[keys[j]]
			if d.CentroidDist > 0 &&
				dist(src.Centroid, dst.Centroid) >= d.CentroidDist {
				continue
			}
			if !bonded(src, dst, d.BondDist) {
				continue
			}
			src.AddBond(keys[j])
			dst.AddBond(keys[i])
			interactions = append(interactions,
				NewInteraction(keys[i], keys[j], src, dst))
		}
	}
	return interactions
}

// NewInteraction derives the affinity and weight for the pair (from, to)
// out of the mers' bond tables and sizes.
func NewInteraction(from, to string, src, dst *pdb.Mer) Interaction {
	bonds := src.BondCount(to)
	affinity := float64(bonds) / math.Sqrt(float64(size(src)*size(dst)))
	weight := math.Inf(1)
	if bonds > 0 {
		weight = 1 / affinity
	}
	return Interaction{
		From:     from,
		To:       to,
		Bonds:    bonds,
		Affinity: affinity,
		Weight:   weight,
	}
}

// BuildAdjacency converts the mers' bond tables into a symmetric weighted
// adjacency map. Every edge is written in both directions with the same
// weight. Bonds referencing a key absent from mers are reported through
// warn and skipped. Mers with no bonds do not appear in the map.
func BuildAdjacency(mers map[string]*pdb.Mer, warn graph.WarnFunc) graph.Adjacency {
	adj := make(graph.Adjacency)
	for _, key := range merKeys(mers) {
		mer := mers[key]
		for _, neighborKey := range bondKeys(mer) {
			bonds := mer.Bonds[neighborKey]
			if bonds <= 0 {
				continue
			}
			neighbor, ok := mers[neighborKey]
			if !ok {
				if warn != nil {
					warn("mer %s not found; skipping its bond from %s",
						neighborKey, key)
				}
				continue
			}
			affinity := float64(bonds) /
				math.Sqrt(float64(size(mer)*size(neighbor)))
			adj.AddEdge(key, neighborKey, 1/affinity)
		}
	}
	return adj
}

// bonded reports whether any atom of src is within bondDist of any atom
// of dst.
func bonded(src, dst *pdb.Mer, bondDist float64) bool {
	for _, a := range src.Atoms {
		for _, b := range dst.Atoms {
			if dist(a.Coords, b.Coords) < bondDist {
				return true
			}
		}
	}
	return false
}

func dist(a, b structure.Coords) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// size clamps a mer's atom count to at least 1 so that affinity never
// divides by zero. The parser never produces an atomless mer, but tests
// and callers may.
func size(m *pdb.Mer) int {
	if len(m.Atoms) == 0 {
		return 1
	}
	return len(m.Atoms)
}

func merKeys(mers map[string]*pdb.Mer) []string {
	keys := make([]string, 0, len(mers))
	for key := range mers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func bondKeys(m *pdb.Mer) []string {
	keys := make([]string, 0, len(m.Bonds))
	for key := range m.Bonds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
