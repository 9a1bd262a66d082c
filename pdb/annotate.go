package pdb

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// maxAnnotation is the largest distance that fits the temperature factor
// column with two decimal places. Larger distances are capped.
const maxAnnotation = 999.99

// Annotate writes a copy of the original file to w, overwriting the
// temperature factor column (60-66) of every ATOM and HETATM record with
// the shortest-path distance of the record's mer from the given source
// mer. Records whose mer is missing from dists, or whose distance is not
// finite, keep their original temperature factor. All other lines are
// passed through unchanged, except for a single REMARK identifying the
// source mer, inserted immediately before the first atom record.
//
// Annotate never mutates the entry, so it may be called once per source
// mer on the same entry.
func (e *Entry) Annotate(w io.Writer, source string, dists map[string]float64) error {
	bw := bufio.NewWriter(w)
	remarked := false

	for _, line := range e.Lines {
		out := line
		if _, ok := isAtomRecord(line); ok {
			if !remarked {
				fmt.Fprintf(bw,
					"REMARK distances from source mer %s are stored in "+
						"the temperature factor column\n", source)
				remarked = true
			}
			out = annotateRecord(line, dists)
		}
		if _, err := bw.Write(out); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// annotateRecord returns the record with its temperature factor column
// replaced by the owning mer's distance, or the record itself when the
// record is malformed, the mer is unknown, or the distance is not finite.
func annotateRecord(line []byte, dists map[string]float64) []byte {
	f, ok := parseAtomLine(line)
	if !ok {
		return line
	}
	d, ok := dists[MerKey(f.residue, f.seqNum, f.chain)]
	if !ok || math.IsInf(d, 0) {
		return line
	}

	out := make([]byte, len(line))
	copy(out, line)
	copy(out[60:66], fmt.Sprintf("%6.2f", math.Min(d, maxAnnotation)))
	return out
}
