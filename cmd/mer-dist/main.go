// Command mer-dist reads a PDB file, builds the weighted interaction
// graph over its mers, and outputs each mer's shortest-path distance from
// the most centrally connected mer (one "mer-key distance" pair per
// line). With -annotate, an annotated copy of the PDB file is written
// instead, with distances stored in the temperature factor column.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"

	"github.com/TuftsBCB/mernet"
	"github.com/TuftsBCB/mernet/pdb"
)

var (
	flagAnnotate = false
	flagSource   = ""
)

func init() {
	log.SetFlags(0)

	flag.BoolVar(&flagAnnotate, "annotate", flagAnnotate,
		"When set, write an annotated copy of the PDB file to stdout\n"+
			"instead of a distance listing.")
	flag.StringVar(&flagSource, "source", flagSource,
		"The source mer to compute distances from, e.g. 'HIS-123(A)'.\n"+
			"Defaults to the best source.")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] pdb-file\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	entry, err := pdb.ReadFile(flag.Arg(0))
	assert(err)

	result, err := mernet.Process(entry, mernet.Options{Warn: log.Printf})
	assert(err)

	if result.Fragmented {
		log.Printf("WARNING: %s is not fully connected; only the largest "+
			"component of %d mers was kept.", flag.Arg(0), len(result.Mers))
	}

	source := flagSource
	if len(source) == 0 {
		source = result.BestSource
	}
	dists, ok := result.AllDistances[source]
	if !ok {
		log.Fatalf("Mer '%s' is not in the retained component.", source)
	}

	if flagAnnotate {
		assert(entry.Annotate(os.Stdout, source, dists))
		return
	}

	fmt.Printf("source %s\n", source)
	keys := make([]string, 0, len(dists))
	for key := range dists {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if math.IsInf(dists[key], 1) {
			fmt.Printf("%s\tunreachable\n", key)
		} else {
			fmt.Printf("%s\t%0.2f\n", key, dists[key])
		}
	}
}

func assert(err error) {
	if err != nil {
		log.Fatalf("ERROR: %s.", err)
	}
}
