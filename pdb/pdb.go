package pdb

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/TuftsBCB/seq"
	"github.com/TuftsBCB/structure"
)

// AminoThreeToOne is a map from three letter amino acids to their
// corresponding single letter representation.
var AminoThreeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"SEC": 'U', "PYL": 'O',
	"UNK": 'X', "ACE": 'X', "NH2": 'X',
	"ASX": 'X', "GLX": 'X',
}

// minRecordLen is the shortest an ATOM or HETATM record can be while still
// containing a temperature factor (columns 60-66). Anything shorter is
// skipped.
const minRecordLen = 66

// Entry represents the information read from a single PDB file: every mer
// (residue) with its atoms, a summary of each chain, and a verbatim copy of
// every input line (used when writing an annotated copy of the file).
type Entry struct {
	Path   string
	Lines  [][]byte
	Mers   map[string]*Mer
	Chains []*Chain
}

// Chain is a light summary of a protein chain or subunit: its identifier
// and its amino acid sequence as deduced from the ATOM records, one residue
// per distinct mer in file order.
type Chain struct {
	Entry    *Entry
	Ident    byte
	Sequence []seq.Residue
}

// Mer is a single residue: an ordered list of the atoms belonging to one
// chain position, along with a table counting bonds to other mers. The
// bond table is empty after parsing; it is filled in by the bond package.
type Mer struct {
	Type     string
	SeqNum   int
	Chain    byte
	Atoms    []Atom
	Centroid structure.Coords
	Bonds    map[string]int
}

// Atom corresponds to a single ATOM or HETATM record.
type Atom struct {
	Serial     int
	Name       string
	Residue    string
	Het        bool
	TempFactor float64
	structure.Coords
}

// MerKey builds the key that uniquely identifies a mer within one entry.
// A blank chain identifier is omitted from the key.
func MerKey(residue string, seqNum int, chain byte) string {
	c := ""
	if chain != ' ' && chain != 0 {
		c = string(chain)
	}
	return fmt.Sprintf("%s-%d(%s)", residue, seqNum, c)
}

// ReadFile reads a PDB entry from the file given. If the file name ends
// with ".gz", gzip decompression is used. The file is closed before
// ReadFile returns.
func ReadFile(fileName string) (*Entry, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if path.Ext(fileName) == ".gz" {
		if reader, err = gzip.NewReader(f); err != nil {
			return nil, err
		}
	}

	entry, err := Read(reader)
	if err != nil {
		return nil, err
	}
	entry.Path = fileName
	return entry, nil
}

// Read reads a PDB entry from the reader given. Every line is retained
// verbatim in Entry.Lines; ATOM and HETATM records are additionally parsed
// into mers. A record that is malformed contributes no atom but is still
// retained, and never causes an error.
func Read(r io.Reader) (*Entry, error) {
	entry := &Entry{
		Mers:   make(map[string]*Mer),
		Chains: make([]*Chain, 0),
	}

	breader := bufio.NewReaderSize(r, 1000)
	for {
		// We ignore 'isPrefix' here, since we never care about lines longer
		// than 1000 characters, which is the size of our buffer.
		line, _, err := breader.ReadLine()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		// ReadLine reuses its buffer, so keep our own copy.
		cp := make([]byte, len(line))
		copy(cp, line)
		entry.Lines = append(entry.Lines, cp)

		if het, ok := isAtomRecord(cp); ok {
			entry.parseAtom(cp, het)
		}
	}

	for _, mer := range entry.Mers {
		mer.calcCentroid()
	}
	return entry, nil
}

// isAtomRecord reports whether the line is an ATOM or HETATM record, and
// whether it is the latter.
func isAtomRecord(line []byte) (het, ok bool) {
	s := string(line)
	switch {
	case strings.HasPrefix(s, "ATOM"):
		return false, true
	case strings.HasPrefix(s, "HETATM"):
		return true, true
	}
	return false, false
}

// parseAtom loads a single ATOM/HETATM record into its owning mer, creating
// the mer on first sight. Malformed records are dropped silently.
func (e *Entry) parseAtom(line []byte, het bool) {
	f, ok := parseAtomLine(line)
	if !ok {
		return
	}

	key := MerKey(f.residue, f.seqNum, f.chain)
	mer := e.Mers[key]
	if mer == nil {
		mer = &Mer{
			Type:   f.residue,
			SeqNum: f.seqNum,
			Chain:  f.chain,
			Bonds:  make(map[string]int),
		}
		e.Mers[key] = mer

		// One sequence residue per distinct amino acid mer, in file order.
		if single, isAmino := AminoThreeToOne[f.residue]; isAmino && !het {
			chain := e.getOrMakeChain(f.chain)
			chain.Sequence = append(chain.Sequence, seq.Residue(single))
		}
	}

	mer.Atoms = append(mer.Atoms, Atom{
		Serial:     f.serial,
		Name:       f.name,
		Residue:    f.residue,
		Het:        het,
		TempFactor: f.temp,
		Coords:     structure.Coords{X: f.x, Y: f.y, Z: f.z},
	})
}

// atomFields holds the columns extracted from one ATOM or HETATM record.
type atomFields struct {
	serial  int
	name    string
	residue string
	chain   byte
	seqNum  int
	x, y, z float64
	temp    float64
}

// parseAtomLine extracts the fixed columns of an ATOM/HETATM record.
// It returns false if the record is too short or if any numeric column
// fails to parse.
func parseAtomLine(line []byte) (atomFields, bool) {
	var f atomFields
	if len(line) < minRecordLen {
		return f, false
	}

	var err error
	col := func(start, end int) string {
		return strings.TrimSpace(string(line[start:end]))
	}

	if f.serial, err = strconv.Atoi(col(6, 11)); err != nil {
		return f, false
	}
	f.name = col(12, 16)
	f.residue = col(17, 20)
	f.chain = line[21]
	if f.seqNum, err = strconv.Atoi(col(22, 26)); err != nil {
		return f, false
	}
	if f.x, err = strconv.ParseFloat(col(30, 38), 64); err != nil {
		return f, false
	}
	if f.y, err = strconv.ParseFloat(col(38, 46), 64); err != nil {
		return f, false
	}
	if f.z, err = strconv.ParseFloat(col(46, 54), 64); err != nil {
		return f, false
	}
	if f.temp, err = strconv.ParseFloat(col(60, 66), 64); err != nil {
		return f, false
	}
	return f, true
}

// Chain looks for the chain with identifier ident and returns it. 'nil' is
// returned if the chain could not be found.
func (e *Entry) Chain(ident byte) *Chain {
	for _, chain := range e.Chains {
		if chain.Ident == ident {
			return chain
		}
	}
	return nil
}

// MerKeys returns the keys of every mer in the entry in lexicographic
// order. All iteration over mers in this module goes through sorted keys
// so that results are deterministic.
func (e *Entry) MerKeys() []string {
	keys := make([]string, 0, len(e.Mers))
	for key := range e.Mers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// getOrMakeChain looks for a chain in the 'Chains' slice corresponding to
// the chain identifier. If one exists, it is returned. Otherwise a new one
// is created.
func (e *Entry) getOrMakeChain(ident byte) *Chain {
	if ident == ' ' {
		ident = '_'
	}
	if chain := e.Chain(ident); chain != nil {
		return chain
	}
	newChain := &Chain{
		Entry:    e,
		Ident:    ident,
		Sequence: make([]seq.Residue, 0, 10),
	}
	e.Chains = append(e.Chains, newChain)
	return newChain
}

// Key returns the key that uniquely identifies this mer within one entry.
func (m *Mer) Key() string {
	return MerKey(m.Type, m.SeqNum, m.Chain)
}

// AddBond records one bond from this mer to the mer with the given key.
func (m *Mer) AddBond(key string) {
	if m.Bonds == nil {
		m.Bonds = make(map[string]int)
	}
	m.Bonds[key]++
}

// BondCount returns the number of bonds recorded to the mer with the
// given key.
func (m *Mer) BondCount(key string) int {
	return m.Bonds[key]
}

// calcCentroid computes the mean of the mer's atom coordinates. A mer with
// no atoms keeps the zero centroid, but such a mer is never constructed by
// the parser.
func (m *Mer) calcCentroid() {
	if len(m.Atoms) == 0 {
		return
	}
	var x, y, z float64
	for _, atom := range m.Atoms {
		x += atom.X
		y += atom.Y
		z += atom.Z
	}
	n := float64(len(m.Atoms))
	m.Centroid = structure.Coords{X: x / n, Y: y / n, Z: z / n}
}

func (m *Mer) String() string {
	return fmt.Sprintf("%s (%d atoms)", m.Key(), len(m.Atoms))
}
