package pdb

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// atomLine formats a fixed-column ATOM/HETATM record the way the PDB
// does: serial in columns 6-11, atom name in 12-16, residue type in
// 17-20, chain in 21, residue number in 22-26, coordinates in 30-54,
// occupancy in 54-60 and temperature factor in 60-66.
func atomLine(record string, serial int, name, residue string, chain byte,
	num int, x, y, z, temp float64) string {

	return fmt.Sprintf("%-6s%5d %-4s %3s %c%4d    %8.3f%8.3f%8.3f%6.2f%6.2f",
		record, serial, name, residue, chain, num, x, y, z, 1.0, temp)
}

// testPDBLines is a small structure with two amino acid mers, one water
// HETATM, and two malformed records (one short, one with a bad
// coordinate) that the parser must skip without giving up on the file.
func testPDBLines() []string {
	badCoord := atomLine("ATOM", 9, "CG", "GLY", 'A', 2, 0, 0, 0, 9.99)
	badCoord = badCoord[:30] + "   bad x" + badCoord[38:]

	return []string{
		"HEADER    TEST STRUCTURE                          01-JAN-10   0XXX",
		"REMARK   1 FIXTURE",
		atomLine("ATOM", 1, "N", "ALA", 'A', 1, 0.0, 0.0, 0.0, 10.00),
		atomLine("ATOM", 2, "CA", "ALA", 'A', 1, 1.0, 0.0, 0.0, 11.00),
		atomLine("ATOM", 3, "C", "ALA", 'A', 1, 2.0, 0.0, 0.0, 12.00),
		atomLine("ATOM", 4, "N", "GLY", 'A', 2, 3.0, 0.0, 0.0, 13.00),
		atomLine("ATOM", 5, "CA", "GLY", 'A', 2, 4.0, 0.0, 0.0, 14.00),
		"ATOM      9  N",
		badCoord,
		atomLine("HETATM", 6, "O", "HOH", 'A', 100, 20.0, 0.0, 0.0, 15.00),
		"TER",
		"END",
	}
}

func testPDB() string {
	return strings.Join(testPDBLines(), "\n") + "\n"
}

func readTestPDB(t *testing.T) *Entry {
	entry, err := Read(strings.NewReader(testPDB()))
	if err != nil {
		t.Fatalf("%s", err)
	}
	return entry
}

func TestRead(t *testing.T) {
	entry := readTestPDB(t)

	if len(entry.Mers) != 3 {
		t.Fatalf("Expected 3 mers but got %d.", len(entry.Mers))
	}
	for key, atoms := range map[string]int{
		"ALA-1(A)":   3,
		"GLY-2(A)":   2,
		"HOH-100(A)": 1,
	} {
		mer := entry.Mers[key]
		if mer == nil {
			t.Fatalf("Missing mer '%s'.", key)
		}
		if len(mer.Atoms) != atoms {
			t.Fatalf("Expected %d atoms in '%s' but got %d.",
				atoms, key, len(mer.Atoms))
		}
		if mer.Key() != key {
			t.Fatalf("Mer key '%s' does not round-trip ('%s').",
				key, mer.Key())
		}
	}

	if !entry.Mers["HOH-100(A)"].Atoms[0].Het {
		t.Fatalf("Water atom should be marked HETATM.")
	}
	if entry.Mers["ALA-1(A)"].Atoms[0].Het {
		t.Fatalf("ALA atom should not be marked HETATM.")
	}
	if tf := entry.Mers["GLY-2(A)"].Atoms[1].TempFactor; tf != 14.0 {
		t.Fatalf("Expected temp factor 14.00 but got %f.", tf)
	}
	if len(entry.Lines) != len(testPDBLines()) {
		t.Fatalf("Expected %d raw lines but got %d.",
			len(testPDBLines()), len(entry.Lines))
	}
}

func TestCentroid(t *testing.T) {
	entry := readTestPDB(t)

	// ALA atoms sit at x = 0, 1, 2, so the centroid is x = 1.
	c := entry.Mers["ALA-1(A)"].Centroid
	if c.X != 1.0 || c.Y != 0.0 || c.Z != 0.0 {
		t.Fatalf("Expected centroid (1, 0, 0) but got (%f, %f, %f).",
			c.X, c.Y, c.Z)
	}
}

func TestChainSequence(t *testing.T) {
	entry := readTestPDB(t)

	chain := entry.Chain('A')
	if chain == nil {
		t.Fatalf("Missing chain 'A'.")
	}
	// One residue per amino acid mer in file order; the water HETATM
	// contributes nothing.
	got := make([]byte, len(chain.Sequence))
	for i, r := range chain.Sequence {
		got[i] = byte(r)
	}
	if string(got) != "AG" {
		t.Fatalf("Expected chain sequence 'AG' but got '%s'.", string(got))
	}
}

func TestReadIdempotent(t *testing.T) {
	first := readTestPDB(t)
	second := readTestPDB(t)

	if len(first.Mers) != len(second.Mers) {
		t.Fatalf("Parses disagree on mer count: %d vs %d.",
			len(first.Mers), len(second.Mers))
	}
	for _, key := range first.MerKeys() {
		m1, m2 := first.Mers[key], second.Mers[key]
		if m2 == nil {
			t.Fatalf("Second parse is missing mer '%s'.", key)
		}
		if len(m1.Atoms) != len(m2.Atoms) {
			t.Fatalf("Parses disagree on atom count for '%s'.", key)
		}
		if m1.Centroid != m2.Centroid {
			t.Fatalf("Parses disagree on centroid for '%s'.", key)
		}
	}
}

func TestReadFileGzip(t *testing.T) {
	buf := new(bytes.Buffer)
	zw := gzip.NewWriter(buf)
	if _, err := zw.Write([]byte(testPDB())); err != nil {
		t.Fatalf("%s", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("%s", err)
	}

	fpath := filepath.Join(t.TempDir(), "test.pdb.gz")
	if err := os.WriteFile(fpath, buf.Bytes(), 0666); err != nil {
		t.Fatalf("%s", err)
	}

	entry, err := ReadFile(fpath)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if entry.Path != fpath {
		t.Fatalf("Expected path '%s' but got '%s'.", fpath, entry.Path)
	}
	if len(entry.Mers) != 3 {
		t.Fatalf("Expected 3 mers from the gzipped file but got %d.",
			len(entry.Mers))
	}
}

func TestMerKeyBlankChain(t *testing.T) {
	if key := MerKey("HIS", 12, ' '); key != "HIS-12()" {
		t.Fatalf("Expected 'HIS-12()' but got '%s'.", key)
	}
	if key := MerKey("HIS", 12, 'B'); key != "HIS-12(B)" {
		t.Fatalf("Expected 'HIS-12(B)' but got '%s'.", key)
	}
}

func countAtomLines(lines []string) int {
	n := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "ATOM") ||
			strings.HasPrefix(line, "HETATM") {
			n++
		}
	}
	return n
}

func annotated(t *testing.T, entry *Entry, source string,
	dists map[string]float64) []string {

	buf := new(strings.Builder)
	if err := entry.Annotate(buf, source, dists); err != nil {
		t.Fatalf("%s", err)
	}
	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("Annotated output does not end with a newline.")
	}
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

func TestAnnotate(t *testing.T) {
	entry := readTestPDB(t)
	dists := map[string]float64{
		"ALA-1(A)":   0.0,
		"GLY-2(A)":   1.234,
		"HOH-100(A)": math.Inf(1),
	}
	lines := annotated(t, entry, "ALA-1(A)", dists)

	in := testPDBLines()
	if len(lines) != len(in)+1 {
		t.Fatalf("Expected %d output lines but got %d.", len(in)+1, len(lines))
	}
	if countAtomLines(lines) != countAtomLines(in) {
		t.Fatalf("Atom record count changed: %d in, %d out.",
			countAtomLines(in), countAtomLines(lines))
	}

	// The REMARK goes immediately before the first atom record, which is
	// the third line of the fixture.
	remarks := 0
	for _, line := range lines {
		if strings.Contains(line, "source mer ALA-1(A)") {
			remarks++
		}
	}
	if remarks != 1 {
		t.Fatalf("Expected exactly one source REMARK but found %d.", remarks)
	}
	if !strings.Contains(lines[2], "source mer ALA-1(A)") {
		t.Fatalf("Source REMARK is not before the first atom record.")
	}

	if got := lines[3][60:66]; got != "  0.00" {
		t.Fatalf("Expected annotation '  0.00' but got '%s'.", got)
	}
	if got := lines[6][60:66]; got != "  1.23" {
		t.Fatalf("Expected annotation '  1.23' but got '%s'.", got)
	}
	// Everything outside the annotation column is untouched.
	if lines[6][:60] != in[5][:60] {
		t.Fatalf("Annotation changed columns before the temp factor.")
	}

	// Infinite distance: the water line keeps its original temp factor.
	if lines[10] != in[9] {
		t.Fatalf("Unreachable mer's record was modified:\n%s\n%s",
			in[9], lines[10])
	}
	// Malformed records pass through unchanged.
	if lines[8] != in[7] || lines[9] != in[8] {
		t.Fatalf("Malformed records were modified.")
	}
}

func TestAnnotateClamp(t *testing.T) {
	entry := readTestPDB(t)
	dists := map[string]float64{"GLY-2(A)": 12345.0}
	lines := annotated(t, entry, "GLY-2(A)", dists)

	if got := lines[6][60:66]; got != "999.99" {
		t.Fatalf("Expected clamped annotation '999.99' but got '%s'.", got)
	}
}

func TestAnnotateRepeatable(t *testing.T) {
	entry := readTestPDB(t)
	first := annotated(t, entry, "ALA-1(A)", map[string]float64{
		"ALA-1(A)": 0.0, "GLY-2(A)": 2.0,
	})
	// A second render for a different source must not be polluted by the
	// first one.
	second := annotated(t, entry, "GLY-2(A)", map[string]float64{
		"GLY-2(A)": 0.0,
	})
	if second[3][60:66] != " 10.00" {
		t.Fatalf("Second render inherited state from the first: '%s'.",
			second[3][60:66])
	}
	again := annotated(t, entry, "ALA-1(A)", map[string]float64{
		"ALA-1(A)": 0.0, "GLY-2(A)": 2.0,
	})
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("Re-render differs at line %d.", i)
		}
	}
}
