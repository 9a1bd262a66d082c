/*
Package pdb reads atomic coordinates from PDB formatted files and groups
them into mers (residues). Parsing is deliberately forgiving: an ATOM or
HETATM record that is too short or that contains an unparseable field is
skipped, and never causes the rest of the file to be rejected.

Every line of the input is retained verbatim on the Entry, so that an
annotated copy of the file can be written back out with only the
temperature factor column changed.
*/
package pdb
