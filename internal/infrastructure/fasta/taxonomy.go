package fasta

import "strings"

// Taxonomy holds the ranks of a UNITE-style lineage.  Missing ranks are
// empty.
type Taxonomy struct {
	Kingdom string `json:"kingdom,omitempty"`
	Phylum  string `json:"phylum,omitempty"`
	Class   string `json:"class,omitempty"`
	Order   string `json:"order,omitempty"`
	Family  string `json:"family,omitempty"`
	Genus   string `json:"genus,omitempty"`
	Species string `json:"species,omitempty"`
}

// IsZero reports whether no rank was parsed.
func (t Taxonomy) IsZero() bool { return t == Taxonomy{} }

// ParseTaxonomy extracts the lineage from the last '|' field of a record id,
// e.g. "SH1|k__Fungi;p__Ascomycota;g__Aspergillus".  A last field that does
// not start with "k__" yields a zero Taxonomy.
func ParseTaxonomy(id string) Taxonomy {
	field := id
	if i := strings.LastIndexByte(id, '|'); i >= 0 {
		field = id[i+1:]
	}
	var t Taxonomy
	if !strings.HasPrefix(field, "k__") {
		return t
	}
	for _, level := range strings.Split(field, ";") {
		level = strings.TrimSpace(level)
		if len(level) < 3 || level[1:3] != "__" {
			continue
		}
		value := level[3:]
		switch level[0] {
		case 'k':
			t.Kingdom = value
		case 'p':
			t.Phylum = value
		case 'c':
			t.Class = value
		case 'o':
			t.Order = value
		case 'f':
			t.Family = value
		case 'g':
			t.Genus = value
		case 's':
			t.Species = value
		}
	}
	return t
}
