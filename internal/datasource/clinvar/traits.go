package clinvar

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/inodb/hgnc-miner/internal/gene"
)

// placeholderTraits are ClinVar's names for "no condition given".
var placeholderTraits = map[string]bool{
	"not specified": true,
	"not provided":  true,
}

// xmlNode is a generic element tree for walking esummary documents,
// whose classification layout differs between ClinVar releases.
type xmlNode struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

// find returns the first descendant of n named name, in document order.
func (n *xmlNode) find(name string) *xmlNode {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == name {
			return c
		}
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant of n named name, in document order.
func (n *xmlNode) findAll(name string) []*xmlNode {
	var out []*xmlNode
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == name {
			out = append(out, c)
		}
		out = append(out, c.findAll(name)...)
	}
	return out
}

// parseTraitNames walks an esummary XML document. For each
// DocumentSummary it takes the first trait_set and collects the first
// trait_name of every trait within it, skipping placeholder names.
func parseTraitNames(data []byte) (gene.DiseaseSet, error) {
	var root xmlNode
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		return nil, err
	}
	if e := root.find("ERROR"); e != nil && strings.TrimSpace(e.Text) != "" {
		return nil, fmt.Errorf("esummary: %s", strings.TrimSpace(e.Text))
	}

	names := gene.DiseaseSet{}
	for _, doc := range root.findAll("DocumentSummary") {
		traitSet := doc.find("trait_set")
		if traitSet == nil {
			continue
		}
		for _, trait := range traitSet.findAll("trait") {
			name := trait.find("trait_name")
			if name == nil || name.Text == "" || placeholderTraits[name.Text] {
				continue
			}
			names.Add(name.Text)
		}
	}
	return names, nil
}
