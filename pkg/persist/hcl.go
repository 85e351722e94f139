package persist

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/matzehuels/archboard/pkg/diagram"
)

// ExportHCL writes d as HCL: one diagram block followed by a node block
// per node and an edge block per edge, labelled with their ids.
//
//	diagram "Untitled Diagram" {
//	  id      = "0b6a..."
//	  version = 1
//	}
//
//	node "svc" {
//	  type     = "service"
//	  name     = "Service"
//	  position = { x = 220, y = 120 }
//	}
func ExportHCL(d *diagram.Diagram) (Artifact, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	db := root.AppendNewBlock("diagram", []string{d.Name}).Body()
	db.SetAttributeValue("id", cty.StringVal(d.ID))
	db.SetAttributeValue("version", cty.NumberIntVal(int64(d.Version)))
	if len(d.Metadata) > 0 {
		db.SetAttributeValue("metadata", propertiesValue(d.Metadata))
	}

	for _, n := range d.Nodes {
		root.AppendNewline()
		nb := root.AppendNewBlock("node", []string{n.ID}).Body()
		nb.SetAttributeValue("type", cty.StringVal(string(n.Type)))
		nb.SetAttributeValue("name", cty.StringVal(n.Name))
		nb.SetAttributeValue("position", cty.ObjectVal(map[string]cty.Value{
			"x": cty.NumberFloatVal(n.Position.X),
			"y": cty.NumberFloatVal(n.Position.Y),
		}))
		if n.Size != nil {
			nb.SetAttributeValue("size", cty.ObjectVal(map[string]cty.Value{
				"w": cty.NumberFloatVal(n.Size.W),
				"h": cty.NumberFloatVal(n.Size.H),
			}))
		}
		if len(n.Properties) > 0 {
			nb.SetAttributeValue("properties", propertiesValue(n.Properties))
		}
	}

	for _, e := range d.Edges {
		root.AppendNewline()
		eb := root.AppendNewBlock("edge", []string{e.ID}).Body()
		eb.SetAttributeValue("from", cty.StringVal(e.From))
		eb.SetAttributeValue("to", cty.StringVal(e.To))
		eb.SetAttributeValue("type", cty.StringVal(string(e.Type)))
		eb.SetAttributeValue("async", cty.BoolVal(e.IsAsync()))
		if e.Label != "" {
			eb.SetAttributeValue("label", cty.StringVal(e.Label))
		}
	}

	return newArtifact(FormatHCL, hclwrite.Format(f.Bytes())), nil
}

// propertiesValue converts properties to a cty object.
func propertiesValue(p diagram.Properties) cty.Value {
	if len(p) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(p))
	for k, v := range p {
		attrs[k] = ctyValue(v)
	}
	return cty.ObjectVal(attrs)
}

// ctyValue converts a property value. Lists become tuples so elements may
// differ in type.
func ctyValue(v diagram.Value) cty.Value {
	switch v.Kind() {
	case diagram.KindString:
		s, _ := v.AsString()
		return cty.StringVal(s)
	case diagram.KindNumber:
		n, _ := v.AsNumber()
		return cty.NumberFloatVal(n)
	case diagram.KindBool:
		b, _ := v.AsBool()
		return cty.BoolVal(b)
	case diagram.KindList:
		l, _ := v.AsList()
		if len(l) == 0 {
			return cty.EmptyTupleVal
		}
		elems := make([]cty.Value, len(l))
		for i, e := range l {
			elems[i] = ctyValue(e)
		}
		return cty.TupleVal(elems)
	case diagram.KindMap:
		m, _ := v.AsMap()
		return propertiesValue(m)
	}
	return cty.NullVal(cty.DynamicPseudoType)
}
