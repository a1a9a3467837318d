// Package xmljson implements the xml-json/json-xml round-trip codec
// (spec.md §4.C "Structured round-trip", a supplemental stage beyond the
// distilled spec — see SPEC_FULL.md §4.C). Each stage treats the whole
// input as one complete document and converts it to the other format,
// preserving element names, attribute names and values, child element
// order and each element's character data. xml-json followed by json-xml
// does not reproduce the original bytes: attributes are written in Go map
// order, an element's character data is concatenated and written before
// its children, and namespaces are dropped. No example repo in the pack uses a third-party XML library —
// jmylchreest-tvarr's own xmltv parser is built on encoding/xml — so this
// codec is grounded on stdlib encoding/xml plus encoding/json; see
// DESIGN.md for the stdlib justification.
package xmljson

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log/slog"

	"github.com/vpbank/msgproxy/pkg/msgproxy/factory"
	"github.com/vpbank/msgproxy/pkg/msgproxy/stage"
)

func init() {
	factory.MustRegister("xml-json", newXMLToJSON)
	factory.MustRegister("json-xml", newJSONToXML)
}

// node is the root-preserving envelope both directions convert through.
type node struct {
	Tag      string            `json:"tag"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*node           `json:"children,omitempty"`
}

func parseXML(stageName string, data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []*node
	var root *node

	for {
		tok, err := dec.Token()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, &stage.InvalidDataError{Stage: stageName, Reason: fmt.Sprintf("malformed xml: %v", err)}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{Tag: t.Name.Local}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &stage.InvalidDataError{Stage: stageName, Reason: "unbalanced end element"}
			}
			root = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, &stage.InvalidDataError{Stage: stageName, Reason: "no root element found"}
	}
	return root, nil
}

func renderXML(n *node) []byte {
	var buf bytes.Buffer
	writeXML(&buf, n)
	return buf.Bytes()
}

func writeXML(buf *bytes.Buffer, n *node) {
	buf.WriteByte('<')
	buf.WriteString(n.Tag)
	for k, v := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(k)
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(v))
		buf.WriteByte('"')
	}
	if n.Text == "" && len(n.Children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	xml.EscapeText(buf, []byte(n.Text))
	for _, c := range n.Children {
		writeXML(buf, c)
	}
	buf.WriteString("</")
	buf.WriteString(n.Tag)
	buf.WriteByte('>')
}

type xmlToJSON struct{ logger *slog.Logger }

func newXMLToJSON(_ int, _ string, logger *slog.Logger) (stage.Stage, error) {
	return &xmlToJSON{logger: logger}, nil
}

func (s *xmlToJSON) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	n, err := parseXML("xml-json", input)
	if err != nil {
		return nil, nil, err
	}
	out, err := json.Marshal(n)
	if err != nil {
		return nil, nil, &stage.InvalidDataError{Stage: "xml-json", Reason: err.Error()}
	}
	return out, nil, nil
}

type jsonToXML struct{ logger *slog.Logger }

func newJSONToXML(_ int, _ string, logger *slog.Logger) (stage.Stage, error) {
	return &jsonToXML{logger: logger}, nil
}

func (s *jsonToXML) Push(state stage.State, input []byte) ([]byte, []byte, error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	var n node
	if err := json.Unmarshal(input, &n); err != nil {
		return nil, nil, &stage.InvalidDataError{Stage: "json-xml", Reason: fmt.Sprintf("malformed json: %v", err)}
	}
	if n.Tag == "" {
		return nil, nil, &stage.InvalidDataError{Stage: "json-xml", Reason: "envelope missing \"tag\""}
	}
	return renderXML(&n), nil, nil
}
