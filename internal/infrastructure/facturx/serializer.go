package facturx

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
)

// Serialize convierte el árbol en texto XML UTF-8 con los prefijos declarados en la raíz.
// Mismo árbol, mismos bytes: etree conserva el orden de inserción de los atributos.
func Serialize(root Element) (string, error) {
	if root.Name.Local == "" {
		return "", fmt.Errorf("facturx: árbol sin elemento raíz")
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	el := toEtree(root)
	// Las declaraciones van antes que cualquier otro atributo de la raíz.
	attrs := el.Attr
	el.Attr = nil
	for _, ns := range rootNamespaces {
		el.CreateAttr("xmlns:"+ns.Prefix, ns.URI)
	}
	el.Attr = append(el.Attr, attrs...)

	doc.SetRoot(el)
	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("facturx: serializar XML: %w", err)
	}
	return out, nil
}

func toEtree(e Element) *etree.Element {
	out := etree.NewElement(e.Name.Local)
	out.Space = e.Name.Prefix
	for _, a := range e.Attrs {
		out.CreateAttr(a.Name.String(), a.Value)
	}
	for _, c := range e.Children {
		switch n := c.(type) {
		case Element:
			out.AddChild(toEtree(n))
		case Text:
			out.CreateText(n.Value)
		}
	}
	return out
}

// Canonicalize devuelve la forma C14N del XML (sin la declaración <?xml?>).
func Canonicalize(xmlText string) ([]byte, error) {
	body := strings.TrimSpace(xmlText)
	if strings.HasPrefix(body, "<?xml") {
		if end := strings.Index(body, "?>"); end >= 0 {
			body = strings.TrimSpace(body[end+2:])
		}
	}
	dec := xml.NewDecoder(strings.NewReader(body))
	dec.Entity = map[string]string{}
	out, err := c14n.Canonicalize(dec)
	if err != nil {
		return nil, fmt.Errorf("facturx: canonicalizar XML: %w", err)
	}
	return out, nil
}

// Digest SHA-256 (hex) de la forma canónica; se guarda con el artefacto para
// comprobar que una regeneración produjo el mismo XML.
func Digest(xmlText string) (string, error) {
	canon, err := Canonicalize(xmlText)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
