// Package facturx construye y serializa el XML CrossIndustryInvoice (ZUGFeRD 2.2 / Factur-X EXTENDED).
package facturx

import "strings"

// Namespaces UN/CEFACT del CrossIndustryInvoice D16B.
const (
	NsRsm = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	NsRam = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	NsUdt = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
	NsQdt = "urn:un:unece:uncefact:data:standard:QualifiedDataType:100"
	NsXs  = "http://www.w3.org/2001/XMLSchema"
)

// rootNamespaces orden fijo de las declaraciones xmlns en la raíz.
var rootNamespaces = []struct{ Prefix, URI string }{
	{"rsm", NsRsm},
	{"qdt", NsQdt},
	{"ram", NsRam},
	{"xs", NsXs},
	{"udt", NsUdt},
}

// QName nombre calificado por prefijo.
type QName struct {
	Prefix string
	Local  string
}

func (q QName) String() string {
	if q.Prefix == "" {
		return q.Local
	}
	return q.Prefix + ":" + q.Local
}

// Rsm, Ram y Udt crean nombres en cada namespace.
func Rsm(local string) QName { return QName{Prefix: "rsm", Local: local} }
func Ram(local string) QName { return QName{Prefix: "ram", Local: local} }
func Udt(local string) QName { return QName{Prefix: "udt", Local: local} }

// Attr atributo; el orden de inserción se conserva al serializar.
type Attr struct {
	Name  QName
	Value string
}

// Node es un Element o un Text.
type Node interface{ isNode() }

// Text contenido de texto.
type Text struct{ Value string }

func (Text) isNode() {}

// Element nodo con nombre, atributos e hijos. Se construye una vez y no se modifica.
type Element struct {
	Name     QName
	Attrs    []Attr
	Children []Node
}

func (Element) isNode() {}

// El crea un elemento con hijos.
func El(name QName, children ...Node) Element {
	return Element{Name: name, Children: children}
}

// Leaf crea un elemento con un único texto y atributos opcionales.
func Leaf(name QName, value string, attrs ...Attr) Element {
	return Element{Name: name, Attrs: attrs, Children: []Node{Text{Value: value}}}
}

// A crea un atributo sin prefijo.
func A(key, value string) Attr { return Attr{Name: QName{Local: key}, Value: value} }

// Text devuelve la concatenación de los textos directos del elemento.
func (e Element) Text() string {
	var sb strings.Builder
	for _, c := range e.Children {
		if t, ok := c.(Text); ok {
			sb.WriteString(t.Value)
		}
	}
	return sb.String()
}

// Attr devuelve el valor del atributo sin prefijo key.
func (e Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Prefix == "" && a.Name.Local == key {
			return a.Value, true
		}
	}
	return "", false
}

// Elements devuelve los hijos de tipo Element con el nombre dado.
func (e Element) Elements(name QName) []Element {
	var out []Element
	for _, c := range e.Children {
		if ce, ok := c.(Element); ok && ce.Name == name {
			out = append(out, ce)
		}
	}
	return out
}

// Child devuelve el primer hijo con el nombre dado.
func (e Element) Child(name QName) (Element, bool) {
	for _, c := range e.Children {
		if ce, ok := c.(Element); ok && ce.Name == name {
			return ce, true
		}
	}
	return Element{}, false
}

// Find recorre la ruta de nombres desde e, tomando siempre el primer hijo.
func (e Element) Find(path ...QName) (Element, bool) {
	cur := e
	for _, name := range path {
		next, ok := cur.Child(name)
		if !ok {
			return Element{}, false
		}
		cur = next
	}
	return cur, true
}
