package hybrid

import (
	"github.com/beevik/etree"
)

const (
	nsRDF           = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsFacturX       = "urn:factur-x:pdfa:CrossIndustryDocument:invoice:1p0#"
	xmpPacketID     = "W5M0MpCehiHzreSzNTczkc9d"
	xmpPacketHeader = `begin="` + "\ufeff" + `" id="` + xmpPacketID + `"`
)

var facturXProperties = [][2]string{
	{"DocumentFileName", "The name of the embedded XML document"},
	{"DocumentType", "The type of the hybrid document in capital letters, e.g. INVOICE or ORDER"},
	{"Version", "The actual version of the standard applying to the embedded XML document"},
	{"ConformanceLevel", "The conformance level of the embedded XML document"},
}

// facturXMetadata paquete XMP que declara PDF/A-3B y el esquema de extensión Factur-X.
func facturXMetadata(fileName, conformance, title string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xpacket", xmpPacketHeader)

	meta := doc.CreateElement("x:xmpmeta")
	meta.CreateAttr("xmlns:x", "adobe:ns:meta/")
	rdf := meta.CreateElement("rdf:RDF")
	rdf.CreateAttr("xmlns:rdf", nsRDF)

	pdfaid := rdfDescription(rdf, "pdfaid", "http://www.aiim.org/pdfa/ns/id/")
	pdfaid.CreateElement("pdfaid:part").SetText("3")
	pdfaid.CreateElement("pdfaid:conformance").SetText("B")

	if title != "" {
		dc := rdfDescription(rdf, "dc", "http://purl.org/dc/elements/1.1/")
		li := dc.CreateElement("dc:title").CreateElement("rdf:Alt").CreateElement("rdf:li")
		li.CreateAttr("xml:lang", "x-default")
		li.SetText(title)
	}

	fx := rdfDescription(rdf, "fx", nsFacturX)
	fx.CreateElement("fx:DocumentType").SetText("INVOICE")
	fx.CreateElement("fx:DocumentFileName").SetText(fileName)
	fx.CreateElement("fx:Version").SetText("1.0")
	fx.CreateElement("fx:ConformanceLevel").SetText(conformance)

	ext := rdfDescription(rdf, "pdfaExtension", "http://www.aiim.org/pdfa/ns/extension/")
	ext.CreateAttr("xmlns:pdfaSchema", "http://www.aiim.org/pdfa/ns/schema#")
	ext.CreateAttr("xmlns:pdfaProperty", "http://www.aiim.org/pdfa/ns/property#")
	schema := ext.CreateElement("pdfaExtension:schemas").CreateElement("rdf:Bag").CreateElement("rdf:li")
	schema.CreateAttr("rdf:parseType", "Resource")
	schema.CreateElement("pdfaSchema:schema").SetText("Factur-X PDFA Extension Schema")
	schema.CreateElement("pdfaSchema:namespaceURI").SetText(nsFacturX)
	schema.CreateElement("pdfaSchema:prefix").SetText("fx")
	seq := schema.CreateElement("pdfaSchema:property").CreateElement("rdf:Seq")
	for _, prop := range facturXProperties {
		li := seq.CreateElement("rdf:li")
		li.CreateAttr("rdf:parseType", "Resource")
		li.CreateElement("pdfaProperty:name").SetText(prop[0])
		li.CreateElement("pdfaProperty:valueType").SetText("Text")
		li.CreateElement("pdfaProperty:category").SetText("external")
		li.CreateElement("pdfaProperty:description").SetText(prop[1])
	}

	doc.CreateProcInst("xpacket", `end="w"`)
	doc.Indent(1)
	return doc.WriteToBytes()
}

func rdfDescription(rdf *etree.Element, prefix, uri string) *etree.Element {
	d := rdf.CreateElement("rdf:Description")
	d.CreateAttr("rdf:about", "")
	d.CreateAttr("xmlns:"+prefix, uri)
	return d
}
