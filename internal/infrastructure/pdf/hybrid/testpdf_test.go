package hybrid_test

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/require"
)

// classicPDF arma un PDF con tabla xref clásica; objs[i] es el cuerpo del objeto i+1.
func classicPDF(objs []string, trailerExtra string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f\r\n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R %s>>\nstartxref\n%d\n%%%%EOF", len(objs)+1, trailerExtra, xref)
	return buf.Bytes()
}

func minimalPDF() []byte {
	return classicPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>",
	}, "/ID [<0102> <0102>] ")
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(data)
	_ = w.Close()
	return buf.Bytes()
}

// compressedPDF: catálogo y árbol de páginas dentro de un object stream (obj 4),
// xref stream (obj 5) comprimido con predictor PNG "Up".
func compressedPDF() []byte {
	obj1 := "<< /Type /Catalog /Pages 2 0 R >>"
	obj2 := "<< /Type /Pages /Kids [3 0 R] /Count 1 >>"
	header := fmt.Sprintf("1 0 2 %d ", len(obj1)+1)
	objStmData := deflate([]byte(header + obj1 + " " + obj2))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	off3 := buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>\nendobj\n")
	off4 := buf.Len()
	fmt.Fprintf(&buf, "4 0 obj\n<< /Type /ObjStm /N 2 /First %d /Filter /FlateDecode /Length %d >>\nstream\n", len(header), len(objStmData))
	buf.Write(objStmData)
	buf.WriteString("\nendstream\nendobj\n")
	off5 := buf.Len()

	// W [1 4 2]
	rows := [][]byte{
		row(0, 0, 65535),
		row(2, 4, 0),
		row(2, 4, 1),
		row(1, off3, 0),
		row(1, off4, 0),
		row(1, off5, 0),
	}
	var encoded []byte
	prev := make([]byte, 7)
	for _, r := range rows {
		encoded = append(encoded, 2)
		for i := range r {
			encoded = append(encoded, r[i]-prev[i])
		}
		prev = r
	}
	xrefData := deflate(encoded)
	fmt.Fprintf(&buf, "5 0 obj\n<< /Type /XRef /Size 6 /W [1 4 2] /Root 1 0 R /Filter /FlateDecode "+
		"/DecodeParms << /Predictor 12 /Columns 7 >> /Length %d >>\nstream\n", len(xrefData))
	buf.Write(xrefData)
	buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", off5)
	return buf.Bytes()
}

func row(kind, f2, f3 int) []byte {
	return []byte{
		byte(kind),
		byte(f2 >> 24), byte(f2 >> 16), byte(f2 >> 8), byte(f2),
		byte(f3 >> 8), byte(f3),
	}
}

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100">
  <rsm:ExchangedDocument><ram:ID>RS-2025-0001</ram:ID></rsm:ExchangedDocument>
</rsm:CrossIndustryInvoice>
`

// readBack relee data con pdfcpu, independiente del código que escribió la actualización.
func readBack(t *testing.T, data []byte) *model.Context {
	t.Helper()
	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadAndValidate(bytes.NewReader(data), conf)
	require.NoError(t, err)
	return ctx
}

func catalogOf(t *testing.T, ctx *model.Context) types.Dict {
	t.Helper()
	catalog, err := ctx.Catalog()
	require.NoError(t, err)
	return catalog
}

func afOf(t *testing.T, ctx *model.Context) types.Array {
	t.Helper()
	o, found := catalogOf(t, ctx).Find("AF")
	require.True(t, found, "el catálogo declara /AF")
	af, err := ctx.DereferenceArray(o)
	require.NoError(t, err)
	return af
}

// embeddedStream devuelve el stream /EF del adjunto name.
func embeddedStream(t *testing.T, ctx *model.Context, name string) *types.StreamDict {
	t.Helper()
	tree := ctx.Names["EmbeddedFiles"]
	require.NotNil(t, tree)
	o, ok := tree.Value(name)
	require.True(t, ok)
	spec, err := ctx.DereferenceDict(o)
	require.NoError(t, err)
	f, found := spec.DictEntry("EF").Find("F")
	require.True(t, found)
	sd, _, err := ctx.DereferenceStreamDict(f)
	require.NoError(t, err)
	return sd
}
