package hybrid

import (
	"bytes"
	"crypto/md5"
	"errors"
	"sort"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
)

// Valores de /AFRelationship admitidos por Factur-X.
const (
	RelationshipAlternative = "Alternative"
	RelationshipData        = "Data"
	RelationshipSource      = "Source"
)

// pdfVersion versión mínima que se declara en el catálogo (PDF/A-3 se apoya en PDF 1.7).
const pdfVersion = "1.7"

// EmbedOptions parámetros del adjunto.
type EmbedOptions struct {
	FileName     string    // por defecto factur-x.xml
	Description  string    // /Desc del Filespec
	Relationship string    // por defecto Alternative
	ModDate      time.Time // cero = momento del embebido
	// AddMetadata añade el XMP Factur-X cuando el catálogo no tiene /Metadata.
	AddMetadata bool
	Conformance string // nivel declarado en el XMP; por defecto EXTENDED
	Title       string
}

func (o EmbedOptions) withDefaults() EmbedOptions {
	if o.FileName == "" {
		o.FileName = einvoice.AttachmentFileName
	}
	if o.Relationship == "" {
		o.Relationship = RelationshipAlternative
	}
	if o.Description == "" {
		o.Description = "Factur-X/ZUGFeRD invoice"
	}
	if o.Conformance == "" {
		o.Conformance = "EXTENDED"
	}
	return o
}

// Embedder incrusta el XML en un PDF ya renderizado mediante una actualización incremental
// escrita con pdfcpu.
type Embedder struct{}

// NewEmbedder crea el servicio.
func NewEmbedder() *Embedder { return &Embedder{} }

var eofMarker = []byte("%%EOF")

// Embed devuelve prefix + actualización incremental + resto original. El resto (lo que
// sigue al último %%EOF) se conserva byte a byte.
//
// Sin %%EOF devuelve la entrada sin cambios junto con einvoice.ErrEmbeddingSkipped.
// Una estructura ilegible devuelve *einvoice.EmbeddingError.
func (e *Embedder) Embed(pdf, xml []byte, opts EmbedOptions) ([]byte, error) {
	idx := bytes.LastIndex(pdf, eofMarker)
	if idx < 0 {
		return pdf, einvoice.ErrEmbeddingSkipped
	}
	opts = opts.withDefaults()
	prefix := pdf[:idx+len(eofMarker)]
	remainder := pdf[idx+len(eofMarker):]

	ctx, err := readContext(prefix, model.ADDATTACHMENTS)
	if err != nil {
		return nil, &einvoice.EmbeddingError{Reason: "estructura PDF ilegible", Err: err}
	}
	if ctx.Encrypt != nil {
		return nil, &einvoice.EmbeddingError{Reason: "PDF cifrado"}
	}
	prev := ctx.Write.OffsetPrevXRef
	if prev == nil || *prev <= 0 || *prev >= int64(len(prefix)) {
		return nil, &einvoice.EmbeddingError{Reason: "startxref fuera del archivo"}
	}
	catalog, err := ctx.Catalog()
	if err != nil {
		return nil, &einvoice.EmbeddingError{Reason: "catálogo ilegible", Err: err}
	}

	before := liveObjects(ctx)

	if err := attach(ctx, catalog, xml, opts); err != nil {
		return nil, &einvoice.EmbeddingError{Reason: "registrar adjunto", Err: err}
	}
	if _, found := catalog.Find("Metadata"); opts.AddMetadata && !found {
		if err := addMetadata(ctx, catalog, opts); err != nil {
			return nil, &einvoice.EmbeddingError{Reason: "metadatos XMP", Err: err}
		}
	}
	if ctx.XRefTable.Version() < model.V17 {
		catalog.Update("Version", types.Name(pdfVersion))
	}
	if err := ctx.BindNameTrees(); err != nil {
		return nil, &einvoice.EmbeddingError{Reason: "árbol /EmbeddedFiles", Err: err}
	}

	// La actualización empieza tras un salto de línea detrás del %%EOF original.
	ctx.Write.Increment = true
	ctx.Write.Offset = int64(len(prefix)) + 1
	ctx.WriteXRefStream = ctx.Read.UsingXRefStreams
	for _, nr := range changedObjects(ctx, catalog, before) {
		ctx.Write.IncrementWithObjNr(nr)
	}

	var incr bytes.Buffer
	if err := api.WriteIncrement(ctx, &incr); err != nil {
		return nil, &einvoice.EmbeddingError{Reason: "escribir actualización incremental", Err: err}
	}

	out := make([]byte, 0, len(prefix)+1+incr.Len()+len(remainder))
	out = append(out, prefix...)
	out = append(out, '\n')
	out = append(out, incr.Bytes()...)
	out = append(out, remainder...)
	return out, nil
}

// attach registra el Filespec en /Names/EmbeddedFiles (reemplazando uno con el mismo
// nombre) y en /AF del catálogo.
func attach(ctx *model.Context, catalog types.Dict, xml []byte, opts EmbedOptions) error {
	xrt := ctx.XRefTable
	if err := xrt.LocateNameTree("EmbeddedFiles", true); err != nil {
		return err
	}
	tree := xrt.Names["EmbeddedFiles"]

	a := model.Attachment{Reader: bytes.NewReader(xml), ID: opts.FileName, FileName: opts.FileName, Desc: opts.Description}
	if !opts.ModDate.IsZero() {
		modTime := opts.ModDate
		a.ModTime = &modTime
	}

	var replaced *types.IndirectRef
	if old, found := tree.Value(opts.FileName); found {
		if ir, ok := old.(types.IndirectRef); ok {
			replaced = &ir
		}
		d, err := xrt.NewFileSpecDictForAttachment(a)
		if err != nil {
			return err
		}
		ir, err := xrt.IndRefForNewObject(d)
		if err != nil {
			return err
		}
		err = tree.Process(xrt, func(_ *model.XRefTable, k string, v *types.Object) error {
			if k == opts.FileName {
				*v = *ir
			}
			return nil
		})
		if err != nil {
			return err
		}
	} else if err := ctx.AddAttachment(a, false); err != nil {
		return err
	}

	o, found := tree.Value(opts.FileName)
	if !found {
		return errors.New("hybrid: el adjunto no quedó registrado")
	}
	specRef, ok := o.(types.IndirectRef)
	if !ok {
		return errors.New("hybrid: Filespec sin referencia indirecta")
	}
	spec, err := xrt.DereferenceDict(specRef)
	if err != nil {
		return err
	}
	spec.Update("AFRelationship", types.Name(opts.Relationship))
	if err := describeEmbeddedFile(xrt, spec, xml); err != nil {
		return err
	}
	return updateAF(xrt, catalog, specRef, replaced)
}

// describeEmbeddedFile deja el stream /EF sin filtro (el XML queda legible en el archivo) y
// añade /Subtype y /Params/CheckSum.
func describeEmbeddedFile(xrt *model.XRefTable, spec types.Dict, xml []byte) error {
	ef := spec.DictEntry("EF")
	if ef == nil {
		return errors.New("hybrid: Filespec sin /EF")
	}
	entry, ok := xrt.FindTableEntryForIndRef(ef.IndirectRefEntry("F"))
	if !ok {
		return errors.New("hybrid: /EF sin stream")
	}
	sd, ok := entry.Object.(types.StreamDict)
	if !ok {
		return errors.New("hybrid: /EF no es un stream")
	}
	sd.Delete("Filter")
	sd.Delete("DecodeParms")
	sd.FilterPipeline = nil
	sd.Content = xml
	if err := sd.Encode(); err != nil {
		return err
	}
	sd.Update("Subtype", types.Name("text/xml"))
	if params := sd.DictEntry("Params"); params != nil {
		sum := md5.Sum(xml)
		params.Update("CheckSum", types.NewHexLiteral(sum[:]))
	}
	entry.Object = sd
	return nil
}

// updateAF deja en /AF el Filespec nuevo y quita el que se reemplazó.
func updateAF(xrt *model.XRefTable, catalog types.Dict, spec types.IndirectRef, replaced *types.IndirectRef) error {
	af := types.Array{}
	if o, found := catalog.Find("AF"); found {
		existing, err := xrt.DereferenceArray(o)
		if err != nil {
			return err
		}
		for _, v := range existing {
			if ir, ok := v.(types.IndirectRef); ok {
				if ir.ObjectNumber == spec.ObjectNumber {
					continue
				}
				if replaced != nil && ir.ObjectNumber == replaced.ObjectNumber {
					continue
				}
			}
			af = append(af, v)
		}
	}
	catalog.Update("AF", append(af, spec))
	return nil
}

func addMetadata(ctx *model.Context, catalog types.Dict, opts EmbedOptions) error {
	xmp, err := facturXMetadata(opts.FileName, opts.Conformance, opts.Title)
	if err != nil {
		return err
	}
	// PDF/A no admite filtros en el stream de metadatos.
	sd := types.StreamDict{Dict: types.NewDict(), Content: xmp}
	sd.InsertName("Type", "Metadata")
	sd.InsertName("Subtype", "XML")
	if err := sd.Encode(); err != nil {
		return err
	}
	ir, err := ctx.IndRefForNewObject(sd)
	if err != nil {
		return err
	}
	catalog.Update("Metadata", *ir)
	return nil
}

func liveObjects(ctx *model.Context) map[int]bool {
	live := make(map[int]bool, len(ctx.Table))
	for nr, e := range ctx.Table {
		if e != nil && !e.Free {
			live[nr] = true
		}
	}
	return live
}

// changedObjects objetos que van en la actualización: los creados desde before, el
// catálogo y el diccionario /Names si es indirecto.
func changedObjects(ctx *model.Context, catalog types.Dict, before map[int]bool) []int {
	nrs := []int{ctx.Root.ObjectNumber.Value()}
	if ir := catalog.IndirectRefEntry("Names"); ir != nil {
		nrs = append(nrs, ir.ObjectNumber.Value())
	}
	for nr, e := range ctx.Table {
		if e != nil && !e.Free && e.Object != nil && !before[nr] {
			nrs = append(nrs, nr)
		}
	}
	sort.Ints(nrs)
	return nrs
}
