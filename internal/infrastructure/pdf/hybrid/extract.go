package hybrid

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrAttachmentNotFound el PDF no tiene un archivo incrustado con ese nombre.
var ErrAttachmentNotFound = errors.New("hybrid: archivo incrustado no encontrado")

// Attachment archivo incrustado leído del árbol /Names/EmbeddedFiles.
type Attachment struct {
	Name         string
	Description  string
	Relationship string
	ModTime      *time.Time
	Data         []byte
	DeclaredSize int64 // /Params /Size del stream; 0 si no se declara
}

// ReadAttachments devuelve todos los adjuntos, ordenados por nombre.
func ReadAttachments(data []byte) ([]Attachment, error) {
	ctx, err := readContext(data, model.EXTRACTATTACHMENTS)
	if err != nil {
		return nil, fmt.Errorf("hybrid: leer PDF: %w", err)
	}
	tree := ctx.Names["EmbeddedFiles"]
	if tree == nil {
		return nil, nil
	}
	extracted, err := ctx.ExtractAttachments(nil)
	if err != nil {
		return nil, fmt.Errorf("hybrid: extraer adjuntos: %w", err)
	}

	out := make([]Attachment, 0, len(extracted))
	for _, a := range extracted {
		content, err := io.ReadAll(a)
		if err != nil {
			return nil, fmt.Errorf("hybrid: leer %s: %w", a.ID, err)
		}
		att := Attachment{Name: a.ID, Description: a.Desc, ModTime: a.ModTime, Data: content}
		if o, ok := tree.Value(a.ID); ok {
			describe(ctx.XRefTable, o, &att)
		}
		out = append(out, att)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListEmbeddedFiles devuelve los nombres registrados en /Names/EmbeddedFiles.
func ListEmbeddedFiles(data []byte) ([]string, error) {
	ctx, err := readContext(data, model.LISTATTACHMENTS)
	if err != nil {
		return nil, fmt.Errorf("hybrid: leer PDF: %w", err)
	}
	stubs, err := ctx.ListAttachments()
	if err != nil {
		return nil, fmt.Errorf("hybrid: listar adjuntos: %w", err)
	}
	names := make([]string, 0, len(stubs))
	for _, a := range stubs {
		names = append(names, a.ID)
	}
	sort.Strings(names)
	return names, nil
}

// ExtractEmbeddedFile devuelve el contenido decodificado del adjunto name.
func ExtractEmbeddedFile(data []byte, name string) (*Attachment, error) {
	all, err := ReadAttachments(data)
	if err != nil {
		return nil, err
	}
	return FindAttachment(all, name)
}

// FindAttachment busca name entre los adjuntos leídos.
func FindAttachment(all []Attachment, name string) (*Attachment, error) {
	for i := range all {
		if all[i].Name == name {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAttachmentNotFound, name)
}

// describe completa /AFRelationship y el tamaño declarado a partir del Filespec.
func describe(xrt *model.XRefTable, o types.Object, att *Attachment) {
	spec, err := xrt.DereferenceDict(o)
	if err != nil || spec == nil {
		return
	}
	if rel := spec.NameEntry("AFRelationship"); rel != nil {
		att.Relationship = *rel
	}
	ef := spec.DictEntry("EF")
	if ef == nil {
		return
	}
	f, found := ef.Find("F")
	if !found {
		return
	}
	sd, _, err := xrt.DereferenceStreamDict(f)
	if err != nil || sd == nil {
		return
	}
	if params := sd.DictEntry("Params"); params != nil {
		if size := params.IntEntry("Size"); size != nil {
			att.DeclaredSize = int64(*size)
		}
	}
}
