// Package storage guarda los PDF generados en el sistema de archivos.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appbilling "github.com/jhoicas/Reifenservice-api/internal/application/billing"
	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
)

var _ appbilling.DocumentStore = (*FileStore)(nil)

// FileStore almacén local; las rutas recibidas son relativas a root y usan "/".
type FileStore struct {
	root string
}

// NewFileStore construye el almacén sobre root (se crea al primer Save).
func NewFileStore(root string) *FileStore {
	return &FileStore{root: filepath.Clean(root)}
}

// Root raíz absoluta o relativa configurada.
func (s *FileStore) Root() string { return s.root }

// Save escribe data de forma atómica: archivo temporal en el mismo directorio, fsync y rename.
// Un lector nunca ve un PDF a medio escribir; si ya existe, se reemplaza.
func (s *FileStore) Save(ctx context.Context, path string, data []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return &einvoice.StorageError{Path: path, Op: "save", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &einvoice.StorageError{Path: path, Op: "save", Err: err}
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &einvoice.StorageError{Path: path, Op: "mkdir", Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*.tmp")
	if err != nil {
		return &einvoice.StorageError{Path: path, Op: "create", Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return &einvoice.StorageError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &einvoice.StorageError{Path: path, Op: "fsync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &einvoice.StorageError{Path: path, Op: "close", Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &einvoice.StorageError{Path: path, Op: "chmod", Err: err}
	}
	if err := os.Rename(tmpName, full); err != nil {
		return &einvoice.StorageError{Path: path, Op: "rename", Err: err}
	}
	committed = true
	syncDir(dir)
	return nil
}

// Open lee el archivo guardado en path.
func (s *FileStore) Open(ctx context.Context, path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, &einvoice.StorageError{Path: path, Op: "open", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &einvoice.StorageError{Path: path, Op: "open", Err: err}
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, &einvoice.StorageError{Path: path, Op: "open", Err: err}
	}
	return data, nil
}

// resolve rechaza rutas absolutas o que escapen de la raíz.
func (s *FileStore) resolve(path string) (string, error) {
	if path == "" || strings.HasPrefix(path, "/") || filepath.IsAbs(path) {
		return "", fmt.Errorf("ruta inválida %q", path)
	}
	rel := filepath.Clean(filepath.FromSlash(path))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("ruta fuera del almacén %q", path)
	}
	return filepath.Join(s.root, rel), nil
}

// syncDir persiste la entrada del directorio tras el rename (no disponible en todos los SO).
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
