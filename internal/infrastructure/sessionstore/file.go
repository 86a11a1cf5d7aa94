package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jhoicas/supermarket-console/internal/application/session"
)

var _ session.Store = (*FileStore)(nil)

// FileStore sesión en un archivo JSON {"authToken": "...", "userInfo": "..."} con permisos 0600.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore usa path como archivo de sesión; el directorio se crea al guardar.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path ruta del archivo.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(context.Context) (session.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return session.State{}, nil
	}
	if err != nil {
		return session.State{}, fmt.Errorf("leer sesión: %w", err)
	}
	var doc map[string]string
	if err := json.Unmarshal(b, &doc); err != nil {
		return session.State{}, fmt.Errorf("sesión corrupta en %s: %w", f.path, err)
	}
	user, err := decodeUser(doc[KeyUser])
	if err != nil {
		return session.State{}, err
	}
	return session.State{Token: doc[KeyToken], User: user}, nil
}

// Save escribe en un temporal y renombra, así un corte nunca deja el token sin su identidad.
func (f *FileStore) Save(_ context.Context, s session.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, err := encodeUser(s.User)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(map[string]string{KeyToken: s.Token, KeyUser: user}, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar sesión: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("crear directorio de sesión: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("crear temporal de sesión: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("permisos de sesión: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("escribir sesión: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cerrar sesión: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("guardar sesión: %w", err)
	}
	return nil
}

func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("borrar sesión: %w", err)
	}
	return nil
}
