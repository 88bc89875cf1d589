// Package filesource provides the content handles stored in file items: entries of an fs.FS,
// standalone operating system paths and in-memory payloads.
package filesource

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/temirov/copier/internal/types"
	"github.com/temirov/copier/internal/utils"
)

type lazyMediaType struct {
	once  sync.Once
	value string
}

func (lazy *lazyMediaType) resolve(open func() (io.ReadCloser, error)) string {
	lazy.once.Do(func() {
		reader, openError := open()
		if openError != nil {
			return
		}
		defer reader.Close()
		lazy.value = utils.DetectMediaType(reader)
	})
	return lazy.value
}

// FSEntry is a regular file inside an fs.FS. Its media type is sniffed on first use.
type FSEntry struct {
	fsys      fs.FS
	name      string
	size      int64
	mediaType *lazyMediaType
}

// NewFSEntry returns a source for name within fsys using the size reported by info.
func NewFSEntry(fsys fs.FS, name string, info fs.FileInfo) *FSEntry {
	return &FSEntry{fsys: fsys, name: name, size: info.Size(), mediaType: &lazyMediaType{}}
}

// Name returns the base name of the entry.
func (entry *FSEntry) Name() string { return path.Base(entry.name) }

// Size returns the size captured when the entry was discovered.
func (entry *FSEntry) Size() int64 { return entry.size }

// MediaType returns the sniffed media type.
func (entry *FSEntry) MediaType() string { return entry.mediaType.resolve(entry.Open) }

// Open opens the entry for reading.
func (entry *FSEntry) Open() (io.ReadCloser, error) { return entry.fsys.Open(entry.name) }

// Path is a file addressed by an operating system path.
type Path struct {
	path      string
	size      int64
	mediaType *lazyMediaType
}

// NewPath stats filePath and returns a source for it.
func NewPath(filePath string) (*Path, error) {
	info, statError := os.Stat(filePath)
	if statError != nil {
		return nil, statError
	}
	return &Path{path: filePath, size: info.Size(), mediaType: &lazyMediaType{}}, nil
}

// Name returns the base name of the path.
func (source *Path) Name() string { return filepath.Base(source.path) }

// Size returns the size captured by NewPath.
func (source *Path) Size() int64 { return source.size }

// MediaType returns the sniffed media type.
func (source *Path) MediaType() string { return source.mediaType.resolve(source.Open) }

// Open opens the file for reading.
//
// #nosec G304
func (source *Path) Open() (io.ReadCloser, error) { return os.Open(source.path) }

// Memory is an in-memory payload with an explicitly declared media type.
type Memory struct {
	name      string
	data      []byte
	mediaType string
}

// NewMemory returns a source for data. An empty mediaType means none was declared.
func NewMemory(name string, data []byte, mediaType string) *Memory {
	return &Memory{name: name, data: data, mediaType: utils.NormalizeMediaType(mediaType)}
}

// Name returns the payload name.
func (source *Memory) Name() string { return source.name }

// Size returns the payload length.
func (source *Memory) Size() int64 { return int64(len(source.data)) }

// MediaType returns the declared media type.
func (source *Memory) MediaType() string { return source.mediaType }

// Open returns a reader over the payload.
func (source *Memory) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(source.data)), nil
}

var (
	_ types.ContentSource = (*FSEntry)(nil)
	_ types.ContentSource = (*Path)(nil)
	_ types.ContentSource = (*Memory)(nil)
)
