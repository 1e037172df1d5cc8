package depguard

import (
	"context"
	"os"

	"github.com/kennethkcox/depguard/internal/pathsafe"
)

// FileReader is the default [Reader]: it resolves every requested path
// against root through [pathsafe.Resolve] before reading it, rejecting
// any path that would escape the project root.
type FileReader struct {
	root string
}

// NewFileReader returns a Reader rooted at root.
func NewFileReader(root string) *FileReader {
	return &FileReader{root: root}
}

func (f *FileReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	resolved, err := pathsafe.Resolve(f.root, path)
	if err != nil {
		return nil, SecurityError("FileReader.ReadFile", err.Error())
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, FileSystemError("FileReader.ReadFile", err)
	}
	return data, nil
}
