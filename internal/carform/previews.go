package carform

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Upload is a file picked by the user.
type Upload struct {
	Name string
	Data []byte
}

// File is an accepted upload together with its preview reference.
type File struct {
	Upload
	Preview string
}

// Previews hands out local preview references for accepted files. With a
// directory each preview is a viewable copy on disk; without one it is only
// a token. Every reference must be released.
type Previews struct {
	mu   sync.Mutex
	dir  string
	live map[string]string // ref -> path ("" when in memory)
}

// NewPreviews creates a registry writing under dir ("" keeps nothing on disk).
func NewPreviews(dir string) *Previews {
	return &Previews{dir: dir, live: make(map[string]string)}
}

// Acquire registers u and returns its reference.
func (p *Previews) Acquire(u Upload) (string, error) {
	ref := uuid.NewString()
	path := ""
	if p.dir != "" {
		if err := os.MkdirAll(p.dir, 0o700); err != nil {
			return "", fmt.Errorf("failed to create preview dir: %w", err)
		}
		path = filepath.Join(p.dir, ref+filepath.Ext(u.Name))
		if err := os.WriteFile(path, u.Data, 0o600); err != nil {
			return "", fmt.Errorf("failed to write preview: %w", err)
		}
		ref = path
	}

	p.mu.Lock()
	p.live[ref] = path
	p.mu.Unlock()
	return ref, nil
}

// Release frees one reference. Unknown references are ignored.
func (p *Previews) Release(ref string) {
	p.mu.Lock()
	path, ok := p.live[ref]
	delete(p.live, ref)
	p.mu.Unlock()

	if ok && path != "" {
		_ = os.Remove(path)
	}
}

// ReleaseAll frees every live reference.
func (p *Previews) ReleaseAll() {
	p.mu.Lock()
	refs := make([]string, 0, len(p.live))
	for ref := range p.live {
		refs = append(refs, ref)
	}
	p.mu.Unlock()

	for _, ref := range refs {
		p.Release(ref)
	}
}

// Live returns the number of unreleased references.
func (p *Previews) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

func (p *Previews) accept(u Upload) (File, error) {
	ref, err := p.Acquire(u)
	if err != nil {
		return File{}, err
	}
	return File{Upload: u, Preview: ref}, nil
}
