package carform

import (
	"fmt"

	"github.com/ukydev/fleet-admin/internal/models"
)

// Thumbnail is the cover image slot: at most one pending file plus, when
// editing, the reference already stored by the API. A pending file
// supersedes the existing one on submit.
type Thumbnail struct {
	previews *Previews
	pending  *File
	existing string
}

// Set replaces the pending file.
func (t *Thumbnail) Set(u Upload) error {
	f, err := t.previews.accept(u)
	if err != nil {
		return err
	}
	t.Clear()
	t.pending = &f
	return nil
}

// Clear drops the pending file, keeping the existing reference.
func (t *Thumbnail) Clear() {
	if t.pending != nil {
		t.previews.Release(t.pending.Preview)
		t.pending = nil
	}
}

// Pending returns the file to upload, if any.
func (t *Thumbnail) Pending() *File { return t.pending }

// Existing returns the stored reference (edit only).
func (t *Thumbnail) Existing() string { return t.existing }

// Preview is what the slot currently shows.
func (t *Thumbnail) Preview() string {
	if t.pending != nil {
		return t.pending.Preview
	}
	return t.existing
}

// Gallery tracks the stored images still shown, the ids marked for
// deletion and the files waiting to upload. Together they never exceed
// models.MaxCarImages.
type Gallery struct {
	previews *Previews
	existing []models.Image
	toDelete []string
	pending  []File
}

// Count is existing-minus-deleted plus pending.
func (g *Gallery) Count() int { return len(g.existing) + len(g.pending) }

// Remaining is how many more files fit.
func (g *Gallery) Remaining() int { return models.MaxCarImages - g.Count() }

// Existing returns the stored images not marked for deletion.
func (g *Gallery) Existing() []models.Image { return append([]models.Image(nil), g.existing...) }

// Pending returns the files waiting to upload.
func (g *Gallery) Pending() []File { return append([]File(nil), g.pending...) }

// ToDelete returns the ids marked for deletion.
func (g *Gallery) ToDelete() []string { return append([]string(nil), g.toDelete...) }

// Add accepts a batch of files. A batch that would overflow the gallery is
// rejected whole and the gallery is left unchanged.
func (g *Gallery) Add(uploads ...Upload) error {
	if g.Count()+len(uploads) > models.MaxCarImages {
		return fmt.Errorf("%w: %d in gallery, %d selected", ErrGalleryFull, g.Count(), len(uploads))
	}

	accepted := make([]File, 0, len(uploads))
	for _, u := range uploads {
		f, err := g.previews.accept(u)
		if err != nil {
			for _, a := range accepted {
				g.previews.Release(a.Preview)
			}
			return err
		}
		accepted = append(accepted, f)
	}
	g.pending = append(g.pending, accepted...)
	return nil
}

// RemovePending drops pending file i and releases its preview.
func (g *Gallery) RemovePending(i int) error {
	if i < 0 || i >= len(g.pending) {
		return fmt.Errorf("%w: %d", ErrImageNotFound, i)
	}
	g.previews.Release(g.pending[i].Preview)
	out := make([]File, 0, len(g.pending)-1)
	out = append(out, g.pending[:i]...)
	g.pending = append(out, g.pending[i+1:]...)
	return nil
}

// MarkForDeletion hides stored image id; the API deletes it on submit.
func (g *Gallery) MarkForDeletion(id string) error {
	for i, img := range g.existing {
		if img.ID == id {
			g.existing = append(g.existing[:i:i], g.existing[i+1:]...)
			g.toDelete = append(g.toDelete, id)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrImageNotFound, id)
}

func (g *Gallery) release() {
	for _, f := range g.pending {
		g.previews.Release(f.Preview)
	}
	g.pending = nil
}
