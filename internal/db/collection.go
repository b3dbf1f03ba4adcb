package db

import (
	"time"

	"github.com/ukydev/fleet-admin/internal/cache"
)

// CacheEntry is one cached read as stored in MongoDB.
type CacheEntry struct {
	Key       string     `bson:"_id"`
	Value     string     `bson:"value"`
	Tags      []string   `bson:"tags"`
	ExpiresAt *time.Time `bson:"expiresAt,omitempty"`
}

// tagNames lists the names an entry is indexed under. An id tag is also
// indexed under its type so type-wide invalidation reaches it.
func tagNames(tags []cache.Tag) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, t := range tags {
		add(t.String())
		if t.ID != "" {
			add(cache.TypeTag(t.Type).String())
		}
	}
	return out
}
