package cache

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// Resource tag types used by the gateway.
const (
	TypeCar      = "Car"
	TypeUser     = "User"
	TypeBookings = "Bookings"
)

// Tag associates a cached read with the resource it depends on. An empty ID
// stands for the whole resource type.
type Tag struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// TypeTag is the list-wide tag of a resource type.
func TypeTag(typ string) Tag { return Tag{Type: typ} }

// IDTag is the tag of a single resource.
func IDTag(typ, id string) Tag { return Tag{Type: typ, ID: id} }

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// Invalidates reports whether invalidating t drops a read providing p.
// A type tag reaches every tag of that type; an id tag only its exact match.
func (t Tag) Invalidates(p Tag) bool {
	if t.Type != p.Type {
		return false
	}
	return t.ID == "" || t.ID == p.ID
}

func anyInvalidates(invalidated, provided []Tag) bool {
	for _, inv := range invalidated {
		for _, p := range provided {
			if inv.Invalidates(p) {
				return true
			}
		}
	}
	return false
}

// QueryKey builds a deterministic cache key from a prefix and query params.
func QueryKey(prefix string, params map[string]string) string {
	if len(params) == 0 {
		return prefix
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, k := range keys {
		if i > 0 {
			builder.WriteString(":")
		}
		builder.WriteString(k)
		builder.WriteString("=")
		builder.WriteString(params[k])
	}

	hash := md5.Sum([]byte(builder.String()))
	hashStr := hex.EncodeToString(hash[:])

	return prefix + ":" + hashStr
}
