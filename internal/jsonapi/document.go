package jsonapi

import (
	"encoding/json"
	"fmt"
)

// Identifier is a resource linkage: the type and id of a related resource.
type Identifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship holds the linkage of one named relationship. Data is either
// null, a single identifier or an array of identifiers.
type Relationship struct {
	Data json.RawMessage `json:"data"`
}

// Resource is a single JSON:API resource object.
type Resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    map[string]any          `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships"`
}

// Links carries pagination links of a document.
type Links struct {
	Next *Link `json:"next,omitempty"`
}

// Link is a JSON:API link object.
type Link struct {
	Href string `json:"href"`
}

// Document is a collection response.
type Document struct {
	Data     []Resource `json:"data"`
	Included []Resource `json:"included,omitempty"`
	Links    Links      `json:"links"`
}

// NextHref returns the next page URL or "" on the last page.
func (d Document) NextHref() string {
	if d.Links.Next == nil {
		return ""
	}
	return d.Links.Next.Href
}

// ToOne returns the identifier of a to-one relationship. ok is false when
// the relationship is missing or null.
func (r Resource) ToOne(name string) (Identifier, bool) {
	rel, ok := r.Relationships[name]
	if !ok || len(rel.Data) == 0 || string(rel.Data) == "null" {
		return Identifier{}, false
	}
	var id Identifier
	if err := json.Unmarshal(rel.Data, &id); err != nil || id.ID == "" {
		return Identifier{}, false
	}
	return id, true
}

// ToMany returns the identifiers of a to-many relationship, or nil.
func (r Resource) ToMany(name string) []Identifier {
	rel, ok := r.Relationships[name]
	if !ok || len(rel.Data) == 0 || string(rel.Data) == "null" {
		return nil
	}
	var ids []Identifier
	if err := json.Unmarshal(rel.Data, &ids); err != nil {
		return nil
	}
	return ids
}

// String returns a string attribute, or "" when absent or of another type.
func (r Resource) String(name string) string {
	s, _ := r.Attributes[name].(string)
	return s
}

// StringPtr returns a string attribute or nil when absent or empty.
// Drupal text fields arrive as {"value": "..."} objects; both forms are
// accepted.
func (r Resource) StringPtr(name string) *string {
	switch v := r.Attributes[name].(type) {
	case string:
		if v == "" {
			return nil
		}
		return &v
	case map[string]any:
		if s, ok := v["value"].(string); ok && s != "" {
			return &s
		}
	}
	return nil
}

// Bool returns a boolean attribute, false when absent.
func (r Resource) Bool(name string) bool {
	b, _ := r.Attributes[name].(bool)
	return b
}

// Int returns a numeric attribute truncated to int, 0 when absent.
func (r Resource) Int(name string) int {
	switch v := r.Attributes[name].(type) {
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

// Strings returns a string-array attribute.
func (r Resource) Strings(name string) []string {
	raw, ok := r.Attributes[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Raw re-encodes an attribute as JSON, or returns nil when absent.
func (r Resource) Raw(name string) (json.RawMessage, error) {
	v, ok := r.Attributes[name]
	if !ok || v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding attribute %s: %w", name, err)
	}
	return b, nil
}

// Index maps "type/id" to resources for resolving relationships.
type Index map[string]Resource

// NewIndex indexes the given resources.
func NewIndex(resources ...[]Resource) Index {
	idx := Index{}
	for _, set := range resources {
		idx.Add(set)
	}
	return idx
}

// Add indexes resources, keeping the first copy of duplicates.
func (idx Index) Add(resources []Resource) {
	for _, r := range resources {
		key := r.Type + "/" + r.ID
		if _, ok := idx[key]; !ok {
			idx[key] = r
		}
	}
}

// Lookup returns the resource for id.
func (idx Index) Lookup(id Identifier) (Resource, bool) {
	r, ok := idx[id.Type+"/"+id.ID]
	return r, ok
}
