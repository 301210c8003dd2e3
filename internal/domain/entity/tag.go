package entity

import (
	"fmt"
	"strings"
)

// Tag is a single non-empty label attached to an article.
type Tag string

// Tags is an ordered collection of tags. Order is kept for display; duplicates are allowed.
type Tags []Tag

// NewTag trims label and rejects it when nothing is left.
func NewTag(label string) (Tag, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", &ValidationError{Field: "tags", Message: "tag is empty"}
	}
	return Tag(label), nil
}

// NewTags builds a collection from labels, failing on the first blank one.
// No labels yields an empty, non-nil collection.
func NewTags(labels ...string) (Tags, error) {
	tags := make(Tags, 0, len(labels))
	for i, label := range labels {
		tag, err := NewTag(label)
		if err != nil {
			return nil, &ValidationError{Field: "tags", Message: fmt.Sprintf("tag %d is empty", i)}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Strings returns the tag labels in order.
func (t Tags) Strings() []string {
	out := make([]string, len(t))
	for i, tag := range t {
		out[i] = string(tag)
	}
	return out
}
