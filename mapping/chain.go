// Package mapping translates between remote resources and the generic
// field data of the orchestration layer.
//
// Fields are owned by groups. A Chain asks its groups in order and the
// first group claiming a field handles it; unclaimed fields are ignored.
package mapping

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-brevo/core"
)

type Group[T any] interface {
	Describe(ctx context.Context) ([]core.FieldDescriptor, error)
	// Read returns claimed=false for fields the group does not own.
	Read(ctx context.Context, target *T, field string) (value core.Value, claimed bool, err error)
	Write(ctx context.Context, target *T, field string, value core.Value) (claimed bool, err error)
}

type Chain[T any] struct {
	groups []Group[T]
}

func NewChain[T any](groups ...Group[T]) *Chain[T] {
	chain := &Chain[T]{}
	for _, group := range groups {
		if group != nil {
			chain.groups = append(chain.groups, group)
		}
	}
	return chain
}

func (c *Chain[T]) Describe(ctx context.Context) ([]core.FieldDescriptor, error) {
	fields := []core.FieldDescriptor{}
	for _, group := range c.groups {
		described, err := group.Describe(ctx)
		if err != nil {
			return nil, err
		}
		fields = append(fields, described...)
	}
	return fields, nil
}

func (c *Chain[T]) Read(ctx context.Context, target *T, field string) (core.Value, bool, error) {
	field = strings.TrimSpace(field)
	for _, group := range c.groups {
		value, claimed, err := group.Read(ctx, target, field)
		if claimed || err != nil {
			return value, claimed, err
		}
	}
	return core.NullValue(), false, nil
}

func (c *Chain[T]) Write(ctx context.Context, target *T, field string, value core.Value) (bool, error) {
	field = strings.TrimSpace(field)
	for _, group := range c.groups {
		claimed, err := group.Write(ctx, target, field, value)
		if claimed || err != nil {
			return claimed, err
		}
	}
	return false, nil
}

// FieldError scopes a mapping failure to one field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return "mapping: field " + e.Field + " failed"
	}
	return "mapping: field " + e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ReadFields reads every requested field it can. A failing field is left
// out of the result and reported in the joined error; the other fields are
// still returned.
func (c *Chain[T]) ReadFields(ctx context.Context, target *T, fields []string) (core.ObjectData, error) {
	data := core.ObjectData{}
	var failures []error
	for _, field := range fields {
		value, claimed, err := c.Read(ctx, target, field)
		if err != nil {
			failures = append(failures, &FieldError{Field: field, Err: err})
			continue
		}
		if claimed {
			data[strings.TrimSpace(field)] = value
		}
	}
	return data, errors.Join(failures...)
}

// WriteFields writes the data in field name order and returns the names no
// group claimed.
func (c *Chain[T]) WriteFields(ctx context.Context, target *T, data core.ObjectData) ([]string, error) {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	unclaimed := []string{}
	for _, name := range names {
		claimed, err := c.Write(ctx, target, name, data[name])
		if err != nil {
			return unclaimed, &FieldError{Field: name, Err: err}
		}
		if !claimed {
			unclaimed = append(unclaimed, name)
		}
	}
	return unclaimed, nil
}
