// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package idset provides a Set implementation for keeping track of various
// types of numeric IDs (e.g. NodeID, APICID, etc.).
package idset

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// An ID is representative of a non-negative identifier of something like
// a processor APIC ID, a NUMA node ID, etc.
//
// See the hw package for typical use cases.
type ID interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// A Set contains some IDs.
//
// The string form uses the List Format of
// https://www.man7.org/linux/man-pages/man7/cpuset.7.html
// which is also how Linux reports node and cpu lists in sysfs.
type Set[T ID] struct {
	items *set.Set[T]
}

// Empty creates a fresh Set with no elements.
func Empty[T ID]() *Set[T] {
	return &Set[T]{
		items: set.New[T](0),
	}
}

// From returns Set created from the given slice.
func From[T, U ID](slice []U) *Set[T] {
	result := Empty[T]()
	for _, item := range slice {
		result.items.Insert(T(item))
	}
	return result
}

var (
	numberRe = regexp.MustCompile(`^\d+$`)
	spanRe   = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// Parse the given list into a set, returning an error for any piece that is
// neither a number nor a span.
func Parse[T ID](list string) (*Set[T], error) {
	result := Empty[T]()

	for _, piece := range strings.Split(list, ",") {
		piece = strings.TrimSpace(piece)
		switch {
		case piece == "":
			continue
		case numberRe.MatchString(piece):
			id, err := atoi[T](piece)
			if err != nil {
				return nil, err
			}
			result.items.Insert(id)
		case spanRe.MatchString(piece):
			values := spanRe.FindStringSubmatch(piece)
			low, err := atoi[T](values[1])
			if err != nil {
				return nil, err
			}
			high, err := atoi[T](values[2])
			if err != nil {
				return nil, err
			}
			low, high = min(low, high), max(low, high)
			for i := low; ; i++ {
				result.items.Insert(i)
				if i == high {
					break
				}
			}
		default:
			return nil, fmt.Errorf("invalid id list element %q", piece)
		}
	}

	return result, nil
}

func atoi[T ID](s string) (T, error) {
	i, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return T(i), nil
}

// Contains returns whether the Set contains item.
func (s *Set[T]) Contains(item T) bool {
	if s.Empty() {
		return false
	}
	return s.items.Contains(item)
}

// Insert item into the Set.
func (s *Set[T]) Insert(item T) {
	s.items.Insert(item)
}

// Slice returns a sorted slice copy of the Set.
func (s *Set[T]) Slice() []T {
	if s.Empty() {
		return nil
	}
	items := s.items.Slice()
	slices.Sort(items)
	return items
}

// Size returns the number of elements in the Set.
func (s *Set[T]) Size() int {
	if s.Empty() {
		return 0
	}
	return s.items.Size()
}

// Empty returns whether the set is empty.
func (s *Set[T]) Empty() bool {
	if s == nil || s.items == nil {
		return true
	}
	return s.items.Empty()
}

// Equal returns whether s and other contain the same elements.
func (s *Set[T]) Equal(other *Set[T]) bool {
	if s.Empty() || other.Empty() {
		return s.Empty() == other.Empty()
	}
	return s.items.Equal(other.items)
}

// String creates a well-formed list representation of the Set, or the
// empty string.
func (s *Set[T]) String() string {
	ids := s.Slice()
	if len(ids) == 0 {
		return ""
	}

	var parts []string
	emit := func(low, high T) {
		if low == high {
			parts = append(parts, fmt.Sprintf("%d", low))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", low, high))
		}
	}

	low, high := ids[0], ids[0]
	for _, id := range ids[1:] {
		if id == high+1 {
			high = id
			continue
		}
		emit(low, high)
		low, high = id, id
	}
	emit(low, high)

	return strings.Join(parts, ",")
}
