// Package strlist is an ordered, index-addressable list of strings.
package strlist

import (
	"container/list"
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is wrapped by every operation given a bad index.
var ErrIndexOutOfRange = errors.New("index out of range")

// List holds its own copies of the inserted strings. The zero value is an
// empty list ready to use.
type List struct {
	l list.List
}

func New() *List {
	return &List{}
}

// Free drops every element.
func (s *List) Free() {
	s.l.Init()
}

func (s *List) Len() int {
	return s.l.Len()
}

// Get returns the string at index i.
func (s *List) Get(i int) (string, error) {
	e, err := s.at(i, s.l.Len()-1)
	if err != nil {
		return "", err
	}
	return e.Value.(string), nil
}

// Insert places str at index i, shifting later elements up. i == Len appends.
func (s *List) Insert(i int, str string) error {
	if i == s.l.Len() {
		s.l.PushBack(str)
		return nil
	}
	e, err := s.at(i, s.l.Len()-1)
	if err != nil {
		return err
	}
	s.l.InsertBefore(str, e)
	return nil
}

// Append adds str at the end.
func (s *List) Append(str string) {
	s.l.PushBack(str)
}

// Remove deletes the string at index i, shifting later elements down.
func (s *List) Remove(i int) error {
	e, err := s.at(i, s.l.Len()-1)
	if err != nil {
		return err
	}
	s.l.Remove(e)
	return nil
}

// All returns a copy of the contents in order.
func (s *List) All() []string {
	out := make([]string, 0, s.l.Len())
	for e := s.l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(string))
	}
	return out
}

func (s *List) at(i, last int) (*list.Element, error) {
	if i < 0 || i > last {
		return nil, fmt.Errorf("strlist: index %d (len %d): %w", i, s.l.Len(), ErrIndexOutOfRange)
	}
	// walk from whichever end is closer
	if i <= s.l.Len()/2 {
		e := s.l.Front()
		for ; i > 0; i-- {
			e = e.Next()
		}
		return e, nil
	}
	e := s.l.Back()
	for j := s.l.Len() - 1; j > i; j-- {
		e = e.Prev()
	}
	return e, nil
}
