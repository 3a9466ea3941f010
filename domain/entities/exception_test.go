package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewExceptionSnapshot_Empty(t *testing.T) {
	assert.Nil(t, NewExceptionSnapshot(nil))
	assert.Nil(t, NewExceptionSnapshot([]ExceptionEntry{}))
}

func TestExceptionSnapshot_Accessors(t *testing.T) {
	entries := []ExceptionEntry{
		{Code: "XSD001", Message: "bad element"},
		{Message: "no code"},
	}
	s := NewExceptionSnapshot(entries)
	entries[0].Code = "mutated"

	assert.Equal(t, 2, s.Count())

	code, ok := s.Code(0)
	assert.True(t, ok)
	assert.Equal(t, "XSD001", code, "snapshot must not alias the caller's slice")

	msg, ok := s.Message(1)
	assert.True(t, ok)
	assert.Equal(t, "no code", msg)

	_, ok = s.Code(2)
	assert.False(t, ok)
	_, ok = s.Message(-1)
	assert.False(t, ok)

	assert.Equal(t, "XSD001: bad element\nno code", s.String())
}

func TestExceptionSnapshot_Nil(t *testing.T) {
	var s *ExceptionSnapshot
	assert.Equal(t, 0, s.Count())
	_, ok := s.Code(0)
	assert.False(t, ok)
	assert.Equal(t, "", s.String())
}
