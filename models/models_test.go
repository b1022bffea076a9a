package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTableNames tests the custom table names
func TestTableNames(t *testing.T) {
	assert.Equal(t, "runs", Run{}.TableName())
	assert.Equal(t, "unresolved_types", UnresolvedType{}.TableName())
}

// TestNewID tests identifier shape and uniqueness
func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.Len(t, a, 20)
	assert.NotEqual(t, a, b)
}
