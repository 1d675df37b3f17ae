package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsErrorType_SeesThroughWrapping(t *testing.T) {
	base := NewStudentNotFound(7)
	wrapped := fmt.Errorf("recommend failed: %w", base)

	assert.True(t, IsErrorType(wrapped, ErrorTypeGraph))
	assert.False(t, IsErrorType(wrapped, ErrorTypeMirror))
	assert.False(t, IsErrorType(errors.New("plain"), ErrorTypeGraph))
}

func TestIsNotFound(t *testing.T) {
	err := NewStudentNotFound(3)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", err)))
	assert.False(t, IsNotFound(NewDuplicateStudentID(3, nil)))
}

func TestIsDuplicateID(t *testing.T) {
	err := NewDuplicateStudentID(9, errors.New("constraint violation"))
	assert.True(t, IsDuplicateID(err))
	assert.Equal(t, int64(9), err.ID)
	assert.Contains(t, err.Error(), "duplicate student id: 9")
}

func TestMalformedMirrorRecordMessage(t *testing.T) {
	err := NewMalformedMirrorRecord(4, "name is required")
	assert.True(t, IsErrorType(err, ErrorTypeMirror))
	assert.Contains(t, err.Error(), "malformed mirror record 4")
}
