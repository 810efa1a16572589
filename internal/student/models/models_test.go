package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentregistry/pkg/domain"
	dErrors "studentregistry/pkg/domain-errors"
)

func TestUpsertRequestValidate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		input, err := UpsertStudentRequest{DOB: "20010403", Phone: "09012345678", Name: "山田太郎"}.Validate()
		require.NoError(t, err)
		assert.Equal(t, domain.DOB("20010403"), input.DOB)
		assert.Equal(t, domain.Phone("09012345678"), input.Phone)
		assert.Equal(t, "山田太郎", input.Name)
	})

	t.Run("trims name", func(t *testing.T) {
		input, err := UpsertStudentRequest{DOB: "20010403", Phone: "09012345678", Name: "  Taro  "}.Validate()
		require.NoError(t, err)
		assert.Equal(t, "Taro", input.Name)
	})

	t.Run("rejects bad dob", func(t *testing.T) {
		_, err := UpsertStudentRequest{DOB: "2001-04-03", Phone: "09012345678", Name: "Taro"}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects bad phone", func(t *testing.T) {
		_, err := UpsertStudentRequest{DOB: "20010403", Phone: "12345", Name: "Taro"}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := UpsertStudentRequest{DOB: "20010403", Phone: "09012345678", Name: "   "}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestStudentClone(t *testing.T) {
	orig := &Student{ID: "2001040309012345678", Name: "Taro", Version: 3}
	cp := orig.Clone()
	cp.Name = "Jiro"
	cp.Version = 4

	assert.Equal(t, "Taro", orig.Name)
	assert.Equal(t, 3, orig.Version)
}
