package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alttabwell/internal/models"
)

func TestEncryptionService_Notes(t *testing.T) {
	svc, err := NewEncryptionService("test-secret")
	require.NoError(t, err)

	t.Run("nil notes stay nil", func(t *testing.T) {
		out, err := svc.EncryptNotes(nil)
		require.NoError(t, err)
		assert.Nil(t, out)

		rec := &models.WellnessRecord{}
		require.NoError(t, svc.DecryptWellness(rec))
		assert.Nil(t, rec.Notes)
	})

	t.Run("round trip through a record", func(t *testing.T) {
		notes := "walked at lunch"
		enc, err := svc.EncryptNotes(&notes)
		require.NoError(t, err)
		require.NotNil(t, enc)
		assert.NotEqual(t, notes, *enc)

		rec := &models.WellnessRecord{Notes: enc}
		require.NoError(t, svc.DecryptWellness(rec))
		assert.Equal(t, notes, *rec.Notes)
	})

	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := NewEncryptionService("")
		assert.Error(t, err)
	})
}
