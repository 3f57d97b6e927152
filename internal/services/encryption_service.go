package services

import (
	"alttabwell/internal/crypto"
	"alttabwell/internal/models"
)

const notesPurpose = "alttabwell/wellness-notes/v1"

// EncryptionService wraps the cipher with domain-specific methods
type EncryptionService struct {
	cipher *crypto.Cipher
}

func NewEncryptionService(secret string) (*EncryptionService, error) {
	c, err := crypto.NewCipherFromSecret(secret, notesPurpose)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{cipher: c}, nil
}

// EncryptNotes encrypts wellness notes before they are stored. nil stays nil.
func (s *EncryptionService) EncryptNotes(notes *string) (*string, error) {
	if notes == nil {
		return nil, nil
	}
	enc, err := s.cipher.Encrypt(*notes)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

// DecryptWellness decrypts sensitive wellness fields after retrieving from DB
func (s *EncryptionService) DecryptWellness(rec *models.WellnessRecord) error {
	if rec == nil || rec.Notes == nil {
		return nil
	}
	dec, err := s.cipher.Decrypt(*rec.Notes)
	if err != nil {
		return err
	}
	rec.Notes = &dec
	return nil
}
