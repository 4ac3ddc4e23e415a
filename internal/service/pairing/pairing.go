// internal/service/pairing/pairing.go
package pairing

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dinerozz/focus-guard-backend/config"
	"github.com/dinerozz/focus-guard-backend/internal/store"
	"github.com/dinerozz/focus-guard-backend/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

// PairingRecord is the persisted extension pairing: one API key per install.
type PairingRecord struct {
	APIKey    string    `json:"apiKey"`
	CreatedAt time.Time `json:"createdAt"`
}

// PairingService owns extension API-key pairing and admin authentication.
type PairingService interface {
	Load(ctx context.Context) error
	APIKey() string
	RegenerateAPIKey(ctx context.Context) (string, error)
	ValidateAPIKey(key string) bool
	AuthenticateAdmin(password string) (string, error)
	ValidateAdminToken(token string) error
}

type pairingService struct {
	mu     sync.RWMutex
	store  store.Store
	auth   config.AuthConfig
	record PairingRecord
}

func NewPairingService(st store.Store, auth config.AuthConfig) PairingService {
	return &pairingService{store: st, auth: auth}
}

// Load restores the pairing record, generating a fresh API key on first run.
func (s *pairingService) Load(ctx context.Context) error {
	var stored PairingRecord
	err := s.store.Get(ctx, store.KeyPairing, &stored)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			key, genErr := s.generate(ctx)
			if genErr != nil {
				return genErr
			}
			log.Printf("✅ Generated extension API key: %s", key)
			return nil
		}
		return fmt.Errorf("failed to load pairing record: %w", err)
	}

	s.mu.Lock()
	s.record = stored
	s.mu.Unlock()
	return nil
}

func (s *pairingService) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.APIKey
}

func (s *pairingService) RegenerateAPIKey(ctx context.Context) (string, error) {
	return s.generate(ctx)
}

func (s *pairingService) ValidateAPIKey(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if key == "" || s.record.APIKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.record.APIKey)) == 1
}

func (s *pairingService) AuthenticateAdmin(password string) (string, error) {
	if s.auth.AdminPasswordHash == "" {
		return "", fmt.Errorf("admin access is not configured")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.auth.AdminPasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid password")
	}

	token, err := utils.GenerateToken([]byte(s.auth.JWTSecret), "admin")
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

func (s *pairingService) ValidateAdminToken(token string) error {
	_, err := utils.ValidateToken([]byte(s.auth.JWTSecret), token)
	return err
}

func (s *pairingService) generate(ctx context.Context) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}

	record := PairingRecord{
		APIKey:    "fgk_" + hex.EncodeToString(raw),
		CreatedAt: time.Now(),
	}

	if err := store.SetWithRetry(ctx, s.store, store.KeyPairing, record); err != nil {
		return "", fmt.Errorf("failed to persist pairing record: %w", err)
	}

	s.mu.Lock()
	s.record = record
	s.mu.Unlock()
	return record.APIKey, nil
}
