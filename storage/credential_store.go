package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

var ErrCredentialNotFound = errors.New("credential not found")

// CredentialStore holds the reporter's email. It never touches the
// config file.
type CredentialStore interface {
	GetEmail() (string, error)
	SetEmail(email string) error
	DeleteEmail() error
}

// KeyringStore keeps the email in the OS secret store under
// (Service, Account).
type KeyringStore struct {
	Service string
	Account string
	Log     *zap.Logger
}

func NewKeyringStore(service, account string, logger *zap.Logger) *KeyringStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeyringStore{Service: service, Account: account, Log: logger}
}

func (s *KeyringStore) GetEmail() (string, error) {
	value, err := keyring.Get(s.Service, s.Account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrCredentialNotFound
		}
		return "", fmt.Errorf("reading keyring entry %s/%s: %w", s.Service, s.Account, err)
	}
	email := strings.TrimSpace(value)
	if email == "" {
		return "", ErrCredentialNotFound
	}
	return email, nil
}

func (s *KeyringStore) SetEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email cannot be empty")
	}
	if err := keyring.Set(s.Service, s.Account, email); err != nil {
		return fmt.Errorf("writing keyring entry %s/%s: %w", s.Service, s.Account, err)
	}
	s.Log.Debug("stored email in keyring",
		zap.String("service", s.Service),
		zap.String("account", s.Account),
	)
	return nil
}

func (s *KeyringStore) DeleteEmail() error {
	if err := keyring.Delete(s.Service, s.Account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialNotFound
		}
		return fmt.Errorf("deleting keyring entry %s/%s: %w", s.Service, s.Account, err)
	}
	s.Log.Debug("removed email from keyring",
		zap.String("service", s.Service),
		zap.String("account", s.Account),
	)
	return nil
}
