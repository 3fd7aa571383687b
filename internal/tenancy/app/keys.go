package app

import (
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
)

// secrets is the key material loaded at startup.
type secrets struct {
	masterKey []byte
	pepper    string
	signer    *jwtx.Signer
}

// loadSecrets reads or creates the master key, pepper and signing key.
//
// Outside production a missing master key falls back to an ephemeral one,
// which makes every stored TOTP secret unreadable after a restart.
func loadSecrets(cfg Config, logger *slog.Logger) (secrets, error) {
	master, err := cryptox.LoadMasterKey(cryptox.MasterKeySource{
		Path:           cfg.MasterKeyPath,
		Value:          cfg.MasterKey,
		AllowEphemeral: !cfg.Production(),
	})
	if err != nil {
		return secrets{}, fmt.Errorf("failed to load master key: %w", err)
	}
	if cfg.MasterKeyPath == "" && cfg.MasterKey == "" {
		logger.Warn("no master key configured, using an ephemeral key")
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return secrets{}, fmt.Errorf("failed to load pepper: %w", err)
	}

	priv, err := cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyPath)
	if err != nil {
		return secrets{}, fmt.Errorf("failed to load signing key: %w", err)
	}
	signer, err := jwtx.NewSigner(keyID(priv), priv)
	if err != nil {
		return secrets{}, fmt.Errorf("failed to create signer: %w", err)
	}
	logger.Info("signing key loaded", "kid", signer.KID())

	return secrets{masterKey: master, pepper: pepper, signer: signer}, nil
}

// keyID is stable for a given key so tokens survive restarts.
func keyID(priv ed25519.PrivateKey) string {
	pub := priv.Public().(ed25519.PublicKey)
	return cryptox.FingerprintToken(string(pub))[:16]
}

func loadBlocklist(cfg Config) (*domain.DomainBlocklist, error) {
	if cfg.BlocklistFile == "" {
		return domain.DefaultDomainBlocklist(), nil
	}

	f, err := os.Open(cfg.BlocklistFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open blocklist: %w", err)
	}
	defer f.Close()

	return domain.LoadDomainBlocklist(f)
}
