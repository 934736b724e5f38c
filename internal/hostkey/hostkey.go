// Package hostkey loads the server's SSH host key, creating one on first run.
package hostkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/agadir/agadir/internal/logging"
	"github.com/gofrs/flock"
	"golang.org/x/crypto/ssh"
)

// LoadOrGenerate returns the signer stored at path. The file may hold a raw
// 32 byte ed25519 seed or any PEM private key ssh understands. A missing file
// is replaced by a fresh ed25519 key in PKCS8 PEM form, with the public half
// written next to it as path.pub.
func LoadOrGenerate(path string) (ssh.Signer, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock host key: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return generate(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read host key: %w", err)
	}
	return Parse(data)
}

// Parse decodes a raw ed25519 seed or a PEM private key.
func Parse(data []byte) (ssh.Signer, error) {
	if len(data) == ed25519.SeedSize {
		signer, err := ssh.NewSignerFromKey(ed25519.NewKeyFromSeed(data))
		if err != nil {
			return nil, fmt.Errorf("parse host key seed: %w", err)
		}
		return signer, nil
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse host key: %w", err)
	}
	return signer, nil
}

func generate(path string) (ssh.Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("marshal host key: %w", err)
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, block, 0o600); err != nil {
		return nil, fmt.Errorf("write host key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("encode public key: %w", err)
	}
	if err := os.WriteFile(path+".pub", ssh.MarshalAuthorizedKey(sshPub), 0o644); err != nil {
		return nil, fmt.Errorf("write public key: %w", err)
	}
	logging.Logger().Info().Str("path", path).Str("fingerprint", ssh.FingerprintSHA256(sshPub)).Msg("generated host key")

	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, fmt.Errorf("load generated host key: %w", err)
	}
	return signer, nil
}
