// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signer provides a concrete, secp256k1-backed implementation of the
// blockchain.Signer collaborator interface, which signs and verifies 32-byte
// digests such as the BIP143 signature hash. The CLI does not use it.
package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// ECDSASigner signs and verifies secp256k1 ECDSA signatures over 32-byte
// sighash digests, using a single private key.
type ECDSASigner struct {
	privKey *btcec.PrivateKey
}

// NewECDSASigner wraps an existing private key.
func NewECDSASigner(privKey *btcec.PrivateKey) *ECDSASigner {
	return &ECDSASigner{privKey: privKey}
}

// GenerateECDSASigner creates a signer backed by a freshly generated private
// key, for tests that don't care about a specific key.
func GenerateECDSASigner() (*ECDSASigner, error) {
	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return &ECDSASigner{privKey: privKey}, nil
}

// PubKey returns the signer's public key in its 33-byte compressed form.
func (s *ECDSASigner) PubKey() []byte {
	return s.privKey.PubKey().SerializeCompressed()
}

// Sign produces a DER-encoded ECDSA signature over hash, implementing
// blockchain.Signer.
func (s *ECDSASigner) Sign(hash [32]byte) ([]byte, error) {
	sig := ecdsa.Sign(s.privKey, hash[:])
	return sig.Serialize(), nil
}

// Verify checks a DER-encoded signature against a compressed public key and
// a 32-byte digest, implementing blockchain.Signer.
func (s *ECDSASigner) Verify(pubKey, hash, signature []byte) bool {
	pk, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseSignature(signature)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pk)
}
