// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram implements the core scram.Hasher port with the
// github.com/xdg-go/scram module.
package scram

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/momeni/fleetsync/pkg/core/scram"
	xscram "github.com/xdg-go/scram"
)

// MinIterations is the least accepted number of hash iterations.
const MinIterations = 4096

// Mechanism is a SCRAM mechanism with a specific hash function.
type Mechanism struct {
	gen    xscram.HashGeneratorFcn
	keyLen int // bytes
	name   string
}

var _ scram.Hasher = (*Mechanism)(nil)

// SHA1 returns the SCRAM-SHA-1 mechanism.
func SHA1() *Mechanism {
	return &Mechanism{gen: xscram.SHA1, keyLen: 160 / 8, name: "SCRAM-SHA-1"}
}

// SHA256 returns the SCRAM-SHA-256 mechanism.
func SHA256() *Mechanism {
	return &Mechanism{gen: xscram.SHA256, keyLen: 256 / 8, name: "SCRAM-SHA-256"}
}

// Name returns the mechanism name, e.g., "SCRAM-SHA-256".
func (m *Mechanism) Name() string {
	return m.name
}

// Hash normalizes pass with SASLprep and hashes it with the base64
// encoded salt and iters iterations. An empty salt is replaced by a
// random one with the length of the hash output.
func (m *Mechanism) Hash(pass, salt string, iters int) (string, error) {
	switch {
	case pass == "":
		return "", errors.New("password must be non-empty")
	case iters < MinIterations:
		return "", fmt.Errorf("iters (%d) is less than %d", iters, MinIterations)
	}
	if salt == "" {
		b := make([]byte, m.keyLen)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("creating random salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(b)
	}
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decoding base64 salt: %w", err)
	}
	c, err := m.gen.NewClient("fleetsync", pass, "")
	if err != nil {
		return "", fmt.Errorf("creating SCRAM client: %w", err)
	}
	sc := c.GetStoredCredentials(xscram.KeyFactors{
		Salt:  string(rawSalt),
		Iters: iters,
	})
	return fmt.Sprintf(
		"%s$%d:%s$%s:%s",
		m.name, iters, salt,
		base64.StdEncoding.EncodeToString(sc.StoredKey),
		base64.StdEncoding.EncodeToString(sc.ServerKey),
	), nil
}
