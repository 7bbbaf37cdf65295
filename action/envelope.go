// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package action

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/iotexproject/go-pkgs/crypto"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
)

type (
	// Envelope wraps an action with the sender's nonce
	Envelope struct {
		nonce   uint64
		payload Action
	}

	// SealedEnvelope is a signed envelope
	SealedEnvelope struct {
		Envelope
		srcPubkey crypto.PublicKey
		signature []byte
	}

	envelopeCore struct {
		Type    uint32
		Nonce   uint64
		Payload []byte
	}

	sealedCore struct {
		Core      envelopeCore
		PubKey    []byte
		Signature []byte
	}
)

// NewEnvelope creates an envelope
func NewEnvelope(nonce uint64, payload Action) *Envelope {
	return &Envelope{
		nonce:   nonce,
		payload: payload,
	}
}

// Nonce returns the nonce
func (elp *Envelope) Nonce() uint64 { return elp.nonce }

// Action returns the payload
func (elp *Envelope) Action() Action { return elp.payload }

func (elp *Envelope) core() (*envelopeCore, error) {
	if elp.payload == nil {
		return nil, errors.Wrap(ErrInvalidAction, "empty payload")
	}
	b, err := rlp.EncodeToBytes(elp.payload)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode payload of type %d", elp.payload.Type())
	}
	return &envelopeCore{
		Type:    elp.payload.Type(),
		Nonce:   elp.nonce,
		Payload: b,
	}, nil
}

// Hash returns the hash the sender signs
func (elp *Envelope) Hash() (hash.Hash256, error) {
	core, err := elp.core()
	if err != nil {
		return hash.ZeroHash256, err
	}
	b, err := rlp.EncodeToBytes(core)
	if err != nil {
		return hash.ZeroHash256, err
	}
	return hash.Hash256b(b), nil
}

// Sign signs the envelope with the private key
func Sign(elp *Envelope, sk crypto.PrivateKey) (*SealedEnvelope, error) {
	h, err := elp.Hash()
	if err != nil {
		return nil, err
	}
	sig, err := sk.Sign(h[:])
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign envelope")
	}
	return &SealedEnvelope{
		Envelope:  *elp,
		srcPubkey: sk.PublicKey(),
		signature: sig,
	}, nil
}

// SrcPubkey returns the sender public key
func (sealed *SealedEnvelope) SrcPubkey() crypto.PublicKey { return sealed.srcPubkey }

// Signature returns a copy of the signature
func (sealed *SealedEnvelope) Signature() []byte {
	sig := make([]byte, len(sealed.signature))
	copy(sig, sealed.signature)
	return sig
}

// SenderAddress returns the address of the sender
func (sealed *SealedEnvelope) SenderAddress() address.Address {
	addr, err := address.FromBytes(sealed.srcPubkey.Hash())
	if err != nil {
		panic(err)
	}
	return addr
}

// Hash returns the hash of the sealed envelope
func (sealed *SealedEnvelope) Hash() (hash.Hash256, error) {
	b, err := sealed.Serialize()
	if err != nil {
		return hash.ZeroHash256, err
	}
	return hash.Hash256b(b), nil
}

// Serialize returns the rlp encoded sealed envelope
func (sealed *SealedEnvelope) Serialize() ([]byte, error) {
	core, err := sealed.core()
	if err != nil {
		return nil, err
	}
	if sealed.srcPubkey == nil {
		return nil, errors.Wrap(ErrInvalidAction, "missing sender public key")
	}
	return rlp.EncodeToBytes(&sealedCore{
		Core:      *core,
		PubKey:    sealed.srcPubkey.Bytes(),
		Signature: sealed.signature,
	})
}

// Deserialize decodes a sealed envelope, the signature is not verified
func (sealed *SealedEnvelope) Deserialize(b []byte) error {
	var sc sealedCore
	if err := rlp.DecodeBytes(b, &sc); err != nil {
		return errors.Wrap(err, "failed to decode sealed envelope")
	}
	payload, err := newPayload(sc.Core.Type)
	if err != nil {
		return err
	}
	if err := rlp.DecodeBytes(sc.Core.Payload, payload); err != nil {
		return errors.Wrapf(err, "failed to decode payload of type %d", sc.Core.Type)
	}
	pk, err := crypto.BytesToPublicKey(sc.PubKey)
	if err != nil {
		return errors.Wrap(err, "failed to load sender public key")
	}
	*sealed = SealedEnvelope{
		Envelope: Envelope{
			nonce:   sc.Core.Nonce,
			payload: payload,
		},
		srcPubkey: pk,
		signature: sc.Signature,
	}
	return nil
}

// VerifySignature checks the signature against the sender public key
func (sealed *SealedEnvelope) VerifySignature() error {
	if sealed.srcPubkey == nil {
		return errors.Wrap(ErrInvalidSignature, "missing sender public key")
	}
	h, err := sealed.Envelope.Hash()
	if err != nil {
		return err
	}
	if !sealed.srcPubkey.Verify(h[:], sealed.signature) {
		return errors.Wrapf(ErrInvalidSignature, "envelope %x", h)
	}
	return nil
}
