package seqidx

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/veraison/go-cose"
)

// IndexState is the signed commitment to a serialized index. The index is
// write-once, so a single state identifies it for its whole lifetime.
type IndexState struct {
	SeqLength uint64 `cbor:"1,keyasint"`
	NodeCount uint64 `cbor:"2,keyasint"`
	EdgeCount uint64 `cbor:"3,keyasint"`
	PathCount uint64 `cbor:"4,keyasint"`

	// Checksum is the SHA-256 of the serialized index bytes. It is detached
	// before the sealed message is published, so a verifier must recompute
	// it from the blob they hold.
	Checksum []byte `cbor:"5,keyasint"`

	// Timestamp is the unix time (milliseconds) the caller passes to
	// StateOf. Including it allows the same index to be re-sealed.
	Timestamp int64 `cbor:"6,keyasint"`
}

// StateOf derives the sealable state for serialized index bytes.
func (x *Index) StateOf(serialized []byte, timestamp int64) IndexState {
	sum := sha256.Sum256(serialized)
	return IndexState{
		SeqLength: x.seqLen,
		NodeCount: x.nodeCount,
		EdgeCount: x.edgeCount,
		PathCount: x.pathCount,
		Checksum:  sum[:],
		Timestamp: timestamp,
	}
}

// Sealer produces COSE Sign1 seals over index states.
type Sealer struct {
	issuer    string
	cborCodec dtcbor.CBORCodec
}

func NewSealer(issuer string, cborCodec dtcbor.CBORCodec) Sealer {
	return Sealer{
		issuer:    issuer,
		cborCodec: cborCodec,
	}
}

// Sign1 seals state. The checksum is detached from the published payload so
// that verifiers are forced to recompute it from the index blob.
func (s Sealer) Sign1(
	coseSigner cose.Signer, keyIdentifier string, publicKey *ecdsa.PublicKey,
	subject string, state IndexState, external []byte,
) ([]byte, error) {
	payload, err := s.cborCodec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}

	coseHeaders := cose.Headers{
		Protected: cose.ProtectedHeader{
			dtcose.HeaderLabelCWTClaims: dtcose.NewCNFClaim(
				s.issuer, subject, keyIdentifier, coseSigner.Algorithm(), *publicKey),
		},
	}

	msg := cose.Sign1Message{
		Headers: coseHeaders,
		Payload: payload,
	}
	if err = msg.Sign(rand.Reader, external, coseSigner); err != nil {
		return nil, err
	}

	state.Checksum = nil
	if payload, err = s.cborCodec.MarshalCBOR(state); err != nil {
		return nil, err
	}
	msg.Payload = payload

	return msg.MarshalCBOR()
}

// DecodeSealedState parses a sealed message. The returned state carries no
// checksum and will not verify until the caller restores one with
// VerifySealedState.
func DecodeSealedState(codec dtcbor.CBORCodec, msg []byte) (*dtcose.CoseSign1Message, IndexState, error) {
	signed, err := dtcose.NewCoseSign1MessageFromCBOR(msg)
	if err != nil {
		return nil, IndexState{}, err
	}
	var unverified IndexState
	if err = codec.UnmarshalInto(signed.Payload, &unverified); err != nil {
		return nil, IndexState{}, err
	}
	return signed, unverified, nil
}

// VerifySealedState restores the checksum the caller recomputed from the
// index blob and verifies the seal with the public key committed in its CWT
// claims.
func VerifySealedState(
	codec dtcbor.CBORCodec, signed *dtcose.CoseSign1Message,
	unverified IndexState, checksum []byte, external []byte,
) error {
	unverified.Checksum = checksum
	payload, err := codec.MarshalCBOR(unverified)
	if err != nil {
		return err
	}
	signed.Payload = payload
	return signed.VerifyWithCWTPublicKey(external)
}

// NewSealCodec returns the deterministic CBOR codec seals are encoded with.
func NewSealCodec() (dtcbor.CBORCodec, error) {
	codec, err := dtcbor.NewCBORCodec(
		dtcbor.NewDeterministicEncOpts(),
		dtcbor.NewDeterministicDecOpts(),
	)
	if err != nil {
		return dtcbor.CBORCodec{}, err
	}
	return codec, nil
}
