package store

import (
	"crypto/elliptic"
	"os"
	"testing"

	"github.com/datatrails/go-datatrails-common/azkeys"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"
	"gotest.tools/v3/assert"

	"github.com/sequia/go-seqgraph/seqidx"
)

func TestMain(m *testing.M) {
	logger.New("NOOP")
	code := m.Run()
	logger.OnExit()
	os.Exit(code)
}

func buildTestIndex(t *testing.T) *seqidx.Index {
	t.Helper()
	b := seqidx.NewBuilder()
	err := b.ConsumeGraph(&seqidx.Graph{
		Nodes: []seqidx.Node{
			{ID: 1, Sequence: "ACG"},
			{ID: 2, Sequence: "TT"},
		},
		Edges: []seqidx.Edge{{From: 1, To: 2}},
		Paths: []seqidx.Path{{
			Name: "p",
			Mappings: []seqidx.Mapping{
				{Position: seqidx.Position{NodeID: 1}},
				{Position: seqidx.Position{NodeID: 2}},
			},
		}},
	})
	assert.NilError(t, err)
	x, err := b.Build()
	assert.NilError(t, err)
	return x
}

func TestSaveOpenRoundTrip(t *testing.T) {
	s := NewIndexStore(nil, t.TempDir())
	setID := NewSetID()
	x := buildTestIndex(t)

	n, blob, err := s.Save(setID, x)
	assert.NilError(t, err)
	assert.Equal(t, uint32(0), n)
	assert.Assert(t, len(blob) > 0)

	loaded, err := s.Open(setID, n)
	assert.NilError(t, err)
	assert.Equal(t, x.NodeCount(), loaded.NodeCount())
	seq, err := loaded.NodeSequence(1)
	assert.NilError(t, err)
	assert.Equal(t, "ACG", seq)
}

func TestSaveNumbersAscend(t *testing.T) {
	s := NewIndexStore(nil, t.TempDir())
	setID := NewSetID()
	x := buildTestIndex(t)

	n0, _, err := s.Save(setID, x)
	assert.NilError(t, err)
	n1, _, err := s.Save(setID, x)
	assert.NilError(t, err)
	assert.Equal(t, uint32(0), n0)
	assert.Equal(t, uint32(1), n1)

	head, err := s.Head(setID)
	assert.NilError(t, err)
	assert.Equal(t, uint32(1), head)
}

func TestHeadOfEmptySet(t *testing.T) {
	s := NewIndexStore(nil, t.TempDir())
	_, err := s.Head(uuid.New())
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestOpenVerified(t *testing.T) {
	s := NewIndexStore(nil, t.TempDir())
	setID := NewSetID()
	x := buildTestIndex(t)

	n, blob, err := s.Save(setID, x)
	assert.NilError(t, err)

	key := seqidx.TestGenerateECKey(t, elliptic.P256())
	sealer := seqidx.TestNewSealer(t, "seqgraph-attestor")
	coseSigner := azkeys.NewTestCoseSigner(t, key)
	pubKey, err := coseSigner.PublicKey()
	assert.NilError(t, err)

	sealed, err := sealer.Sign1(
		coseSigner, coseSigner.KeyIdentifier(), pubKey,
		setID.String(), x.StateOf(blob, 1234), nil)
	assert.NilError(t, err)
	assert.NilError(t, s.SaveSeal(setID, n, sealed))

	loaded, state, err := s.OpenVerified(setID, n)
	assert.NilError(t, err)
	assert.Equal(t, x.NodeCount(), state.NodeCount)
	assert.Equal(t, x.SeqLength(), loaded.SeqLength())
}

func TestOpenVerifiedRejectsTampering(t *testing.T) {
	s := NewIndexStore(nil, t.TempDir())
	setID := NewSetID()
	x := buildTestIndex(t)

	n, blob, err := s.Save(setID, x)
	assert.NilError(t, err)

	key := seqidx.TestGenerateECKey(t, elliptic.P256())
	sealer := seqidx.TestNewSealer(t, "seqgraph-attestor")
	coseSigner := azkeys.NewTestCoseSigner(t, key)
	pubKey, err := coseSigner.PublicKey()
	assert.NilError(t, err)

	// seal a different state than the stored file
	blob = append(blob, 0xff)
	sealed, err := sealer.Sign1(
		coseSigner, coseSigner.KeyIdentifier(), pubKey,
		setID.String(), x.StateOf(blob, 1234), nil)
	assert.NilError(t, err)
	assert.NilError(t, s.SaveSeal(setID, n, sealed))

	_, _, err = s.OpenVerified(setID, n)
	assert.ErrorIs(t, err, ErrSealMismatch)
}
