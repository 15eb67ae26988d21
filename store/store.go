// Package store persists serialized sequence-graph indexes in a local
// directory. Each graph set is keyed by a uuid and holds a numbered series
// of write-once index files, optionally accompanied by a detached seal over
// the file contents. A production deployment can put the same layout behind
// an object store; the index files are plain blobs.
package store

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"

	"github.com/sequia/go-seqgraph/seqidx"
)

const (
	indexExt = ".sgix"
	sealExt  = ".sgix.sth"
)

var (
	ErrIndexNotFound = errors.New("store: index not found")
	ErrSealNotFound  = errors.New("store: seal not found")
	ErrSealMismatch  = errors.New("store: seal does not match index contents")
)

// IndexStore reads and writes index files under a root directory.
type IndexStore struct {
	log logger.Logger
	dir string
}

func NewIndexStore(log logger.Logger, dir string) *IndexStore {
	return &IndexStore{log: log, dir: dir}
}

// NewSetID mints the identity for a fresh graph set.
func NewSetID() uuid.UUID {
	return uuid.New()
}

func (s *IndexStore) setDir(setID uuid.UUID) string {
	return filepath.Join(s.dir, setID.String())
}

func (s *IndexStore) indexPath(setID uuid.UUID, n uint32) string {
	return filepath.Join(s.setDir(setID), fmt.Sprintf("%08d%s", n, indexExt))
}

func (s *IndexStore) sealPath(setID uuid.UUID, n uint32) string {
	return filepath.Join(s.setDir(setID), fmt.Sprintf("%08d%s", n, sealExt))
}

// Head returns the highest stored index number for the set, or
// ErrIndexNotFound when the set is empty.
func (s *IndexStore) Head(setID uuid.UUID) (uint32, error) {
	entries, err := os.ReadDir(s.setDir(setID))
	if err != nil {
		return 0, fmt.Errorf("%w: set %s", ErrIndexNotFound, setID)
	}
	var numbers []uint32
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, indexExt) || strings.HasSuffix(name, sealExt) {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimSuffix(name, indexExt), 10, 32)
		if err != nil {
			continue
		}
		numbers = append(numbers, uint32(n))
	}
	if len(numbers) == 0 {
		return 0, fmt.Errorf("%w: set %s", ErrIndexNotFound, setID)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers[len(numbers)-1], nil
}

// Save writes x as the next numbered index of the set and returns its
// number and serialized bytes, which callers typically go on to seal.
func (s *IndexStore) Save(setID uuid.UUID, x *seqidx.Index) (uint32, []byte, error) {
	n := uint32(0)
	if head, err := s.Head(setID); err == nil {
		n = head + 1
	}
	blob, err := x.SerializeBytes()
	if err != nil {
		return 0, nil, err
	}
	if err := os.MkdirAll(s.setDir(setID), 0o755); err != nil {
		return 0, nil, err
	}
	path := s.indexPath(setID, n)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return 0, nil, err
	}
	if s.log != nil {
		s.log.Infof("stored index %s (%d bytes)", path, len(blob))
	}
	return n, blob, nil
}

// SaveSeal stores sealed bytes alongside index n of the set.
func (s *IndexStore) SaveSeal(setID uuid.UUID, n uint32, sealed []byte) error {
	if _, err := os.Stat(s.indexPath(setID, n)); err != nil {
		return fmt.Errorf("%w: set %s index %d", ErrIndexNotFound, setID, n)
	}
	return os.WriteFile(s.sealPath(setID, n), sealed, 0o644)
}

// Open loads index n of the set without consulting any seal.
func (s *IndexStore) Open(setID uuid.UUID, n uint32, opts ...seqidx.Option) (*seqidx.Index, error) {
	f, err := os.Open(s.indexPath(setID, n))
	if err != nil {
		return nil, fmt.Errorf("%w: set %s index %d", ErrIndexNotFound, setID, n)
	}
	defer f.Close()
	return seqidx.Load(f, opts...)
}

// OpenVerified loads index n of the set, recomputes its checksum and
// verifies the stored seal before returning the index and the sealed state.
func (s *IndexStore) OpenVerified(setID uuid.UUID, n uint32, opts ...seqidx.Option) (*seqidx.Index, seqidx.IndexState, error) {
	blob, err := os.ReadFile(s.indexPath(setID, n))
	if err != nil {
		return nil, seqidx.IndexState{}, fmt.Errorf("%w: set %s index %d", ErrIndexNotFound, setID, n)
	}
	sealed, err := os.ReadFile(s.sealPath(setID, n))
	if err != nil {
		return nil, seqidx.IndexState{}, fmt.Errorf("%w: set %s index %d", ErrSealNotFound, setID, n)
	}

	codec, err := seqidx.NewSealCodec()
	if err != nil {
		return nil, seqidx.IndexState{}, err
	}
	signed, unverified, err := seqidx.DecodeSealedState(codec, sealed)
	if err != nil {
		return nil, seqidx.IndexState{}, err
	}
	sum := sha256.Sum256(blob)
	if err := seqidx.VerifySealedState(codec, signed, unverified, sum[:], nil); err != nil {
		return nil, seqidx.IndexState{}, fmt.Errorf("%w: %v", ErrSealMismatch, err)
	}

	x, err := seqidx.Load(bytes.NewReader(blob), opts...)
	if err != nil {
		return nil, seqidx.IndexState{}, err
	}
	unverified.Checksum = sum[:]
	if s.log != nil {
		s.log.Debugf("verified index %s/%08d", setID, n)
	}
	return x, unverified, nil
}
