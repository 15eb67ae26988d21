package succinct

/*

# Succinct primitives for sequence-graph indexing

This package provides the small set of bit-level structures the graph index
is assembled from:

- BitVec: a plain, immutable bit vector with O(1) rank and O(log n) select
- SparseBits: a compressed bit vector for low-density vectors, backed by a
  rank/select dictionary
- IntVec: a packed integer vector with a fixed bit width per element
- WaveletTree: an indexable integer sequence supporting access/rank/select
  over values, used for node-rank walks

It follows the same "functional primitives" style as the mmr arithmetic
helpers this project grew out of:

- small, composable types
- explicit byte layouts (see blob.go)
- a burden of knowledge on the caller for hot paths

## Construction and immutability

Every structure here is built once and then frozen. BitVec panics on Set
after Seal, and queries on an unsealed BitVec panic in rank/select because
the directory does not exist yet. IntVec has no such guard: Set works at any
time, and the index only writes its IntVecs during the build pass. The query
surfaces never allocate into the structure.

## Serialization

Each structure encodes to a self-describing payload via MarshalBinary and is
framed by the tagged-blob helpers in blob.go. Rank and select directories are
views over their parent vector: they are never persisted, only rebuilt after
decode. All integers are little-endian.

*/
