package seqidx

/*

# Succinct, self-indexed sequence graph

This package builds and queries a compressed representation of a sequence
graph: a directed graph whose nodes carry DNA strings, whose edges say how
node ends join, and whose named paths are ordered walks used to reconstruct
longer sequences.

The index is write-once. A Builder drains unordered graph record batches,
then emits a fixed set of parallel succinct vectors in one deterministic
pass:

- the concatenated 3-bit DNA text with node-start marks
- forward and reverse adjacency in an entity-ordered layout
- per-path walk structures answering positional queries
- a suffix-array name locator over the delimited path names
- the entity-to-path membership table

Every query decomposes into rank/select calls on these vectors, so query
cost depends on the query shape, not on graph size. Queries never mutate the
index and are safe to issue concurrently once it is built or loaded.

## Entity numbering

Nodes and edges share one 1-based address space, the entry positions of the
forward table: a node's entity rank is the position of its header entry and
an edge's is the position of its link entry, so node and edge ranks
interleave in emission order. The forward emission order is fixed (per source
node: the from_start=false links, then the from_start=true links, each group
ascending by destination rank then side), which is what makes edge entity
ranks reproducible across builds.

## Serialization

Serialize writes the structures as tagged little-endian blobs in a single
fixed order; Load reads them back and rebuilds the rank/select directories,
which are views and never persisted. Two builds over the same record set
produce byte-identical files.

*/
