/*
Package tindex implements a bounded-memory, producer/consumer pipeline for
building large text indexes from bulk input: a word-frequency counter (one
input file) and an inverted index (a directory of input files).

Input is read in fixed-size chunks, repairing token boundaries across chunk
joins, and tokenized in parallel. Partial indexes are merged into a shared,
memory-bounded index that spills to disk as partition files once a
configured key-count ceiling is exceeded; partitions are merged back into a
single deterministic output once the input is exhausted.

See cmd/tindex for the command-line front end and cmd/tindex-gendoc for a
synthetic corpus generator used to exercise this package at scale.
*/
package tindex
