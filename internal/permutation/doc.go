// Package permutation assesses the significance of directional tuning by
// relabelling responses across stimulus angles.
//
// Two tests are provided:
//
//   - [Bootstrap]: refits the two-peak von Mises model to every shuffle and
//     counts how often a shuffle fits better than the real data.
//   - [FastTuning]: compares the magnitude of the second circular harmonic
//     against its permutation distribution without fitting.
//
// Both return a one-sided p-value with a 0.5/shuffles continuity correction,
// so p is never zero.
//
// # Random Streams
//
// With Options.Workers <= 1 every shuffle draws from one stream (Options.Rand,
// or a source seeded with Options.Seed). With more workers the shuffles are
// split into contiguous chunks and chunk k draws from its own source seeded
// with Options.Seed+k, so results are reproducible for a fixed worker count.
package permutation
