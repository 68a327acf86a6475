// Package domain holds the core types shared across the competition engine:
// fixed-point scale, trade sides, strategy storage, run configuration and
// aggregate results.
package domain

// Scale is the fixed-point scale for all token amounts: 1 unit = 1e9.
const Scale uint64 = 1_000_000_000

// ScaleF is Scale as a float64, for converting between the wire fixed-point
// representation and the engine's search math.
const ScaleF float64 = 1_000_000_000.0

// StorageSize is the size in bytes of each strategy's persistent storage.
const StorageSize = 1024

// StorageSlots is the number of 8-byte slots in strategy storage.
const StorageSlots = StorageSize / 8

// MaxStrategies is the maximum number of competing strategies admitted to one
// run, excluding the built-in normalizer.
const MaxStrategies = 16

// CompetitorSlots is the number of competing-spot-price slots in the
// post-trade payload. Slots beyond the actual competitor count are NaN.
const CompetitorSlots = 8
