package constants

import "time"

// Balancing engine limits.
const (
	// MaxPartitionSamples caps how many candidate partitions are
	// evaluated; above this the search samples uniformly instead of
	// scoring every partition.
	MaxPartitionSamples = 1000

	// FingerprintHistorySize bounds the recent-composition history
	// used for repeat detection.
	FingerprintHistorySize = 100

	DefaultCompositions = 3

	NoveltyBonusFactor  = 0.8
	RepeatPenaltyFactor = 1.2
)

// Position analyzer scoring.
const (
	PreferredPositionBonus = 20.0
	FlexPositionBonus      = 5.0
)

// Civilization suggestion.
const (
	MapFitThreshold = 7
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
