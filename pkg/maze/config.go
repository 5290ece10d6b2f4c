package maze

import (
	"time"

	"github.com/teslashibe/go-mazerunner/pkg/decision"
	"github.com/teslashibe/go-mazerunner/pkg/pathmem"
	"github.com/teslashibe/go-mazerunner/pkg/sensor"
	"github.com/teslashibe/go-mazerunner/pkg/steering"
)

// CrawlConfig holds the blind crawl used to center the sensor bar over a
// junction before classifying it.
type CrawlConfig struct {
	ProbeSpeed    int           // short advance before the side read
	ProbeDuration time.Duration
	AlignSpeed    int           // brings the axle over the junction
	AlignDuration time.Duration
	Settle        time.Duration // stopped before the center read
}

// DefaultCrawlConfig returns the timings of the reference platform. The
// probe duration is tight: the side branches are only visible for a few
// millimetres of travel.
func DefaultCrawlConfig() CrawlConfig {
	return CrawlConfig{
		ProbeSpeed:    61,
		ProbeDuration: 38 * time.Millisecond,
		AlignSpeed:    40,
		AlignDuration: 140 * time.Millisecond,
		Settle:        100 * time.Millisecond,
	}
}

// Config is the snapshot a run is started with. Changes made while a run
// is in progress are not observed.
type Config struct {
	Rule      decision.Rule
	Polarity  sensor.Polarity
	Steering  steering.Config
	Actuation decision.ActuationConfig
	Crawl     CrawlConfig

	// StartDelay is the countdown before each run.
	StartDelay time.Duration

	// Capacity bounds the decision history.
	Capacity int
}

// DefaultConfig returns a right-hand, dark-line configuration.
func DefaultConfig() Config {
	return Config{
		Rule:       decision.RightHand,
		Polarity:   sensor.DarkLine,
		Steering:   steering.DefaultConfig(),
		Actuation:  decision.DefaultActuationConfig(),
		Crawl:      DefaultCrawlConfig(),
		StartDelay: 3 * time.Second,
		Capacity:   pathmem.DefaultCapacity,
	}
}
