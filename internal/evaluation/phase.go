package evaluation

import (
	"errors"
	"fmt"
)

// ErrPhase is returned when an evaluation stage runs before its prerequisite.
var ErrPhase = errors.New("evaluation stage out of order")

// Phase is the furthest evaluation stage a Modeler has completed.
type Phase int

const (
	Untrained Phase = iota
	Trained
	SelfRecognitionComputed
	TrainPairStatsComputed
	TestPairStatsComputed
	SignificanceComputed
)

func (p Phase) String() string {
	switch p {
	case Untrained:
		return "untrained"
	case Trained:
		return "trained"
	case SelfRecognitionComputed:
		return "self-recognition computed"
	case TrainPairStatsComputed:
		return "train pair stats computed"
	case TestPairStatsComputed:
		return "test pair stats computed"
	case SignificanceComputed:
		return "significance computed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Split selects the train or test pairing set.
type Split int

const (
	Train Split = iota
	Test
)

func (s Split) String() string {
	if s == Test {
		return "test"
	}
	return "train"
}

// pairPhase is the phase reached once the split's pair stats exist.
func (s Split) pairPhase() Phase {
	if s == Test {
		return TestPairStatsComputed
	}
	return TrainPairStatsComputed
}

// Metric selects how two inferred vectors are compared.
type Metric int

const (
	Cosine Metric = iota
	Euclidean
)

// Short is the abbreviation used in column and file names.
func (m Metric) Short() string {
	if m == Euclidean {
		return "ed"
	}
	return "cs"
}

func (m Metric) String() string {
	if m == Euclidean {
		return "Euclidean Distance"
	}
	return "Cosine Similarity"
}

var (
	splits  = []Split{Train, Test}
	metrics = []Metric{Cosine, Euclidean}
)
