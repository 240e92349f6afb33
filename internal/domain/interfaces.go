package domain

// TaggedDocument is a pre-tokenized training document with a unique tag.
type TaggedDocument struct {
	ID    string   `json:"id"`
	Words []string `json:"words"`
}

// Corpus is an ordered, read-only sequence of tagged documents.
type Corpus []TaggedDocument

// Pairing links a reference document to a target document. IsPair marks
// ground-truth associations; everything else is a mismatched pair.
type Pairing struct {
	ReferenceID string   `json:"reference_id,omitempty"`
	TargetID    string   `json:"target_id,omitempty"`
	Reference   []string `json:"reference"`
	Target      []string `json:"target"`
	IsPair      bool     `json:"is_pair"`
}

// PairingSet is a fixed collection of pairings used for one split.
type PairingSet []Pairing

// Partition splits the set by the IsPair flag, preserving order.
func (s PairingSet) Partition() (truePairs, falsePairs PairingSet) {
	for _, p := range s {
		if p.IsPair {
			truePairs = append(truePairs, p)
		} else {
			falsePairs = append(falsePairs, p)
		}
	}
	return truePairs, falsePairs
}

// Match is a document tag with its similarity to a query vector.
type Match struct {
	ID    string
	Score float64
}

// Architecture selects the paragraph-vector training mode.
type Architecture int

const (
	// DistributedMemory predicts a word from the document vector and its context.
	DistributedMemory Architecture = iota
	// DistributedBagOfWords predicts the document's words from the document vector alone.
	DistributedBagOfWords
)

func (a Architecture) String() string {
	switch a {
	case DistributedMemory:
		return "dm"
	case DistributedBagOfWords:
		return "dbow"
	default:
		return "unknown"
	}
}

// TrainParams are the hyperparameters handed to a Trainer.
type TrainParams struct {
	VectorSize   int
	Architecture Architecture
	MinCount     int
	Epochs       int
}

// Model is a trained document-embedding model.
type Model interface {
	Dimension() int
	// Infer computes a vector for an arbitrary token sequence.
	Infer(words []string) ([]float64, error)
	// Rank orders every training document by cosine similarity to vec, best first.
	Rank(vec []float64) ([]Match, error)
}

// Trainer builds a Model from a tagged corpus.
type Trainer interface {
	Name() string
	Train(corpus Corpus, params TrainParams) (Model, error)
}
