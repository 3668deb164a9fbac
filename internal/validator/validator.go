package validator

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/manifest-network/powchain/internal/models"
	"github.com/manifest-network/powchain/internal/pow"
)

// Kind classifies a validation failure.
type Kind int

const (
	StructuralMismatch Kind = iota + 1
	DifficultyNotMet
	ContentTampered
	EmptyChain
)

func (k Kind) String() string {
	switch k {
	case StructuralMismatch:
		return "structural_mismatch"
	case DifficultyNotMet:
		return "difficulty_not_met"
	case ContentTampered:
		return "content_tampered"
	case EmptyChain:
		return "empty_chain"
	default:
		return "unknown"
	}
}

var (
	ErrWrongPreviousHash = errors.New("wrong previous hash")
	ErrDifficultyNotMet  = errors.New("hash does not satisfy difficulty")
	ErrNonSequentialID   = errors.New("non-sequential id")
	ErrContentTampered   = errors.New("content/hash mismatch")
	ErrEmptyChain        = errors.New("chain has no blocks")
)

// ValidationError reports the first check a block failed.
type ValidationError struct {
	Kind     Kind
	BlockID  uint64
	Expected string
	Actual   string
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Kind == EmptyChain {
		return e.Err.Error()
	}
	if e.Expected == "" && e.Actual == "" {
		return fmt.Sprintf("block %d: %s", e.BlockID, e.Err)
	}
	return fmt.Sprintf("block %d: %s: expected %s, got %s", e.BlockID, e.Err, e.Expected, e.Actual)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a validation failure wrapped in err, or zero.
func KindOf(err error) Kind {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return 0
}

// IsValid checks candidate against its predecessor and returns nil when the
// block may follow it. Checks run in a fixed order and the first failure is
// returned as a *ValidationError.
func IsValid(candidate, predecessor models.Block) error {
	if candidate.PreviousHash != predecessor.Hash {
		return &ValidationError{
			Kind:     StructuralMismatch,
			BlockID:  candidate.ID,
			Expected: predecessor.Hash,
			Actual:   candidate.PreviousHash,
			Err:      ErrWrongPreviousHash,
		}
	}

	if !pow.MeetsDifficulty(candidate.Hash) {
		return &ValidationError{
			Kind:     DifficultyNotMet,
			BlockID:  candidate.ID,
			Expected: pow.DifficultyPrefix + "...",
			Actual:   candidate.Hash,
			Err:      ErrDifficultyNotMet,
		}
	}

	if candidate.ID != predecessor.ID+1 {
		return &ValidationError{
			Kind:     StructuralMismatch,
			BlockID:  candidate.ID,
			Expected: fmt.Sprintf("%d", predecessor.ID+1),
			Actual:   fmt.Sprintf("%d", candidate.ID),
			Err:      ErrNonSequentialID,
		}
	}

	if digest := pow.Digest(pow.HeaderOf(candidate)); digest != candidate.Hash {
		return &ValidationError{
			Kind:     ContentTampered,
			BlockID:  candidate.ID,
			Expected: digest,
			Actual:   candidate.Hash,
			Err:      ErrContentTampered,
		}
	}

	return nil
}

// ValidateChain checks every block against its predecessor, starting from the
// second block. The genesis block is trusted as constructed.
func ValidateChain(blocks []models.Block) error {
	if len(blocks) == 0 {
		return &ValidationError{Kind: EmptyChain, Err: ErrEmptyChain}
	}

	for i := 1; i < len(blocks); i++ {
		if err := IsValid(blocks[i], blocks[i-1]); err != nil {
			return err
		}
	}
	return nil
}
