package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/manifest-network/powchain/internal/events"
	"github.com/manifest-network/powchain/internal/models"
	"github.com/manifest-network/powchain/internal/pow"
	"github.com/manifest-network/powchain/internal/validator"
)

var (
	ErrNotInitialized     = errors.New("ledger has no genesis block")
	ErrAlreadyInitialized = errors.New("ledger already has a genesis block")
	ErrIndexOutOfRange    = errors.New("block index out of range")
)

// Ledger is an append-only sequence of mined blocks. Position 0 holds the
// genesis block.
type Ledger struct {
	mu sync.RWMutex

	id     uuid.UUID
	blocks []models.Block
	// tipHash is the hash of the last block this ledger committed. New blocks
	// link to it, so an in-place edit of the stored tail is caught on append.
	tipHash string

	miner *pow.Miner
	sink  events.Sink
	now   func() time.Time
}

type Option func(*Ledger)

func WithSink(sink events.Sink) Option {
	return func(l *Ledger) {
		if sink != nil {
			l.sink = sink
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithMaxAttempts caps every nonce search. Zero means unbounded.
func WithMaxAttempts(n uint64) Option {
	return func(l *Ledger) { l.miner.MaxAttempts = n }
}

func WithProgressInterval(n uint64) Option {
	return func(l *Ledger) { l.miner.ProgressInterval = n }
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		id:     uuid.New(),
		blocks: make([]models.Block, 0),
		miner:  pow.NewMiner(nil),
		sink:   events.Nop,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.miner.Sink = l.sink
	return l
}

// ID identifies this ledger instance in logs and API responses.
func (l *Ledger) ID() uuid.UUID {
	return l.id
}

// InitializeGenesis mines the genesis block and appends it without
// validation. It fails if the ledger already has blocks.
func (l *Ledger) InitializeGenesis(ctx context.Context, data string) (models.Block, error) {
	if l.Len() != 0 {
		return models.Block{}, ErrAlreadyInitialized
	}

	genesis, err := l.mine(ctx, 1, pow.SentinelHash, data, []models.Transaction{models.DefaultTransaction()})
	if err != nil {
		return models.Block{}, errors.WithMessage(err, "failed to mine genesis block")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.blocks) != 0 {
		return models.Block{}, ErrAlreadyInitialized
	}
	l.blocks = append(l.blocks, genesis)
	l.tipHash = genesis.Hash
	l.sink.Emit(events.Event{Kind: events.BlockAccepted, BlockID: genesis.ID, Hash: genesis.Hash})

	return genesis.Clone(), nil
}

// TryAppend mines a block carrying data and txs on top of the current tip and
// commits it if it validates against the stored tail. A rejected block is
// reported as a *validator.ValidationError and leaves the ledger unchanged.
func (l *Ledger) TryAppend(ctx context.Context, data string, txs []models.Transaction) (models.Block, error) {
	l.mu.RLock()
	n := len(l.blocks)
	tipHash := l.tipHash
	l.mu.RUnlock()

	if n == 0 {
		return models.Block{}, ErrNotInitialized
	}

	owned := make([]models.Transaction, len(txs))
	copy(owned, txs)

	candidate, err := l.mine(ctx, uint64(n)+1, tipHash, data, owned)
	if err != nil {
		return models.Block{}, errors.WithMessage(err, fmt.Sprintf("failed to mine block %d", n+1))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := validator.IsValid(candidate, l.blocks[len(l.blocks)-1]); err != nil {
		l.sink.Emit(events.Event{Kind: events.BlockRejected, BlockID: candidate.ID, Hash: candidate.Hash, Err: err})
		return models.Block{}, err
	}

	l.blocks = append(l.blocks, candidate)
	l.tipHash = candidate.Hash
	l.sink.Emit(events.Event{Kind: events.BlockAccepted, BlockID: candidate.ID, Hash: candidate.Hash})

	return candidate.Clone(), nil
}

func (l *Ledger) mine(ctx context.Context, id uint64, prevHash, data string, txs []models.Transaction) (models.Block, error) {
	b := models.Block{
		ID:           id,
		Data:         data,
		Transactions: txs,
		PreviousHash: prevHash,
		Timestamp:    l.now().Unix(),
	}

	nonce, hash, err := l.miner.Mine(ctx, pow.HeaderOf(b))
	if err != nil {
		return models.Block{}, err
	}
	b.Nonce = nonce
	b.Hash = hash
	return b, nil
}

// Verify validates the whole chain and returns the first failure.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	err := validator.ValidateChain(l.blocks)
	l.mu.RUnlock()

	if err != nil {
		e := events.Event{Kind: events.ChainValidationFailed, Err: err}
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			e.BlockID = verr.BlockID
		}
		l.sink.Emit(e)
	}
	return err
}

// ValidateChain reports whether the whole chain is valid. The reason for a
// failure is emitted to the ledger's sink.
func (l *Ledger) ValidateChain() bool {
	return l.Verify() == nil
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}

// Block returns a copy of the block at position i.
func (l *Ledger) Block(i int) (models.Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i < 0 || i >= len(l.blocks) {
		return models.Block{}, errors.WithMessage(ErrIndexOutOfRange, fmt.Sprintf("index %d, length %d", i, len(l.blocks)))
	}
	return l.blocks[i].Clone(), nil
}

// Tail returns a copy of the last block.
func (l *Ledger) Tail() (models.Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.blocks) == 0 {
		return models.Block{}, ErrNotInitialized
	}
	return l.blocks[len(l.blocks)-1].Clone(), nil
}

// Blocks returns a copy of every block in order.
func (l *Ledger) Blocks() []models.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Block, len(l.blocks))
	for i, b := range l.blocks {
		out[i] = b.Clone()
	}
	return out
}
