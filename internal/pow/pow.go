package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/manifest-network/powchain/internal/events"
	"github.com/manifest-network/powchain/internal/models"
)

const (
	// DifficultyPrefix is the required leading characters of a block hash.
	DifficultyPrefix = "0000"
	// HashLength is the length of a hex encoded SHA-256 digest.
	HashLength = sha256.Size * 2

	// DefaultProgressInterval is the number of attempts between progress events.
	DefaultProgressInterval uint64 = 1 << 16

	cancelCheckInterval = 1024
)

// SentinelHash is the previous hash of the genesis block.
var SentinelHash = strings.Repeat("0", HashLength)

var (
	ErrMiningAborted     = errors.New("mining aborted")
	ErrAttemptsExhausted = errors.New("mining attempts exhausted")
)

// Header holds the block fields covered by the hash.
type Header struct {
	ID           uint64
	PreviousHash string
	Data         string
	Timestamp    int64
	Nonce        uint64
	Transactions []models.Transaction
}

// HeaderOf returns the hashed fields of b.
func HeaderOf(b models.Block) Header {
	return Header{
		ID:           b.ID,
		PreviousHash: b.PreviousHash,
		Data:         b.Data,
		Timestamp:    b.Timestamp,
		Nonce:        b.Nonce,
		Transactions: b.Transactions,
	}
}

// Serialize returns the canonical byte representation of h. Fields are
// written in the order id, previous hash, data, timestamp, nonce and
// transactions, separated by '|'. Strings are Go-quoted so no field can
// absorb its neighbour, and amounts use the shortest 'g' form, which also
// covers NaN and infinities. Transactions are written as
// [{"sender","receiver",amount},...].
func Serialize(h Header) []byte {
	buf := make([]byte, 0, 64+len(h.PreviousHash)+len(h.Data)+32*len(h.Transactions))
	buf = strconv.AppendUint(buf, h.ID, 10)
	buf = append(buf, '|')
	buf = strconv.AppendQuote(buf, h.PreviousHash)
	buf = append(buf, '|')
	buf = strconv.AppendQuote(buf, h.Data)
	buf = append(buf, '|')
	buf = strconv.AppendInt(buf, h.Timestamp, 10)
	buf = append(buf, '|')
	buf = strconv.AppendUint(buf, h.Nonce, 10)
	buf = append(buf, '|', '[')
	for i, tx := range h.Transactions {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '{')
		buf = strconv.AppendQuote(buf, tx.Sender)
		buf = append(buf, ',')
		buf = strconv.AppendQuote(buf, tx.Receiver)
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, tx.Amount, 'g', -1, 64)
		buf = append(buf, '}')
	}
	return append(buf, ']')
}

// Digest returns the hex encoded SHA-256 of the serialized header.
func Digest(h Header) string {
	sum := sha256.Sum256(Serialize(h))
	return hex.EncodeToString(sum[:])
}

func MeetsDifficulty(hash string) bool {
	return strings.HasPrefix(hash, DifficultyPrefix)
}

// Miner searches for a nonce whose digest meets the difficulty prefix.
type Miner struct {
	// MaxAttempts caps the search. Zero means unbounded.
	MaxAttempts uint64
	// ProgressInterval is the number of attempts between MiningProgress
	// events. Zero disables progress events.
	ProgressInterval uint64
	Sink             events.Sink
}

func NewMiner(sink events.Sink) *Miner {
	if sink == nil {
		sink = events.Nop
	}
	return &Miner{ProgressInterval: DefaultProgressInterval, Sink: sink}
}

// Mine searches nonces starting at 1 and returns the first nonce whose digest
// meets the difficulty together with that digest. h.Nonce is ignored.
// The search stops with ErrMiningAborted when ctx is done and with
// ErrAttemptsExhausted once MaxAttempts nonces have been tried.
func (m *Miner) Mine(ctx context.Context, h Header) (uint64, string, error) {
	sink := m.Sink
	if sink == nil {
		sink = events.Nop
	}
	sink.Emit(events.Event{Kind: events.MiningStarted, BlockID: h.ID})

	var attempts uint64
	for nonce := uint64(1); ; nonce++ {
		if m.MaxAttempts != 0 && attempts >= m.MaxAttempts {
			err := fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, attempts)
			sink.Emit(events.Event{Kind: events.MiningAborted, BlockID: h.ID, Attempts: attempts, Err: err})
			return 0, "", err
		}
		if attempts%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				err = fmt.Errorf("%w: %w", ErrMiningAborted, err)
				sink.Emit(events.Event{Kind: events.MiningAborted, BlockID: h.ID, Attempts: attempts, Err: err})
				return 0, "", err
			}
		}

		h.Nonce = nonce
		attempts++
		hash := Digest(h)
		if MeetsDifficulty(hash) {
			sink.Emit(events.Event{Kind: events.MiningSucceeded, BlockID: h.ID, Nonce: nonce, Hash: hash, Attempts: attempts})
			return nonce, hash, nil
		}

		if m.ProgressInterval != 0 && attempts%m.ProgressInterval == 0 {
			sink.Emit(events.Event{Kind: events.MiningProgress, BlockID: h.ID, Attempts: attempts})
		}
	}
}
