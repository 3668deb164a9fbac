package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Transaction represents an opaque payment record carried by a block.
type Transaction struct {
	Sender   string  `json:"sender"`
	Receiver string  `json:"receiver"`
	Amount   float64 `json:"amount"`
}

// Block represents a mined block.
type Block struct {
	ID           uint64        `json:"id"`
	Nonce        uint64        `json:"nonce"`
	Data         string        `json:"data"`
	Transactions []Transaction `json:"transactions"`
	Hash         string        `json:"hash"`
	PreviousHash string        `json:"previous_hash"`
	Timestamp    int64         `json:"timestamp"`
}

func NewTransaction(sender, receiver string, amount float64) Transaction {
	return Transaction{Sender: sender, Receiver: receiver, Amount: amount}
}

// DefaultTransaction returns the placeholder carried by the genesis block.
func DefaultTransaction() Transaction {
	return NewTransaction("genesis", "system", 0)
}

// ParseTransaction parses a "sender,receiver,amount" triple.
func ParseTransaction(s string) (Transaction, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Transaction{}, fmt.Errorf("invalid transaction %q: expected sender,receiver,amount", s)
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return Transaction{}, errors.WithMessage(err, fmt.Sprintf("invalid transaction amount %q", parts[2]))
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Transaction{}, fmt.Errorf("invalid transaction amount %q: must be finite", parts[2])
	}

	return NewTransaction(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), amount), nil
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	if b.Transactions != nil {
		txs := make([]Transaction, len(b.Transactions))
		copy(txs, b.Transactions)
		b.Transactions = txs
	}
	return b
}
