package output

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/manifest-network/powchain/internal/models"
)

type TSVOutputHandler struct {
	blockFile   *os.File
	txFile      *os.File
	blockWriter *bufio.Writer
	txWriter    *bufio.Writer
}

const (
	blocksTSV = "blocks.tsv"
	txsTSV    = "transactions.tsv"
)

var tsvEscaper = strings.NewReplacer("\\", "\\\\", "\t", "\\t", "\n", "\\n", "\r", "\\r")

func NewTSVOutputHandler(outDir string) (*TSVOutputHandler, error) {
	err := os.MkdirAll(outDir, 0755)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create output directory")
	}

	blockFilePath := filepath.Join(outDir, blocksTSV)
	txFilePath := filepath.Join(outDir, txsTSV)

	blockFile, err := os.Create(blockFilePath)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create blocks TSV file")
	}

	txFile, err := os.Create(txFilePath)
	if err != nil {
		blockFile.Close()
		return nil, errors.WithMessage(err, "failed to create transactions TSV file")
	}

	return &TSVOutputHandler{
		blockFile:   blockFile,
		txFile:      txFile,
		blockWriter: bufio.NewWriter(blockFile),
		txWriter:    bufio.NewWriter(txFile),
	}, nil
}

// WriteBlock writes one line per block (id, nonce, timestamp, previous hash,
// hash, data) and one line per transaction (block id, position, sender,
// receiver, amount).
func (h *TSVOutputHandler) WriteBlock(_ context.Context, block models.Block) error {
	line := fmt.Sprintf("%d\t%d\t%d\t%s\t%s\t%s\n",
		block.ID, block.Nonce, block.Timestamp, block.PreviousHash, block.Hash, tsvEscaper.Replace(block.Data))
	if _, err := h.blockWriter.WriteString(line); err != nil {
		return err
	}

	for i, tx := range block.Transactions {
		line := fmt.Sprintf("%d\t%d\t%s\t%s\t%s\n",
			block.ID, i, tsvEscaper.Replace(tx.Sender), tsvEscaper.Replace(tx.Receiver), strconv.FormatFloat(tx.Amount, 'f', -1, 64))
		if _, err := h.txWriter.WriteString(line); err != nil {
			return err
		}
	}
	return nil
}

func (h *TSVOutputHandler) Close() error {
	if err := h.blockWriter.Flush(); err != nil {
		slog.Error("failed to flush block writer", "errors", err)
		return err
	}
	if err := h.txWriter.Flush(); err != nil {
		slog.Error("failed to flush tx writer", "errors", err)
		return err
	}
	if err := h.blockFile.Close(); err != nil {
		slog.Error("failed to close block file", "errors", err)
		return err
	}
	if err := h.txFile.Close(); err != nil {
		slog.Error("failed to close tx file", "errors", err)
		return err
	}
	return nil
}
