package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifest-network/powchain/internal/models"
)

// BlockDir is the sub-directory of a JSON export holding block files.
const BlockDir = "block"

type JSONOutputHandler struct {
	blockDir string
}

func NewJSONOutputHandler(outDir string) (*JSONOutputHandler, error) {
	blockDir := filepath.Join(outDir, BlockDir)

	err := os.MkdirAll(blockDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create blocks directory: %w", err)
	}

	return &JSONOutputHandler{
		blockDir: blockDir,
	}, nil
}

// BlockFileName returns the file name of the block with the given id.
func BlockFileName(id uint64) string {
	return fmt.Sprintf("block_%010d.json", id)
}

func (h *JSONOutputHandler) WriteBlock(_ context.Context, block models.Block) error {
	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal block %d: %w", block.ID, err)
	}

	filePath := filepath.Join(h.blockDir, BlockFileName(block.ID))
	return os.WriteFile(filePath, data, 0644)
}

func (h *JSONOutputHandler) Close() error {
	return nil
}
