package reader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/manifest-network/powchain/internal/models"
	"github.com/manifest-network/powchain/internal/output"
)

// LoadBlocksJSON reads every block written by a JSON export rooted at
// inputDir, ordered by block id.
func LoadBlocksJSON(inputDir string) ([]models.Block, error) {
	blocksDir := filepath.Join(inputDir, output.BlockDir)
	entries, err := os.ReadDir(blocksDir)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read blocks directory")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "block_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	blocks := make([]models.Block, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(blocksDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read block file '%s': %w", name, err)
		}

		var block models.Block
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, fmt.Errorf("failed to decode block file '%s': %w", name, err)
		}

		if want := output.BlockFileName(block.ID); want != name {
			return nil, fmt.Errorf("block file '%s' holds block %d", name, block.ID)
		}
		blocks = append(blocks, block)
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].ID < blocks[j].ID })
	return blocks, nil
}
