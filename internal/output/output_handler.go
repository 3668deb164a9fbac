package output

import (
	"context"

	"github.com/manifest-network/powchain/internal/models"
)

type OutputHandler interface {
	WriteBlock(ctx context.Context, block models.Block) error
	Close() error
}
