package ledger

import "github.com/manifest-network/powchain/internal/models"

// EditBlock mutates a stored block in place, bypassing the append path.
func (l *Ledger) EditBlock(i int, edit func(b *models.Block)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	edit(&l.blocks[i])
}
