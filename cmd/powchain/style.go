package powchain

import (
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/manifest-network/powchain/internal/models"
)

// renderChain returns the blocks as a table, one row per block.
func renderChain(blocks []models.Block) (string, error) {
	data := pterm.TableData{
		{"ID", "Nonce", "Timestamp", "Data", "Txs", "Previous Hash", "Hash"},
	}
	for _, b := range blocks {
		data = append(data, []string{
			strconv.FormatUint(b.ID, 10),
			strconv.FormatUint(b.Nonce, 10),
			time.Unix(b.Timestamp, 0).UTC().Format(time.RFC3339),
			b.Data,
			strconv.Itoa(len(b.Transactions)),
			b.PreviousHash,
			b.Hash,
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return "", err
	}
	return table + "\n", nil
}

func renderValidation(err error) string {
	if err != nil {
		return pterm.LightRed("Chain is invalid: " + err.Error())
	}
	return pterm.LightGreen("Chain is valid")
}
