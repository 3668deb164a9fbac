package output_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manifest-network/powchain/internal/models"
	"github.com/manifest-network/powchain/internal/output"
)

var testBlocks = []models.Block{
	{
		ID:           1,
		Nonce:        91493,
		Data:         "Genesis Block",
		Transactions: []models.Transaction{models.DefaultTransaction()},
		Hash:         "0000b3d1d90e1c6675403a95af8a63751ebfb0f43b6c528b05d4bb54849eefee",
		PreviousHash: "0000000000000000000000000000000000000000000000000000000000000000",
		Timestamp:    1700000000,
	},
	{
		ID:           2,
		Nonce:        7,
		Data:         "tab\there",
		Transactions: []models.Transaction{models.NewTransaction("A", "B", 5.5), models.NewTransaction("B", "C", 1)},
		Hash:         "0000aa",
		PreviousHash: "0000b3d1d90e1c6675403a95af8a63751ebfb0f43b6c528b05d4bb54849eefee",
		Timestamp:    1700000001,
	},
}

func TestJSONOutputHandler(t *testing.T) {
	dir := t.TempDir()
	h, err := output.NewJSONOutputHandler(dir)
	require.NoError(t, err)

	for _, b := range testBlocks {
		require.NoError(t, h.WriteBlock(context.Background(), b))
	}
	require.NoError(t, h.Close())

	data, err := os.ReadFile(filepath.Join(dir, output.BlockDir, "block_0000000002.json"))
	require.NoError(t, err)

	var got models.Block
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, testBlocks[1], got)
}

func TestTSVOutputHandler(t *testing.T) {
	dir := t.TempDir()
	h, err := output.NewTSVOutputHandler(dir)
	require.NoError(t, err)

	for _, b := range testBlocks {
		require.NoError(t, h.WriteBlock(context.Background(), b))
	}
	require.NoError(t, h.Close())

	blocks, err := os.ReadFile(filepath.Join(dir, "blocks.tsv"))
	require.NoError(t, err)
	assert.Equal(t,
		"1\t91493\t1700000000\t"+testBlocks[0].PreviousHash+"\t"+testBlocks[0].Hash+"\tGenesis Block\n"+
			"2\t7\t1700000001\t"+testBlocks[1].PreviousHash+"\t0000aa\ttab\\there\n",
		string(blocks))

	txs, err := os.ReadFile(filepath.Join(dir, "transactions.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "1\t0\tgenesis\tsystem\t0\n2\t0\tA\tB\t5.5\n2\t1\tB\tC\t1\n", string(txs))
}
