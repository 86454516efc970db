//go:build acceptance

package cosmosgrpc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/pkg/cosmosgrpc"
	"github.com/screwyprof/airdrop/pkg/cosmosgrpc/testcfg"
)

func TestClientRealNode(t *testing.T) {
	t.Parallel()

	testCfg := testcfg.New()

	// Arrange
	client, err := cosmosgrpc.Dial(testCfg.GRPCURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(t.Context(), testCfg.CallTimeout)
	defer cancel()

	// Act
	account, err := client.Account(ctx, testCfg.Address)
	if errors.Is(err, cosmosgrpc.ErrAccountNotFound) {
		t.Skipf("account %s does not exist on %s", testCfg.Address, testCfg.GRPCURL)
	}
	require.NoError(t, err)

	delegations, err := client.DelegatorDelegations(ctx, testCfg.Address)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, testCfg.Address, account.Address)
	assert.NotEmpty(t, account.TypeURL)
	for i, d := range delegations {
		assert.Equal(t, testCfg.Address, d.Delegator, "delegation %d should belong to the queried address", i)
		assert.NotEmpty(t, d.Validator, "delegation %d should name a validator", i)
		t.Logf("delegation %d: validator=%s balance=%+v", i, d.Validator, d.Balance)
	}
}
