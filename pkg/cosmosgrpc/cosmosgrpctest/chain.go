package cosmosgrpctest

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	authv1beta1 "cosmossdk.io/api/cosmos/auth/v1beta1"
	basev1beta1 "cosmossdk.io/api/cosmos/base/v1beta1"
	stakingv1beta1 "cosmossdk.io/api/cosmos/staking/v1beta1"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/screwyprof/airdrop/pkg/cosmosgrpc"
)

const bufSize = 1 << 20

// Chain is an in-memory Cosmos SDK query service for tests.
// Configure it with the With* builders before calling Listen.
type Chain struct {
	mu               sync.Mutex
	accounts         map[string]*anypb.Any
	delegations      map[string][]*stakingv1beta1.DelegationResponse
	accountErrors    map[string]error
	delegationErrors map[string]error
	delays           map[string]time.Duration
	accountQueries   map[string]int
	dials            int
}

// NewChain creates an empty chain; every account lookup returns NotFound
func NewChain() *Chain {
	return &Chain{
		accounts:         make(map[string]*anypb.Any),
		delegations:      make(map[string][]*stakingv1beta1.DelegationResponse),
		accountErrors:    make(map[string]error),
		delegationErrors: make(map[string]error),
		delays:           make(map[string]time.Duration),
		accountQueries:   make(map[string]int),
	}
}

// WithBaseAccount stores a BaseAccount with the given sequence
func (c *Chain) WithBaseAccount(address string, sequence uint64) *Chain {
	return c.WithAccount(address, &authv1beta1.BaseAccount{
		Address:       address,
		AccountNumber: 42,
		Sequence:      sequence,
	})
}

// WithAccount stores any account message, packed the way a node packs it
func (c *Chain) WithAccount(address string, account proto.Message) *Chain {
	return c.WithPackedAccount(address, Pack(account))
}

// WithPackedAccount stores a raw Any; nil yields a response without an account
func (c *Chain) WithPackedAccount(address string, packed *anypb.Any) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[address] = packed
	return c
}

// WithDelegation adds a delegation; a nil balance is sent as an absent balance
func (c *Chain) WithDelegation(address, validator string, balance *basev1beta1.Coin) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delegations[address] = append(c.delegations[address], &stakingv1beta1.DelegationResponse{
		Delegation: &stakingv1beta1.Delegation{
			DelegatorAddress: address,
			ValidatorAddress: validator,
			Shares:           "1.000000000000000000",
		},
		Balance: balance,
	})
	return c
}

// WithStake adds a delegation with the given amount of umars
func (c *Chain) WithStake(address, validator, amount string) *Chain {
	return c.WithDelegation(address, validator, &basev1beta1.Coin{Denom: "umars", Amount: amount})
}

// FailAccount makes account lookups for address return err
func (c *Chain) FailAccount(address string, err error) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accountErrors[address] = err
	return c
}

// FailDelegations makes delegation lookups for address return err
func (c *Chain) FailDelegations(address string, err error) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delegationErrors[address] = err
	return c
}

// WithDelay delays every response for address
func (c *Chain) WithDelay(address string, d time.Duration) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delays[address] = d
	return c
}

// AccountQueries returns how many account lookups were made for address
func (c *Chain) AccountQueries(address string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accountQueries[address]
}

// TotalAccountQueries returns the number of account lookups for all addresses
func (c *Chain) TotalAccountQueries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.accountQueries {
		total += n
	}
	return total
}

// Dials returns how many clients were opened through a Listener
func (c *Chain) Dials() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dials
}

// Listener serves a Chain over an in-memory connection
type Listener struct {
	chain *Chain
	lis   *bufconn.Listener
}

// Listen starts serving the chain; the server stops when the test ends
func (c *Chain) Listen(t *testing.T) *Listener {
	t.Helper()

	lis := bufconn.Listen(bufSize)
	srv := grpc.NewServer()
	authv1beta1.RegisterQueryServer(srv, &authServer{chain: c})
	stakingv1beta1.RegisterQueryServer(srv, &stakingServer{chain: c})

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return &Listener{chain: c, lis: lis}
}

// Dial opens a new client to the chain
func (l *Listener) Dial(ctx context.Context) (*cosmosgrpc.Client, error) {
	l.chain.mu.Lock()
	l.chain.dials++
	l.chain.mu.Unlock()

	return cosmosgrpc.Dial("passthrough:///bufnet", cosmosgrpc.WithDialOptions(
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return l.lis.DialContext(ctx)
		}),
	))
}

// MustDial opens a client and closes it when the test ends
func (l *Listener) MustDial(t *testing.T) *cosmosgrpc.Client {
	t.Helper()
	client, err := l.Dial(t.Context())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Close stops accepting connections, simulating an unreachable node
func (l *Listener) Close() {
	_ = l.lis.Close()
}

// Pack wraps an account the way Cosmos SDK nodes do, with a "/" prefixed type URL
func Pack(msg proto.Message) *anypb.Any {
	value, err := proto.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return &anypb.Any{
		TypeUrl: "/" + string(msg.ProtoReflect().Descriptor().FullName()),
		Value:   value,
	}
}

func (c *Chain) wait(ctx context.Context, address string) error {
	c.mu.Lock()
	d := c.delays[address]
	c.mu.Unlock()
	if d == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return status.FromContextError(ctx.Err()).Err()
	case <-time.After(d):
		return nil
	}
}

type authServer struct {
	authv1beta1.UnimplementedQueryServer
	chain *Chain
}

func (s *authServer) Account(ctx context.Context, req *authv1beta1.QueryAccountRequest) (*authv1beta1.QueryAccountResponse, error) {
	address := req.GetAddress()
	if err := s.chain.wait(ctx, address); err != nil {
		return nil, err
	}

	s.chain.mu.Lock()
	defer s.chain.mu.Unlock()
	s.chain.accountQueries[address]++

	if err := s.chain.accountErrors[address]; err != nil {
		return nil, err
	}
	packed, ok := s.chain.accounts[address]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "account %s not found", address)
	}
	return &authv1beta1.QueryAccountResponse{Account: packed}, nil
}

type stakingServer struct {
	stakingv1beta1.UnimplementedQueryServer
	chain *Chain
}

func (s *stakingServer) DelegatorDelegations(ctx context.Context, req *stakingv1beta1.QueryDelegatorDelegationsRequest) (*stakingv1beta1.QueryDelegatorDelegationsResponse, error) {
	address := req.GetDelegatorAddr()
	if err := s.chain.wait(ctx, address); err != nil {
		return nil, err
	}

	s.chain.mu.Lock()
	defer s.chain.mu.Unlock()

	if err := s.chain.delegationErrors[address]; err != nil {
		return nil, err
	}
	return &stakingv1beta1.QueryDelegatorDelegationsResponse{
		DelegationResponses: s.chain.delegations[address],
	}, nil
}
