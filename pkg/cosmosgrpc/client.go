package cosmosgrpc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	authv1beta1 "cosmossdk.io/api/cosmos/auth/v1beta1"
	stakingv1beta1 "cosmossdk.io/api/cosmos/staking/v1beta1"
	vestingv1beta1 "cosmossdk.io/api/cosmos/vesting/v1beta1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/known/anypb"
)

// Sentinel errors for query failures
var (
	ErrTransport       = errors.New("transport failure")
	ErrStatus          = errors.New("non-OK response status")
	ErrAccountNotFound = errors.New("account not found")
	ErrDecode          = errors.New("malformed response payload")
)

// Client queries the auth and staking modules of a Cosmos SDK node over gRPC
type Client struct {
	conn    *grpc.ClientConn
	auth    authv1beta1.QueryClient
	staking stakingv1beta1.QueryClient
}

// Option configures Dial
type Option func(*dialConfig)

type dialConfig struct {
	tls         bool
	dialOptions []grpc.DialOption
}

// WithTLS forces TLS transport credentials regardless of the endpoint scheme
func WithTLS(enabled bool) Option {
	return func(c *dialConfig) { c.tls = c.tls || enabled }
}

// WithDialOptions appends raw gRPC dial options, e.g. interceptors
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *dialConfig) { c.dialOptions = append(c.dialOptions, opts...) }
}

// Dial creates a client for the given endpoint.
// The endpoint may be a bare host:port or an http(s):// URL; https implies TLS.
// No connection is established until the first query.
func Dial(endpoint string, opts ...Option) (*Client, error) {
	target, secure := ParseEndpoint(endpoint)

	cfg := dialConfig{tls: secure}
	for _, opt := range opts {
		opt(&cfg)
	}

	creds := insecure.NewCredentials()
	if cfg.tls {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, cfg.dialOptions...)
	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %w", ErrTransport, endpoint, err)
	}

	return NewClient(conn), nil
}

// NewClient wraps an existing connection. Close closes the connection.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{
		conn:    conn,
		auth:    authv1beta1.NewQueryClient(conn),
		staking: stakingv1beta1.NewQueryClient(conn),
	}
}

// ParseEndpoint converts a URL-style endpoint into a gRPC target
func ParseEndpoint(endpoint string) (target string, secure bool) {
	endpoint = strings.TrimSpace(endpoint)
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
	default:
		return endpoint, false
	}
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Account represents the fields of an on-chain account this tool reads
type Account struct {
	TypeURL       string
	Address       string
	AccountNumber uint64
	Sequence      uint64
}

// Coin is an amount of a single denomination, amount as a decimal string
type Coin struct {
	Denom  string
	Amount string
}

// Delegation is one delegator/validator bond with its optional balance
type Delegation struct {
	Delegator string
	Validator string
	Shares    string
	Balance   *Coin
}

// Account returns the account stored under address
func (c *Client) Account(ctx context.Context, address string) (Account, error) {
	resp, err := c.auth.Account(ctx, &authv1beta1.QueryAccountRequest{Address: address})
	if status.Code(err) == codes.NotFound {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if err != nil {
		return Account{}, rpcError("Account", err)
	}

	packed := resp.GetAccount()
	if packed == nil {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}

	base, err := decodeBaseAccount(packed)
	if err != nil {
		return Account{}, fmt.Errorf("%w: account %s: %w", ErrDecode, address, err)
	}

	return Account{
		TypeURL:       packed.GetTypeUrl(),
		Address:       base.GetAddress(),
		AccountNumber: base.GetAccountNumber(),
		Sequence:      base.GetSequence(),
	}, nil
}

// DelegatorDelegations returns the first page of delegations made by delegator
func (c *Client) DelegatorDelegations(ctx context.Context, delegator string) ([]Delegation, error) {
	resp, err := c.staking.DelegatorDelegations(ctx, &stakingv1beta1.QueryDelegatorDelegationsRequest{
		DelegatorAddr: delegator,
	})
	if err != nil {
		return nil, rpcError("DelegatorDelegations", err)
	}

	responses := resp.GetDelegationResponses()
	delegations := make([]Delegation, 0, len(responses))
	for _, r := range responses {
		d := Delegation{
			Delegator: r.GetDelegation().GetDelegatorAddress(),
			Validator: r.GetDelegation().GetValidatorAddress(),
			Shares:    r.GetDelegation().GetShares(),
		}
		if b := r.GetBalance(); b != nil {
			d.Balance = &Coin{Denom: b.GetDenom(), Amount: b.GetAmount()}
		}
		delegations = append(delegations, d)
	}

	return delegations, nil
}

// rpcError tags a failed call as a transport or a status failure
func rpcError(method string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s: %w", ErrTransport, method, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrStatus, method, err)
	}
}

// decodeBaseAccount unpacks the base account of any known account type.
// Unregistered type URLs are decoded as a plain BaseAccount.
func decodeBaseAccount(packed *anypb.Any) (*authv1beta1.BaseAccount, error) {
	msg, err := packed.UnmarshalNew()
	if errors.Is(err, protoregistry.NotFound) {
		var base authv1beta1.BaseAccount
		if err := proto.Unmarshal(packed.GetValue(), &base); err != nil {
			return nil, err
		}
		return &base, nil
	}
	if err != nil {
		return nil, err
	}

	switch acc := msg.(type) {
	case *authv1beta1.BaseAccount:
		return acc, nil
	case interface {
		GetBaseAccount() *authv1beta1.BaseAccount
	}:
		if base := acc.GetBaseAccount(); base != nil {
			return base, nil
		}
	case interface {
		GetBaseVestingAccount() *vestingv1beta1.BaseVestingAccount
	}:
		if base := acc.GetBaseVestingAccount().GetBaseAccount(); base != nil {
			return base, nil
		}
	}

	return nil, fmt.Errorf("%s carries no base account", packed.GetTypeUrl())
}
