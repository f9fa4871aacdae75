package ports

import (
	"context"

	"github.com/aretw0/debot/pkg/domain"
)

// LocalResult is the outcome of a simulated call.
type LocalResult struct {
	Output  map[string]any
	Account domain.AccountState // nil unless the call emulated a real transaction
}

// EncodedMessage is a constructed external message ready for submission.
type EncodedMessage struct {
	ID   string
	Body []byte
}

// DecodedBody is a message body decoded against an ABI.
type DecodedBody struct {
	Function string
	Args     map[string]any
}

// LocalCall describes a simulated call.
type LocalCall struct {
	Address  domain.Address
	State    domain.AccountState // attached as call context when non-nil
	ABI      string
	Function string
	Args     map[string]any
	Emulate  bool // emulate a real transaction and return the updated account
}

// CallService is the remote contract-call service.
// Failures should be reported as *domain.CallError so the engine can classify them.
type CallService interface {
	RunLocal(ctx context.Context, call LocalCall) (LocalResult, error)
	CreateMessage(ctx context.Context, addr domain.Address, abi, function string, args map[string]any, keys *domain.KeyPair) (EncodedMessage, error)
	AttachInitialState(ctx context.Context, msg EncodedMessage, state []byte) (EncodedMessage, error)
	DecodeInputBody(ctx context.Context, abi string, body []byte) (DecodedBody, error)
	SubmitMessage(ctx context.Context, msg EncodedMessage, abi, function string) (any, error)
	AccountQuerier
}

// AccountQuerier is the query subset of the call service used by routines.
type AccountQuerier interface {
	QueryAccounts(ctx context.Context, filter map[string]any, fields string) ([]map[string]any, error)
}
