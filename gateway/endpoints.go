package gateway

import (
	"context"
	"encoding/json"
)

// Block is the subset of a feeder gateway block this client models.
// Transactions and receipts are left undecoded.
type Block struct {
	BlockHash           BlockHash         `json:"block_hash"`
	ParentBlockHash     BlockHash         `json:"parent_block_hash"`
	BlockNumber         uint64            `json:"block_number"`
	StateRoot           Felt              `json:"state_root"`
	Status              string            `json:"status"`
	Timestamp           uint64            `json:"timestamp"`
	SequencerAddress    ContractAddress   `json:"sequencer_address"`
	StarknetVersion     string            `json:"starknet_version"`
	Transactions        []json.RawMessage `json:"transactions"`
	TransactionReceipts []json.RawMessage `json:"transaction_receipts"`
}

// BlockHeader is the reply to get_block with headerOnly=true.
type BlockHeader struct {
	BlockHash   BlockHash `json:"block_hash"`
	BlockNumber uint64    `json:"block_number"`
}

// ContractAddresses are the core L1 contract addresses of the network.
type ContractAddresses struct {
	Starknet             string `json:"Starknet"`
	GpsStatementVerifier string `json:"GpsStatementVerifier"`
}

// BlockSignature is the sequencer signature over a block.
type BlockSignature struct {
	BlockHash BlockHash `json:"block_hash"`
	Signature []Felt    `json:"signature"`
}

// AddTransactionResponse acknowledges a submitted transaction.
type AddTransactionResponse struct {
	Code            string           `json:"code"`
	TransactionHash TransactionHash  `json:"transaction_hash"`
	ClassHash       *ClassHash       `json:"class_hash,omitempty"`
	Address         *ContractAddress `json:"address,omitempty"`
}

// Block fetches a full block.
func (c *Client) Block(ctx context.Context, block BlockID) (*Block, error) {
	req := c.FeederGatewayRequest().
		GetBlock().
		WithBlock(block).
		WithRetry(c.retry)
	return Get[*Block](ctx, req)
}

// BlockHeader fetches only the hash and number of a block.
func (c *Client) BlockHeader(ctx context.Context, block BlockID) (BlockHeader, error) {
	req := c.FeederGatewayRequest().
		GetBlock().
		WithBlock(block).
		AddParam(paramHeaderOnly, "true").
		WithRetry(c.retry)
	return Get[BlockHeader](ctx, req)
}

// ClassByHash returns the raw class definition as of the pending block.
func (c *Client) ClassByHash(ctx context.Context, classHash ClassHash) ([]byte, error) {
	return c.FeederGatewayRequest().
		GetClassByHash().
		WithClassHash(classHash).
		WithBlock(PendingBlock()).
		WithRetry(c.retry).
		GetAsBytes(ctx)
}

// CompiledClass returns the raw compiled (CASM) class as of the pending block.
func (c *Client) CompiledClass(ctx context.Context, classHash ClassHash) ([]byte, error) {
	return c.FeederGatewayRequest().
		GetCompiledClassByClassHash().
		WithClassHash(classHash).
		WithBlock(PendingBlock()).
		WithRetry(c.retry).
		GetAsBytes(ctx)
}

// Transaction fetches a transaction and its status.
func (c *Client) Transaction(ctx context.Context, hash TransactionHash) (json.RawMessage, error) {
	req := c.FeederGatewayRequest().
		GetTransaction().
		WithTransactionHash(hash).
		WithRetry(c.retry)
	return Get[json.RawMessage](ctx, req)
}

// StateUpdate fetches the state diff of a block.
func (c *Client) StateUpdate(ctx context.Context, block BlockID) (json.RawMessage, error) {
	req := c.FeederGatewayRequest().
		GetStateUpdate().
		WithBlock(block).
		WithRetry(c.retry)
	return Get[json.RawMessage](ctx, req)
}

// ContractAddresses returns the core L1 contract addresses of the network.
func (c *Client) ContractAddresses(ctx context.Context) (ContractAddresses, error) {
	req := c.FeederGatewayRequest().
		GetContractAddresses().
		WithRetry(c.retry)
	return Get[ContractAddresses](ctx, req)
}

// BlockTraces fetches the execution traces of every transaction in a block.
func (c *Client) BlockTraces(ctx context.Context, block BlockID) (json.RawMessage, error) {
	req := c.FeederGatewayRequest().
		GetBlockTraces().
		WithBlock(block).
		WithRetry(c.retry)
	return Get[json.RawMessage](ctx, req)
}

// TransactionTrace fetches the execution trace of a single transaction.
func (c *Client) TransactionTrace(ctx context.Context, hash TransactionHash) (json.RawMessage, error) {
	req := c.FeederGatewayRequest().
		GetTransactionTrace().
		WithTransactionHash(hash).
		WithRetry(c.retry)
	return Get[json.RawMessage](ctx, req)
}

// Signature fetches the sequencer signature of a block.
func (c *Client) Signature(ctx context.Context, block BlockID) (BlockSignature, error) {
	req := c.FeederGatewayRequest().
		GetSignature().
		WithBlock(block).
		WithRetry(c.retry)
	return Get[BlockSignature](ctx, req)
}

// AddTransaction submits tx to the gateway. It is never retried, since a
// lost response does not mean the transaction was not accepted.
func (c *Client) AddTransaction(ctx context.Context, tx any, token string) (AddTransactionResponse, error) {
	req := c.GatewayRequest().
		AddTransaction().
		WithOptionalToken(token).
		WithRetry(false)
	return PostWithJSON[AddTransactionResponse](ctx, req, tx)
}
