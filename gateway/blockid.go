package gateway

import (
	"fmt"
	"strconv"
	"strings"
)

// BlockTag labels requests addressed at a moving block for metrics.
type BlockTag int

const (
	TagNone BlockTag = iota
	TagLatest
	TagPending
)

func (t BlockTag) String() string {
	switch t {
	case TagLatest:
		return "latest"
	case TagPending:
		return "pending"
	default:
		return "none"
	}
}

const (
	paramBlockNumber     = "blockNumber"
	paramBlockHash       = "blockHash"
	paramClassHash       = "classHash"
	paramTransactionHash = "transactionHash"
	paramToken           = "token"
	paramHeaderOnly      = "headerOnly"
)

type blockIDKind int

const (
	blockByNumber blockIDKind = iota
	blockByHash
	blockLatest
	blockPending
)

// BlockID selects a block by number, by hash, or by one of the latest/pending tags.
type BlockID struct {
	kind   blockIDKind
	number uint64
	hash   BlockHash
}

// BlockNumber selects the block at height n.
func BlockNumber(n uint64) BlockID {
	return BlockID{kind: blockByNumber, number: n}
}

// BlockHashID selects the block with hash h.
func BlockHashID(h BlockHash) BlockID {
	return BlockID{kind: blockByHash, hash: h}
}

// LatestBlock selects the most recent accepted block.
func LatestBlock() BlockID {
	return BlockID{kind: blockLatest}
}

// PendingBlock selects the block currently being built.
func PendingBlock() BlockID {
	return BlockID{kind: blockPending}
}

// QueryParam returns the query parameter encoding b and the metrics tag it implies.
// The moving tags are sent under blockNumber.
func (b BlockID) QueryParam() (key, value string, tag BlockTag) {
	switch b.kind {
	case blockByHash:
		return paramBlockHash, b.hash.String(), TagNone
	case blockLatest:
		return paramBlockNumber, "latest", TagLatest
	case blockPending:
		return paramBlockNumber, "pending", TagPending
	default:
		return paramBlockNumber, strconv.FormatUint(b.number, 10), TagNone
	}
}

func (b BlockID) String() string {
	_, value, _ := b.QueryParam()
	return value
}

// ParseBlockID accepts "latest", "pending", a decimal block number or a 0x block hash.
func ParseBlockID(s string) (BlockID, error) {
	switch s = strings.TrimSpace(s); {
	case s == "latest":
		return LatestBlock(), nil
	case s == "pending":
		return PendingBlock(), nil
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		h, err := ParseBlockHash(s)
		if err != nil {
			return BlockID{}, fmt.Errorf("invalid block hash: %w", err)
		}
		return BlockHashID(h), nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return BlockID{}, fmt.Errorf("invalid block id %q: expected latest, pending, a number or a 0x hash", s)
	}
	return BlockNumber(n), nil
}
