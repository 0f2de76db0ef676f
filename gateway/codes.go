package gateway

// ErrorCode is the "code" field of a sequencer error body.
// Unknown codes are preserved verbatim.
type ErrorCode string

const (
	CodeBlockNotFound                 ErrorCode = "StarknetErrorCode.BLOCK_NOT_FOUND"
	CodeClassAlreadyDeclared          ErrorCode = "StarknetErrorCode.CLASS_ALREADY_DECLARED"
	CodeCompilationFailed             ErrorCode = "StarknetErrorCode.COMPILATION_FAILED"
	CodeContractBytecodeSizeTooLarge  ErrorCode = "StarknetErrorCode.CONTRACT_BYTECODE_SIZE_TOO_LARGE"
	CodeContractClassObjectSizeTooBig ErrorCode = "StarknetErrorCode.CONTRACT_CLASS_OBJECT_SIZE_TOO_LARGE"
	CodeDuplicatedTransaction         ErrorCode = "StarknetErrorCode.DUPLICATED_TRANSACTION"
	CodeEntryPointNotFound            ErrorCode = "StarknetErrorCode.ENTRY_POINT_NOT_FOUND_IN_CONTRACT"
	CodeInsufficientAccountBalance    ErrorCode = "StarknetErrorCode.INSUFFICIENT_ACCOUNT_BALANCE"
	CodeInsufficientMaxFee            ErrorCode = "StarknetErrorCode.INSUFFICIENT_MAX_FEE"
	CodeInvalidCompiledClassHash      ErrorCode = "StarknetErrorCode.INVALID_COMPILED_CLASS_HASH"
	CodeInvalidContractClass          ErrorCode = "StarknetErrorCode.INVALID_CONTRACT_CLASS"
	CodeInvalidTransactionNonce       ErrorCode = "StarknetErrorCode.INVALID_TRANSACTION_NONCE"
	CodeInvalidTransactionVersion     ErrorCode = "StarknetErrorCode.INVALID_TRANSACTION_VERSION"
	CodeOutOfRangeBlockHash           ErrorCode = "StarknetErrorCode.OUT_OF_RANGE_BLOCK_HASH"
	CodeOutOfRangeClassHash           ErrorCode = "StarknetErrorCode.OUT_OF_RANGE_CLASS_HASH"
	CodeOutOfRangeContractAddress     ErrorCode = "StarknetErrorCode.OUT_OF_RANGE_CONTRACT_ADDRESS"
	CodeOutOfRangeTransactionHash     ErrorCode = "StarknetErrorCode.OUT_OF_RANGE_TRANSACTION_HASH"
	CodeTransactionFailed             ErrorCode = "StarknetErrorCode.TRANSACTION_FAILED"
	CodeTransactionLimitExceeded      ErrorCode = "StarknetErrorCode.TRANSACTION_LIMIT_EXCEEDED"
	CodeUndeclaredClass               ErrorCode = "StarknetErrorCode.UNDECLARED_CLASS"
	CodeUninitializedContract         ErrorCode = "StarknetErrorCode.UNINITIALIZED_CONTRACT"
	CodeUnsupportedSelectorForFee     ErrorCode = "StarknetErrorCode.UNSUPPORTED_SELECTOR_FOR_FEE"
	CodeValidateFailure               ErrorCode = "StarknetErrorCode.VALIDATE_FAILURE"
	CodeDeprecatedEndpoint            ErrorCode = "StarknetErrorCode.DEPRECATED_ENDPOINT"
	CodeMalformedRequest              ErrorCode = "StarkErrorCode.MALFORMED_REQUEST"
	CodeSchemaValidationError         ErrorCode = "StarkErrorCode.SCHEMA_VALIDATION_ERROR"
)

var knownCodes = map[ErrorCode]struct{}{
	CodeBlockNotFound:                 {},
	CodeClassAlreadyDeclared:          {},
	CodeCompilationFailed:             {},
	CodeContractBytecodeSizeTooLarge:  {},
	CodeContractClassObjectSizeTooBig: {},
	CodeDuplicatedTransaction:         {},
	CodeEntryPointNotFound:            {},
	CodeInsufficientAccountBalance:    {},
	CodeInsufficientMaxFee:            {},
	CodeInvalidCompiledClassHash:      {},
	CodeInvalidContractClass:          {},
	CodeInvalidTransactionNonce:       {},
	CodeInvalidTransactionVersion:     {},
	CodeOutOfRangeBlockHash:           {},
	CodeOutOfRangeClassHash:           {},
	CodeOutOfRangeContractAddress:     {},
	CodeOutOfRangeTransactionHash:     {},
	CodeTransactionFailed:             {},
	CodeTransactionLimitExceeded:      {},
	CodeUndeclaredClass:               {},
	CodeUninitializedContract:         {},
	CodeUnsupportedSelectorForFee:     {},
	CodeValidateFailure:               {},
	CodeDeprecatedEndpoint:            {},
	CodeMalformedRequest:              {},
	CodeSchemaValidationError:         {},
}

// Known reports whether c is one of the codes declared above.
func (c ErrorCode) Known() bool {
	_, ok := knownCodes[c]
	return ok
}
