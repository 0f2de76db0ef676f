package gateway

// method is a sequencer REST endpoint name. The set is closed: a path segment
// can only come from the constants below.
type method string

const (
	methodAddTransaction              method = "add_transaction"
	methodGetBlock                    method = "get_block"
	methodGetClassByHash              method = "get_class_by_hash"
	methodGetCompiledClassByClassHash method = "get_compiled_class_by_class_hash"
	methodGetTransaction              method = "get_transaction"
	methodGetStateUpdate              method = "get_state_update"
	methodGetContractAddresses        method = "get_contract_addresses"
	methodGetBlockTraces              method = "get_block_traces"
	methodGetTransactionTrace         method = "get_transaction_trace"
	methodGetSignature                method = "get_signature"
)

var methodCatalog = []method{
	methodAddTransaction,
	methodGetBlock,
	methodGetClassByHash,
	methodGetCompiledClassByClassHash,
	methodGetTransaction,
	methodGetStateUpdate,
	methodGetContractAddresses,
	methodGetBlockTraces,
	methodGetTransactionTrace,
	methodGetSignature,
}

// Methods lists every declared method name, e.g. for registering metric series up front.
func Methods() []string {
	names := make([]string, len(methodCatalog))
	for i, m := range methodCatalog {
		names[i] = string(m)
	}
	return names
}

// AddTransaction selects the add_transaction method on the gateway.
func (s MethodStage) AddTransaction() ParamsStage {
	return s.withMethod(methodAddTransaction)
}

// GetBlock selects the get_block method.
func (s MethodStage) GetBlock() ParamsStage {
	return s.withMethod(methodGetBlock)
}

// GetClassByHash selects the get_class_by_hash method.
func (s MethodStage) GetClassByHash() ParamsStage {
	return s.withMethod(methodGetClassByHash)
}

// GetCompiledClassByClassHash selects the get_compiled_class_by_class_hash method.
func (s MethodStage) GetCompiledClassByClassHash() ParamsStage {
	return s.withMethod(methodGetCompiledClassByClassHash)
}

// GetTransaction selects the get_transaction method.
func (s MethodStage) GetTransaction() ParamsStage {
	return s.withMethod(methodGetTransaction)
}

// GetStateUpdate selects the get_state_update method.
func (s MethodStage) GetStateUpdate() ParamsStage {
	return s.withMethod(methodGetStateUpdate)
}

// GetContractAddresses selects the get_contract_addresses method.
func (s MethodStage) GetContractAddresses() ParamsStage {
	return s.withMethod(methodGetContractAddresses)
}

// GetBlockTraces selects the get_block_traces method.
func (s MethodStage) GetBlockTraces() ParamsStage {
	return s.withMethod(methodGetBlockTraces)
}

// GetTransactionTrace selects the get_transaction_trace method.
func (s MethodStage) GetTransactionTrace() ParamsStage {
	return s.withMethod(methodGetTransactionTrace)
}

// GetSignature selects the get_signature method.
func (s MethodStage) GetSignature() ParamsStage {
	return s.withMethod(methodGetSignature)
}
