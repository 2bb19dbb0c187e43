package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// setupTools registers the full tool catalogue. Done once during
// construction; the registry is read-only afterwards.
func (s *Server) setupTools() {
	createTransferTool := mcp.NewTool("create_transfer",
		mcp.WithDescription(
			"Creates an unsigned transaction blob. Accepts either a simple transfer "+
				"(symbol/source/destination/amount) or a generic contract call "+
				"(signer/contract/function/args). Returns the blob and the signing payload; "+
				"sign the payload externally with BLS12-381, then call submit_transaction."),
		mcp.WithString("symbol",
			mcp.Description("Token symbol to transfer (e.g. 'AMA'); transfer form")),
		mcp.WithString("source",
			mcp.Description("Sender public key, base58; transfer form")),
		mcp.WithString("destination",
			mcp.Description("Recipient address, base58; transfer form")),
		mcp.WithString("amount",
			mcp.Description("Amount in atomic units as a decimal string (1 AMA = 1000000000); transfer form")),
		mcp.WithString("memo",
			mcp.Description("Optional memo appended to the transfer arguments")),
		mcp.WithString("signer",
			mcp.Description("Signer public key, base58; generic form")),
		mcp.WithString("contract",
			mcp.Description("Contract name (e.g. 'Coin'); generic form")),
		mcp.WithString("function",
			mcp.Description("Contract function to call; generic form")),
		mcp.WithArray("args",
			mcp.Description("Ordered arguments: strings, numbers, or tagged objects "+
				"({\"address\": b58}, {\"b58\": ...}, {\"hex\": ...}, {\"utf8\": ...}); generic form")),
		mcp.WithNumber("nonce",
			mcp.Description("Optional nonce; defaults to the current unix nanosecond timestamp")),
	)
	s.mcpServer.AddTool(createTransferTool, s.handleCreateTransfer)

	submitTransactionTool := mcp.NewTool("submit_transaction",
		mcp.WithDescription(
			"Submits a signed transaction. Provide the unsigned blob from create_transfer "+
				"and/or its logical fields plus the base58 BLS signature over the signing payload. "+
				"The canonical encoding is re-derived and the signature verified before anything "+
				"reaches the network."),
		mcp.WithString("transaction",
			mcp.Description("Unsigned transaction blob, base58")),
		mcp.WithObject("tx",
			mcp.Description("Logical transaction fields: signer, contract, function, args, nonce")),
		mcp.WithString("signature",
			mcp.Required(),
			mcp.Description("BLS12-381 signature over the signing payload, base58")),
		mcp.WithString("network",
			mcp.Description("Target network (default mainnet)"),
			mcp.Enum("mainnet", "testnet"),
			mcp.DefaultString("mainnet")),
	)
	s.mcpServer.AddTool(submitTransactionTool, s.handleSubmitTransaction)

	balanceTool := mcp.NewTool("get_account_balance",
		mcp.WithDescription("Queries the balance of an account across all supported assets."),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("Account public key, base58")),
	)
	s.mcpServer.AddTool(balanceTool, s.handleGetAccountBalance)

	statsTool := mcp.NewTool("get_chain_stats",
		mcp.WithDescription("Retrieves current blockchain statistics including height, "+
			"total transactions, and total accounts."),
	)
	s.mcpServer.AddTool(statsTool, s.handleGetChainStats)

	blockTool := mcp.NewTool("get_block_by_height",
		mcp.WithDescription("Retrieves all chain entries at a specific height."),
		mcp.WithNumber("height",
			mcp.Required(),
			mcp.Description("Block height, non-negative integer")),
	)
	s.mcpServer.AddTool(blockTool, s.handleGetBlockByHeight)

	transactionTool := mcp.NewTool("get_transaction",
		mcp.WithDescription("Retrieves a specific transaction by its hash."),
		mcp.WithString("tx_hash",
			mcp.Required(),
			mcp.Description("Transaction hash, base58")),
	)
	s.mcpServer.AddTool(transactionTool, s.handleGetTransaction)

	historyTool := mcp.NewTool("get_transaction_history",
		mcp.WithDescription("Retrieves transaction history for an account. "+
			"Supports limit, offset and sort."),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("Account public key, base58")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum events to return (1-100)")),
		mcp.WithNumber("offset",
			mcp.Description("Events to skip")),
		mcp.WithString("sort",
			mcp.Description("Sort order by time"),
			mcp.Enum("asc", "desc")),
	)
	s.mcpServer.AddTool(historyTool, s.handleGetTransactionHistory)

	validatorsTool := mcp.NewTool("get_validators",
		mcp.WithDescription("Retrieves the list of current validator nodes (trainers)."),
	)
	s.mcpServer.AddTool(validatorsTool, s.handleGetValidators)

	contractStateTool := mcp.NewTool("get_contract_state",
		mcp.WithDescription("Retrieves a value from smart contract storage by contract address and key."),
		mcp.WithString("contract_address",
			mcp.Required(),
			mcp.Description("Contract address, base58")),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Storage key")),
	)
	s.mcpServer.AddTool(contractStateTool, s.handleGetContractState)

	// Registered only when faucet key material is configured.
	if s.faucet != nil {
		faucetTool := mcp.NewTool("claim_testnet_ama",
			mcp.WithDescription("Claims testnet AMA tokens for an address. "+
				"Limited to one claim per caller per 24 hours."),
			mcp.WithString("address",
				mcp.Required(),
				mcp.Description("Destination address, base58")),
		)
		s.mcpServer.AddTool(faucetTool, s.handleClaimTestnetAMA)
	}
}
