// Package custody provides a funds-custody ledger for Go applications.
//
// Custody is a library, not a service. Contributors fund a shared pool in
// ether; each contribution is priced through an oracle and must be worth at
// least a minimum in USD. A single owner withdraws the whole pool, which
// clears every contribution record and closes the current round.
//
//   - Exact 256-bit integer arithmetic for every amount
//   - Pluggable price feeds (Chainlink aggregator, Redis relay, static)
//   - Pluggable transfer primitive with gas accounting
//   - Optional persistence (PostgreSQL, SQLite, MongoDB, LevelDB, memory)
//     with recovery of the open round on start
//   - Plugin hooks for metrics and audit trails
//
// # Quick Start
//
//	feed := oracle.NewStaticFeed(8, big.NewInt(2000_00000000)) // 1 ETH = $2000
//	payer := wallet.New()
//
//	l, err := custody.New(deployer, feed, payer,
//	    custody.WithMinimum(custody.MustUSD("50")),
//	    custody.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, err := l.Fund(ctx, alice, custody.MustEther("0.1")); err != nil {
//	    log.Fatal(err)
//	}
//
//	w, err := l.Withdraw(ctx, deployer)
//
// # Ordering
//
// Fund and Withdraw are serialized by one mutex. Withdraw checks the owner,
// then clears the ledger and zeroes the balance, and only then calls the
// transferer. If the transfer fails the Policy decides the outcome:
// PolicyRollback restores the cleared state, PolicyHalt keeps it and stops
// the ledger with ErrInconsistentState.
//
// # Persistence
//
// With WithStore every accepted funding, deposit and withdrawal is recorded.
// Start replays the fundings of the open round. A withdrawal left pending or
// stranded in that round means a transfer outcome is unknown, and Start
// refuses to run.
//
// # TypeID
//
// Persisted records use TypeID identifiers:
//
//	fund_01h2xcejqtf2nbrexx3vqjhp41  // Funding
//	dep_01h2xcejqtf2nbrexx3vqjhp41   // Deposit
//	wdr_01h455vb4pex5vsknk084sn02q   // Withdrawal
package custody
