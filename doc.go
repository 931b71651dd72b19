// Package paygate provides an embeddable payment gateway engine for Go
// applications.
//
// Paygate is designed as a library, not a service. It keeps the full state
// machine of a small payment platform — an owner-curated merchant registry,
// fixed-price payment links and recurring subscription plans — while leaving
// value movement, identity proof and time to injected collaborators. It
// provides:
//
//   - An owner-gated merchant registry with immediate revocation
//   - Reusable fixed-price payment links with one-way deactivation
//   - Recurring subscription plans billed in whole fixed periods
//   - A permissionless billing trigger plus an opt-in background worker
//   - Pluggable storage (memory, Postgres, SQLite, MongoDB)
//   - A plugin event bus for audit trails and metrics
//
// # Quick Start
//
// Create a gateway instance with your preferred store:
//
//	import (
//	    "github.com/xraph/paygate"
//	    "github.com/xraph/paygate/store/postgres"
//	)
//
//	// Initialize store (db is a *grove.DB opened with the pgdriver;
//	// use store/memory for tests and demos)
//	store := postgres.New(db)
//
//	// Create gateway
//	gw := paygate.New(store,
//	    paygate.WithTransferor(tokenBackend),
//	    paygate.WithVerifier(verifier),
//	)
//
//	// Start the gateway (runs migrations, begins background workers)
//	if err := gw.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer gw.Stop()
//
// # Core Concepts
//
// The first authenticated caller of Init becomes the owner and fixes the
// settlement token; both are immutable afterwards:
//
//	err := gw.Init(ctx, owner, tokenAddr)
//
// The owner authorizes merchants, and only merchants publish links and plans:
//
//	err := gw.AddMerchant(ctx, owner, merchantAddr)
//	linkID, err := gw.CreatePaymentLink(ctx, merchantAddr, paygate.NewAmount(2500), "Lifetime license")
//	planID, err := gw.CreateSubscriptionPlan(ctx, merchantAddr, paygate.NewAmount(100), 2592000, "Pro monthly")
//
// Anyone authenticated can pay a link or subscribe; subscribing charges the
// first period upfront:
//
//	err := gw.ProcessPayment(ctx, payer, linkID)
//	subID, err := gw.Subscribe(ctx, subscriber, planID)
//
// # Invariants
//
// Every operation either completes fully or leaves no trace: the external
// token transfer runs before any state is written, so a failed charge never
// creates a record or burns an id. Deactivation of links, plans and
// subscriptions is a one-way latch with no reactivation. Ids are dense,
// monotonically increasing and never reused.
//
// All monetary amounts use 256-bit integer arithmetic in the token's
// smallest unit; there are no floating-point values anywhere in the engine.
//
// # Integration
//
// Paygate integrates with the Forgery ecosystem: the extension package
// adapts the engine as a Forge extension with YAML configuration and
// dependency injection, audithook bridges engine events to an audit
// recorder, and observability counts lifecycle events through a pluggable
// metric factory.
package paygate
