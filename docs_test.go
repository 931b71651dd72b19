package paygate_test

import (
	"context"
	"log"
	"log/slog"
	"testing"

	paygate "github.com/xraph/paygate"
	"github.com/xraph/paygate/auth"
	"github.com/xraph/paygate/store/memory"
	"github.com/xraph/paygate/token"
	"github.com/xraph/paygate/types"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Token backend (in-memory ledger for demo)
		ledger := token.NewLedger()

		// Initialize the gateway
		gw := paygate.New(store,
			paygate.WithLogger(slog.Default()),
			paygate.WithTransferor(ledger),
		)

		// Start the engine
		ctx := context.Background()
		if err := gw.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer gw.Stop()

		// Addresses come from whatever authenticated the request
		deployer := types.MustParseAddress("GDEPLOYER")
		seller := types.MustParseAddress("GSELLER")
		buyer := types.MustParseAddress("GBUYER")
		asset := types.MustParseAddress("CUSDC")

		// One-time initialization: the invoker becomes the owner
		if err := gw.Init(auth.WithCaller(ctx, deployer), deployer, asset); err != nil {
			t.Fatal(err)
		}

		// Authorize a merchant (owner only)
		if err := gw.AddMerchant(auth.WithCaller(ctx, deployer), deployer, seller); err != nil {
			t.Fatal(err)
		}

		// Merchant publishes a payment link
		linkID, err := gw.CreatePaymentLink(auth.WithCaller(ctx, seller), seller,
			types.NewAmount(4900), "Pro License")
		if err != nil {
			t.Fatal(err)
		}

		// Buyer pays the link
		ledger.Mint(buyer, types.NewAmount(10000))
		if err := gw.ProcessPayment(auth.WithCaller(ctx, buyer), buyer, linkID); err != nil {
			t.Fatal(err)
		}

		log.Printf("Seller balance: %s\n", ledger.Balance(seller))

		// Merchant publishes a monthly plan (interval in seconds)
		planID, err := gw.CreateSubscriptionPlan(auth.WithCaller(ctx, seller), seller,
			types.NewAmount(900), 30*24*3600, "Starter")
		if err != nil {
			t.Fatal(err)
		}

		// Buyer subscribes; the first period is charged upfront
		subID, err := gw.Subscribe(auth.WithCaller(ctx, buyer), buyer, planID)
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("Subscription %s active\n", subID)
	})

	// Test Amount type examples
	t.Run("AmountExamples", func(t *testing.T) {
		// Constructors
		_ = types.NewAmount(4900)
		_ = types.MustParseAmount("340282366920938463463374607431768211455")
		_ = types.ZeroAmount()

		// Arithmetic
		a := types.NewAmount(100)
		b := types.NewAmount(200)
		_ = a.Add(b)
		_ = b.Sub(a)
		_ = a.Neg()

		// Comparison
		if a.LessThan(b) {
			// a is less than b
		}
		if a.IsPositive() {
			// a is greater than zero
		}

		// Formatting
		_ = a.String() // "100"
	})

	// Test error classification examples
	t.Run("ErrorHelperExamples", func(t *testing.T) {
		err := paygate.ErrLinkNotFound
		if paygate.IsNotFound(err) {
			// treat as 404
		}
		if paygate.IsAuthorizationError(paygate.ErrNotOwner) {
			// treat as 403
		}
		if paygate.IsInactive(paygate.ErrPlanInactive) {
			// treat as gone
		}
	})
}
