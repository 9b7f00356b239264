package ledger

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rxtech-lab/meshetar/internal/types"
	"github.com/stretchr/testify/suite"
)

type LedgerTestSuite struct {
	suite.Suite
	start time.Time
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (suite *LedgerTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *LedgerTestSuite) fill(index int, side types.PurchaseType, qty, price, fee float64) types.Fill {
	return types.Fill{
		OrderID:  "ord",
		Symbol:   "TEST",
		Side:     side,
		Quantity: qty,
		Price:    price,
		Fee:      fee,
		Index:    index,
		Time:     suite.start.Add(time.Duration(index) * time.Hour),
	}
}

func (suite *LedgerTestSuite) bar(index int, price float64) types.Bar {
	return types.Bar{
		Symbol: "TEST",
		Time:   suite.start.Add(time.Duration(index) * time.Hour),
		Open:   price,
		High:   price,
		Low:    price,
		Close:  price,
		Volume: 1,
	}
}

func (suite *LedgerTestSuite) assertInvariant(l *Ledger, snapshot types.LedgerSnapshot) {
	expected := snapshot.Cash + snapshot.Quantity*snapshot.Close
	scale := math.Max(1, math.Abs(expected))
	suite.Require().LessOrEqual(math.Abs(expected-snapshot.Equity), 1e-9*scale, "cash + qty*close at %d", snapshot.Index)

	total := l.InitialCapital() + snapshot.RealizedPnL + snapshot.UnrealizedPnL
	suite.Require().LessOrEqual(math.Abs(total-snapshot.Equity), 1e-9*scale, "capital + pnl at %d", snapshot.Index)
}

func (suite *LedgerTestSuite) TestRoundTripWithFlatFees() {
	l := NewLedger("TEST", 1000)

	position := l.Apply(suite.fill(0, types.PurchaseTypeBuy, 1, 100, 0.5))
	suite.Equal(1.0, position.Quantity)
	suite.Equal(100.5, position.AverageEntryPrice)
	suite.Equal(0, position.OpenedIndex)
	suite.Equal(899.5, l.Cash())

	position = l.Apply(suite.fill(1, types.PurchaseTypeSell, 1, 105, 0.5))
	suite.True(position.IsFlat())
	suite.Equal(4.0, l.RealizedPnL())
	suite.Equal(1.0, l.Fees())
	suite.Equal(1004.0, l.Cash())

	trades := l.Trades()
	suite.Require().Len(trades, 1)
	suite.Equal(types.PositionTypeLong, trades[0].Side)
	suite.Equal(4.0, trades[0].PnL)
	suite.Equal(0.5, trades[0].ExitFee)
	suite.Equal(time.Hour, trades[0].HoldingTime())
}

func (suite *LedgerTestSuite) TestWeightedAverageOnIncrease() {
	l := NewLedger("TEST", 10000)
	l.Apply(suite.fill(0, types.PurchaseTypeBuy, 2, 100, 0))
	position := l.Apply(suite.fill(1, types.PurchaseTypeBuy, 2, 110, 0))

	suite.Equal(4.0, position.Quantity)
	suite.Equal(105.0, position.AverageEntryPrice)
	suite.Equal(0, position.OpenedIndex)

	snapshot := l.Mark(1, suite.bar(1, 120))
	suite.Equal(60.0, snapshot.UnrealizedPnL)
	suite.assertInvariant(l, snapshot)
}

func (suite *LedgerTestSuite) TestPartialClose() {
	l := NewLedger("TEST", 10000)
	l.Apply(suite.fill(0, types.PurchaseTypeBuy, 4, 100, 0))
	position := l.Apply(suite.fill(1, types.PurchaseTypeSell, 1, 90, 0))

	suite.Equal(3.0, position.Quantity)
	suite.Equal(100.0, position.AverageEntryPrice)
	suite.Equal(-10.0, l.RealizedPnL())
}

func (suite *LedgerTestSuite) TestShort() {
	l := NewLedger("TEST", 1000)

	position := l.Apply(suite.fill(0, types.PurchaseTypeSell, 2, 100, 1))
	suite.Equal(-2.0, position.Quantity)
	suite.Equal(99.5, position.AverageEntryPrice)
	suite.Equal(1199.0, l.Cash())

	snapshot := l.Mark(0, suite.bar(0, 100))
	suite.Equal(-1.0, snapshot.UnrealizedPnL)
	suite.assertInvariant(l, snapshot)

	l.Apply(suite.fill(1, types.PurchaseTypeBuy, 2, 90, 1))
	suite.Equal(18.0, l.RealizedPnL())
	suite.Equal(types.PositionTypeShort, l.Trades()[0].Side)
}

func (suite *LedgerTestSuite) TestReversalSplitsFill() {
	l := NewLedger("TEST", 1000)
	l.Apply(suite.fill(0, types.PurchaseTypeBuy, 1, 100, 0))

	position := l.Apply(suite.fill(2, types.PurchaseTypeSell, 3, 110, 3))
	suite.Equal(-2.0, position.Quantity)
	// closing 1 unit carries a third of the fee
	suite.Equal(9.0, l.RealizedPnL())
	// the opening 2 units carry the rest, lowering the short entry
	suite.Equal(109.0, position.AverageEntryPrice)
	suite.Equal(2, position.OpenedIndex)

	snapshot := l.Mark(2, suite.bar(2, 110))
	suite.assertInvariant(l, snapshot)
	suite.Equal(-2.0, snapshot.UnrealizedPnL)
}

func (suite *LedgerTestSuite) TestMarkEveryBar() {
	l := NewLedger("TEST", 500)

	for i, price := range []float64{10, 11, 12} {
		snapshot := l.Mark(i, suite.bar(i, price))
		suite.Equal(500.0, snapshot.Equity)
		suite.Equal(0.0, snapshot.UnrealizedPnL)
	}

	suite.Len(l.Snapshots(), 3)
	suite.Equal(500.0, l.EquityAt(99))
}

func (suite *LedgerTestSuite) TestInvariantUnderRandomFills() {
	rng := rand.New(rand.NewSource(11))
	l := NewLedger("TEST", 100000)
	price := 100.0

	for i := 0; i < 500; i++ {
		price *= 1 + rng.NormFloat64()*0.02

		if rng.Float64() < 0.3 {
			side := types.PurchaseTypeBuy
			if rng.Float64() < 0.5 {
				side = types.PurchaseTypeSell
			}

			qty := float64(1 + rng.Intn(5))
			l.Apply(suite.fill(i, side, qty, price, rng.Float64()))
		}

		suite.assertInvariant(l, l.Mark(i, suite.bar(i, price)))
	}
}
