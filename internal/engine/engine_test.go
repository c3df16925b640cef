package engine

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/finsafe/statement-anonymizer/internal/columns"
	"github.com/finsafe/statement-anonymizer/internal/models"
)

func amounts(txns []models.SanitizedTransaction) []float64 {
	out := make([]float64, len(txns))
	for i, t := range txns {
		out[i] = t.Amount
	}
	return out
}

func TestBalanceReconciliation(t *testing.T) {
	// Balances [100, 100, 80, 80, 130] in ascending file order: zero deltas
	// are dropped, leaving exactly -20 and +50.
	grid := [][]string{
		{"Date", "Description", "Balance"},
		{"2024-01-01", "Alpha Item", "100.00"},
		{"2024-01-02", "Beta Item", "100.00"},
		{"2024-01-03", "Gamma Item", "80.00"},
		{"2024-01-04", "Delta Item", "80.00"},
		{"2024-01-05", "Epsilon Item", "130.00"},
	}

	result, err := New().ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessRows failed: %v", err)
	}

	got := amounts(result.Transactions)
	want := []float64{-20, 50}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("amounts = %v, want %v", got, want)
	}
	for _, txn := range result.Transactions {
		if txn.InferenceSource != models.SourceBalance {
			t.Errorf("source = %q, want %q", txn.InferenceSource, models.SourceBalance)
		}
	}
	if result.Skipped[models.SkipZeroAmount] != 3 {
		t.Errorf("zero_amount skips = %d, want 3", result.Skipped[models.SkipZeroAmount])
	}
}

func TestRowOrderRoundTrip(t *testing.T) {
	forward := [][]string{
		{"Date", "Description", "Balance"},
		{"2024-01-01", "Alpha Item", "100.00"},
		{"2024-01-02", "Beta Item", "100.00"},
		{"2024-01-03", "Gamma Item", "80.00"},
		{"2024-01-04", "Delta Item", "80.00"},
		{"2024-01-05", "Epsilon Item", "130.00"},
	}
	reversed := [][]string{forward[0]}
	for i := len(forward) - 1; i >= 1; i-- {
		reversed = append(reversed, forward[i])
	}

	p := New()
	fwdResult, err := p.ProcessRows(forward, models.DefaultOptions())
	if err != nil {
		t.Fatalf("forward run failed: %v", err)
	}
	revResult, err := p.ProcessRows(reversed, models.DefaultOptions())
	if err != nil {
		t.Fatalf("reversed run failed: %v", err)
	}

	if revResult.Decision.RowOrder != models.OrderDescending {
		t.Fatalf("reversed row order = %q, want desc", revResult.Decision.RowOrder)
	}

	fwd := amounts(fwdResult.Transactions)
	rev := amounts(revResult.Transactions)
	sort.Float64s(fwd)
	sort.Float64s(rev)
	if len(fwd) != len(rev) {
		t.Fatalf("transaction counts differ: %d vs %d", len(fwd), len(rev))
	}
	for i := range fwd {
		if math.Abs(fwd[i]-rev[i]) > 0.01 {
			t.Errorf("amount %d: forward %v, reversed %v", i, fwd[i], rev[i])
		}
	}
}

func TestSplitColumns(t *testing.T) {
	grid := [][]string{
		{"Date", "Description", "Debit", "Credit"},
		{"01/02/2024", "Coffee Shop", "45.00", ""},
		{"01/03/2024", "Grocery Store", "30.00", ""},
		{"01/04/2024", "Payroll Deposit", "", "1500.00"},
	}

	result, err := New().ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessRows failed: %v", err)
	}

	if result.Decision.Strategy != models.StrategySplit {
		t.Errorf("strategy = %q, want split", result.Decision.Strategy)
	}
	if len(result.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(result.Transactions))
	}

	first := result.Transactions[0]
	if first.Amount != -45.00 {
		t.Errorf("debit row amount = %v, want -45.00", first.Amount)
	}
	if first.Type != "expense" {
		t.Errorf("debit row type = %q, want expense", first.Type)
	}
	if first.InferenceSource != models.SourceExplicit {
		t.Errorf("debit row source = %q, want explicit", first.InferenceSource)
	}

	last := result.Transactions[2]
	if last.Amount != 1500.00 || last.Type != "income" {
		t.Errorf("credit row = %v/%s, want 1500.00/income", last.Amount, last.Type)
	}
}

func TestStrategyPriorityTypeOverBalance(t *testing.T) {
	// With both a type column and a balance column the declared strategy is
	// type, while the amounts themselves still come from balance movement
	// wherever a previous balance exists.
	grid := [][]string{
		{"Date", "Description", "Kind", "Amount", "Balance"},
		{"2024-01-01", "First Purchase", "credit", "100.00", "100.00"},
		{"2024-01-02", "Salary Arrived", "credit", "50.00", "150.00"},
		{"2024-01-03", "Grocery Trip", "debit", "30.00", "120.00"},
		{"2024-01-04", "Fuel Fillup", "debit", "20.00", "100.00"},
	}

	result, err := New().ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessRows failed: %v", err)
	}

	if result.Decision.Strategy != models.StrategyType {
		t.Fatalf("strategy = %q, want type", result.Decision.Strategy)
	}
	if len(result.Transactions) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(result.Transactions))
	}

	// First row has no prior balance, so the type column decides it.
	if result.Transactions[0].InferenceSource != models.SourceExplicit {
		t.Errorf("first row source = %q, want explicit", result.Transactions[0].InferenceSource)
	}
	// Later rows are balance-derived despite the declared type strategy.
	for _, txn := range result.Transactions[1:] {
		if txn.InferenceSource != models.SourceBalance {
			t.Errorf("row %s source = %q, want %q", txn.Date, txn.InferenceSource, models.SourceBalance)
		}
	}
	wantAmounts := []float64{100, 50, -30, -20}
	if got := amounts(result.Transactions); !reflect.DeepEqual(got, wantAmounts) {
		t.Errorf("amounts = %v, want %v", got, wantAmounts)
	}
}

func TestTypeColumnOverridesUnsignedAmount(t *testing.T) {
	grid := [][]string{
		{"Date", "Kind", "Amount", "Description"},
		{"2024-01-02", "debit", "45.00", "Coffee Shop"},
		{"2024-01-03", "credit", "1500.00", "Payroll Deposit"},
		{"2024-01-04", "withdrawal", "60.00", "Cash Machine"},
	}

	result, err := New().ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessRows failed: %v", err)
	}

	want := []float64{-45, 1500, -60}
	if got := amounts(result.Transactions); !reflect.DeepEqual(got, want) {
		t.Fatalf("amounts = %v, want %v", got, want)
	}
	for _, txn := range result.Transactions {
		if txn.InferenceSource != models.SourceExplicit {
			t.Errorf("source = %q, want explicit", txn.InferenceSource)
		}
	}
}

func TestUnsignedAmountFallsBackToDescription(t *testing.T) {
	grid := [][]string{
		{"Date", "Amount", "Description"},
		{"2024-01-02", "45.00", "Card Payment Grocery Store"},
		{"2024-01-03", "1500.00", "Salary Deposit Employer"},
		{"2024-01-04", "12.00", "Corner Bakery"},
	}

	result, err := New().ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessRows failed: %v", err)
	}
	if len(result.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(result.Transactions))
	}

	tests := []struct {
		amount float64
		source models.InferenceSource
	}{
		{-45, models.SourceDescription},
		{1500, models.SourceDescription},
		{-12, models.SourceFallback},
	}
	for i, tt := range tests {
		txn := result.Transactions[i]
		if txn.Amount != tt.amount {
			t.Errorf("row %d amount = %v, want %v", i, txn.Amount, tt.amount)
		}
		if txn.InferenceSource != tt.source {
			t.Errorf("row %d source = %q, want %q", i, txn.InferenceSource, tt.source)
		}
	}
}

func TestOutputInvariants(t *testing.T) {
	grid := [][]string{
		{"Date", "Amount", "Description"},
		{"2024-01-02", "-4.50", "Coffee Shop"},
		{"2024-01-03", "0.00", "Voided Entry"},
		{"2024-01-04", "+1500.00", "Payroll Deposit"},
		{"2024-01-05", "-12.00", "Corner Bakery"},
	}

	result, err := New().ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessRows failed: %v", err)
	}

	for _, txn := range result.Transactions {
		if txn.Amount == 0 {
			t.Error("zero-amount transaction emitted")
		}
		if txn.Amount > 0 && txn.Type != "income" {
			t.Errorf("positive amount %v typed %q", txn.Amount, txn.Type)
		}
		if txn.Amount < 0 && txn.Type != "expense" {
			t.Errorf("negative amount %v typed %q", txn.Amount, txn.Type)
		}
		if txn.Merchant == "" {
			t.Error("empty merchant emitted")
		}
		if txn.Date == "" {
			t.Error("empty date emitted")
		}
	}
	if result.Skipped[models.SkipZeroAmount] != 1 {
		t.Errorf("zero_amount skips = %d, want 1", result.Skipped[models.SkipZeroAmount])
	}
}

func TestSummaryRowsAnchorButSkip(t *testing.T) {
	grid := [][]string{
		{"Date", "Description", "Balance"},
		{"2024-01-01", "Opening Balance", "1000.00"},
		{"2024-01-02", "Grocery Trip", "950.00"},
		{"2024-01-03", "Closing Balance", "950.00"},
	}

	result, err := New().ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessRows failed: %v", err)
	}

	if result.Skipped[models.SkipSummaryRow] != 2 {
		t.Errorf("summary skips = %d, want 2", result.Skipped[models.SkipSummaryRow])
	}
	// The opening row anchors the walk, so the grocery row still yields -50.
	if got := amounts(result.Transactions); !reflect.DeepEqual(got, []float64{-50}) {
		t.Errorf("amounts = %v, want [-50]", got)
	}
}

func TestImplausibleDeltaRejected(t *testing.T) {
	grid := [][]string{
		{"Date", "Description", "Balance"},
		{"2024-01-01", "Seed Row", "1000.00"},
		{"2024-01-02", "Small One", "1010.00"},
		{"2024-01-03", "Small Two", "1020.00"},
		{"2024-01-04", "Small Three", "1030.00"},
		{"2024-01-05", "Small Four", "1040.00"},
		{"2024-01-06", "Section Artifact", "999999.00"},
		{"2024-01-07", "Small Five", "999989.00"},
	}

	result, err := New().ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessRows failed: %v", err)
	}

	if result.Skipped[models.SkipImplausibleRow] != 1 {
		t.Errorf("implausible skips = %d, want 1", result.Skipped[models.SkipImplausibleRow])
	}
	for _, txn := range result.Transactions {
		if math.Abs(txn.Amount) > outlierFloor {
			t.Errorf("outlier delta leaked into output: %v", txn.Amount)
		}
	}
	// The anchor still advanced, so the row after the artifact yields -10.
	last := result.Transactions[len(result.Transactions)-1]
	if last.Amount != -10 {
		t.Errorf("post-artifact amount = %v, want -10", last.Amount)
	}
}

func TestBadDateAndShortRowsSkipped(t *testing.T) {
	grid := [][]string{
		{"Date", "Amount", "Description"},
		{"2024-01-02", "-4.50", "Coffee Shop"},
		{"not a date", "-9.00", "Mystery Row"},
		{"stub"},
		{"2024-01-05", "-12.00", "Corner Bakery"},
	}

	result, err := New().ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessRows failed: %v", err)
	}
	if len(result.Transactions) != 2 {
		t.Errorf("expected 2 transactions, got %d", len(result.Transactions))
	}
	if result.Skipped[models.SkipBadDate] != 1 {
		t.Errorf("bad_date skips = %d, want 1", result.Skipped[models.SkipBadDate])
	}
	if result.Skipped[models.SkipShortRow] != 1 {
		t.Errorf("short_row skips = %d, want 1", result.Skipped[models.SkipShortRow])
	}
}

func TestPairedNumericColumnsStayAligned(t *testing.T) {
	// Rows where only one of the two cells parses must be dropped from
	// both sequences, not just the one with the gap.
	rows := [][]string{
		{"Date", "Amount", "Balance"},
		{"2024-01-02", "-20.00", "80.00"},
		{"2024-01-03", "-5.00", ""},
		{"2024-01-04", "", "70.00"},
		{"2024-01-05", "-10.00", "60.00"},
	}

	balances, amounts := pairedNumericColumns(rows, 2, 1)
	if len(balances) != 2 || len(amounts) != 2 {
		t.Fatalf("lengths = %d/%d, want 2/2", len(balances), len(amounts))
	}
	if balances[0] != 80 || amounts[0] != -20 {
		t.Errorf("first pair = %v/%v, want 80/-20", balances[0], amounts[0])
	}
	if balances[1] != 60 || amounts[1] != -10 {
		t.Errorf("second pair = %v/%v, want 60/-10", balances[1], amounts[1])
	}
}

func TestMissingDateColumnFails(t *testing.T) {
	grid := [][]string{
		{"Description", "Amount"},
		{"Coffee", "4.50"},
	}
	_, err := New().ProcessRows(grid, models.DefaultOptions())
	if err == nil {
		t.Fatal("expected an error for a grid with no date column")
	}
	if !errors.Is(err, columns.ErrNoDateColumn) {
		t.Errorf("expected ErrNoDateColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "Date") {
		t.Errorf("error should name the missing Date role: %q", err.Error())
	}
}

func TestTooFewRowsFails(t *testing.T) {
	_, err := New().ProcessRows([][]string{{"Date", "Amount"}}, models.DefaultOptions())
	if !errors.Is(err, ErrTooFewRows) {
		t.Errorf("expected ErrTooFewRows, got %v", err)
	}
}

func TestProcessTokenizesText(t *testing.T) {
	text := "Date,Amount,Description\n2024-01-02,-4.50,Coffee Shop\n2024-01-03,1500.00,Payroll Deposit\n"
	result, err := New().Process(text, models.DefaultOptions())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(result.Transactions))
	}
	if result.RunID == "" {
		t.Error("expected a run ID")
	}
}

func TestProcessDeterministic(t *testing.T) {
	grid := [][]string{
		{"Date", "Amount", "Description"},
		{"2024-01-02", "-4.50", "Coffee Shop"},
		{"2024-01-03", "1500.00", "Payroll Deposit"},
		{"2024-01-04", "-60.00", "Fuel Station"},
	}

	p := New()
	first, err := p.ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := p.ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if !reflect.DeepEqual(first.Transactions, second.Transactions) {
		t.Error("transactions differ between identical runs")
	}
	if !reflect.DeepEqual(first.Columns, second.Columns) {
		t.Error("column analyses differ between identical runs")
	}
	if first.RunID == second.RunID {
		t.Error("run IDs should be unique per invocation")
	}
}

func TestPreflightSubsetOfProcess(t *testing.T) {
	grid := [][]string{
		{"Date", "Amount", "Description"},
		{"2024-01-02", "-4.50", "card 4111 1111 1111 1111 coffee"},
		{"2024-01-03", "-9.00", "payment to john@example.com"},
		{"2024-01-04", "-12.00", "branch 90210 bakery"},
		{"2024-01-05", "1500.00", "payroll ref: 99887766"},
		{"2024-01-06", "-30.00", "call 555-123-4567 support"},
	}

	p := New()
	sample := 3
	pre, err := p.PreflightRows(grid, models.PreflightOptions{
		Options:    models.DefaultOptions(),
		SampleSize: sample,
	})
	if err != nil {
		t.Fatalf("PreflightRows failed: %v", err)
	}
	full, err := p.ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessRows failed: %v", err)
	}

	if pre.SampledRows != sample {
		t.Errorf("sampled rows = %d, want %d", pre.SampledRows, sample)
	}
	if pre.Planned.Total() > full.Report.Total() {
		t.Errorf("preflight overstates redactions: %d > %d", pre.Planned.Total(), full.Report.Total())
	}
	for kind, n := range pre.Planned.Redactions {
		if n > full.Report.Redactions[kind] {
			t.Errorf("kind %s: preflight %d > full %d", kind, n, full.Report.Redactions[kind])
		}
	}
	if pre.Planned.TransactionIDs > full.Report.TransactionIDs {
		t.Errorf("preflight transaction IDs %d > full %d", pre.Planned.TransactionIDs, full.Report.TransactionIDs)
	}
}

func TestPreflightSampleCoversWholeGridExactly(t *testing.T) {
	grid := [][]string{
		{"Date", "Amount", "Description"},
		{"2024-01-02", "-4.50", "payment to john@example.com"},
		{"2024-01-03", "-9.00", "branch 90210 bakery"},
	}

	p := New()
	pre, err := p.PreflightRows(grid, models.PreflightOptions{Options: models.DefaultOptions()})
	if err != nil {
		t.Fatalf("PreflightRows failed: %v", err)
	}
	full, err := p.ProcessRows(grid, models.DefaultOptions())
	if err != nil {
		t.Fatalf("ProcessRows failed: %v", err)
	}

	if pre.SampledRows != 2 {
		t.Errorf("sampled rows = %d, want 2", pre.SampledRows)
	}
	if !reflect.DeepEqual(pre.Planned.Redactions, full.Report.Redactions) {
		t.Errorf("full-coverage preflight should match the real run:\npre:  %v\nfull: %v",
			pre.Planned.Redactions, full.Report.Redactions)
	}
}
