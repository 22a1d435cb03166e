package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"churn-engine/core/types"
	"churn-engine/internal/errors"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

// TestReadCSVParsesSnapshot proves a well-formed snapshot loads with all
// fields populated
func TestReadCSVParsesSnapshot(t *testing.T) {
	path := writeSnapshot(t,
		"customer_id,start_date,stop_date,stop_type,market,channel,monthly_fee,tenure\n"+
			"C001,2025-01-15,2025-04-15,voluntary,Gotham,Dealer,49.99,90\n"+
			"C002,2025-02-01,,,Gotham,Web,39.99,120\n")

	loaded, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if loaded.InvalidRows != 0 {
		t.Errorf("invalid rows = %d, want 0", loaded.InvalidRows)
	}
	if len(loaded.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded.Records))
	}

	r := loaded.Records[0]
	if r.CustomerID != "C001" || r.TenureDays != 90 {
		t.Errorf("record parsed wrong: %+v", r)
	}
	if !r.StartDate.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start date = %v", r.StartDate)
	}
	if r.StopType != types.StopVoluntary || !r.Stopped() {
		t.Errorf("stop type = %q, want voluntary", r.StopType)
	}
	if r.MonthlyFee.String() != "49.99" {
		t.Errorf("monthly fee = %s, want 49.99", r.MonthlyFee)
	}

	if loaded.Records[1].Stopped() {
		t.Error("active record parsed as stopped")
	}
}

// TestReadCSVLooseHeaders proves header matching tolerates case, spaces,
// and separator variants
func TestReadCSVLooseHeaders(t *testing.T) {
	path := writeSnapshot(t,
		"Customer ID,Start-Date,Tenure_Days,Stop Type\n"+
			"C001,2025-01-15,45,involuntary\n")

	loaded, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(loaded.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(loaded.Records))
	}
	r := loaded.Records[0]
	if r.CustomerID != "C001" || r.TenureDays != 45 || r.StopType != types.StopInvoluntary {
		t.Errorf("record parsed wrong: %+v", r)
	}
}

// TestReadCSVDropsBadRows proves unparseable rows are counted and
// skipped, never fatal
func TestReadCSVDropsBadRows(t *testing.T) {
	path := writeSnapshot(t,
		"customer_id,start_date,tenure\n"+
			"C001,2025-01-15,90\n"+
			"C002,not-a-date,90\n"+
			"C003,2025-01-15,ninety\n")

	loaded, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(loaded.Records) != 1 {
		t.Errorf("expected 1 valid record, got %d", len(loaded.Records))
	}
	if loaded.InvalidRows != 2 {
		t.Errorf("invalid rows = %d, want 2", loaded.InvalidRows)
	}
}

// TestReadCSVMissingRequiredColumn proves a snapshot without the
// required columns is a data error
func TestReadCSVMissingRequiredColumn(t *testing.T) {
	path := writeSnapshot(t, "customer_id,start_date\nC001,2025-01-15\n")

	_, err := ReadCSV(path)
	if err == nil || !errors.IsType(err, errors.TypeData) {
		t.Errorf("expected data error for missing tenure column, got %v", err)
	}
}

// TestReadCSVMissingFile proves a bad path is a storage error
func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil || !errors.IsType(err, errors.TypeStorage) {
		t.Errorf("expected storage error, got %v", err)
	}
}

// TestFilterExclusions proves each eligibility rule excludes and counts
// independently
func TestFilterExclusions(t *testing.T) {
	cutoff := time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC)
	good := types.SubscriberRecord{CustomerID: "a", StartDate: cutoff.AddDate(1, 0, 0), TenureDays: 30}
	boundary := types.SubscriberRecord{CustomerID: "b", StartDate: cutoff, TenureDays: 0}
	preCutoff := types.SubscriberRecord{CustomerID: "c", StartDate: cutoff.AddDate(0, 0, -1), TenureDays: 30}
	negative := types.SubscriberRecord{CustomerID: "d", StartDate: cutoff.AddDate(1, 0, 0), TenureDays: -1}
	anonymous := types.SubscriberRecord{StartDate: cutoff.AddDate(1, 0, 0), TenureDays: 30}

	eligible, report := NewFilter(cutoff).Apply([]types.SubscriberRecord{
		good, boundary, preCutoff, negative, anonymous,
	})

	if len(eligible) != 2 {
		t.Errorf("eligible = %d, want 2 (cutoff date itself is eligible)", len(eligible))
	}
	if report.TotalRecords != 5 || report.Eligible != 2 || report.Excluded() != 3 {
		t.Errorf("report totals wrong: %+v", report)
	}
	if report.PreCutoffStart != 1 || report.NegativeTenure != 1 || report.MissingCustomerID != 1 {
		t.Errorf("report breakdown wrong: %+v", report)
	}
}

// TestFilterZeroTenure proves a same-day start-and-stop record stays
// eligible
func TestFilterZeroTenure(t *testing.T) {
	cutoff := time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC)
	r := types.SubscriberRecord{
		CustomerID: "a",
		StartDate:  cutoff.AddDate(1, 0, 0),
		StopType:   types.StopVoluntary,
		TenureDays: 0,
	}

	eligible, report := NewFilter(cutoff).Apply([]types.SubscriberRecord{r})
	if len(eligible) != 1 || report.Excluded() != 0 {
		t.Errorf("zero tenure excluded: eligible=%d report=%+v", len(eligible), report)
	}
}
