package dailyclose

import (
	"sort"
	"time"

	"github.com/warungpos/warungpos/internal/shared"
)

// BusinessDay is the accounting period between one daily close and the next.
// At most one row has a null ClosedAt; that row is the running day.
type BusinessDay struct {
	ID       int64            `json:"id"`
	OpenedAt time.Time        `json:"openedAt"`
	ClosedAt *time.Time       `json:"closedAt,omitempty"`
	ClosedBy *int64           `json:"closedBy,omitempty"`
	Stats    *CloseStatistics `json:"stats,omitempty"`
}

// IsClosed reports whether the day has been finalised.
func (d BusinessDay) IsClosed() bool { return d.ClosedAt != nil }

// ProductSales ranks one product inside the close statistics.
type ProductSales struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
}

// CloseStatistics is the immutable snapshot persisted when a day closes.
// Amounts are integer rupiah.
type CloseStatistics struct {
	TotalSales  int64          `json:"totalSales"`
	TotalOrders int            `json:"totalOrders"`
	TopProducts []ProductSales `json:"topProducts"`
}

// TopProductsLimit bounds the ranked product list in the snapshot.
const TopProductsLimit = 5

// RankTopProducts orders sales by quantity descending with ties broken on
// ascending product id, then truncates to limit. The input is left intact.
func RankTopProducts(sales []ProductSales, limit int) []ProductSales {
	ranked := make([]ProductSales, len(sales))
	copy(ranked, sales)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Severity classifies whether a failed check blocks the close.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityAdvisory Severity = "advisory"
)

// CheckName enumerates the pre-close checks. The set is fixed so consumers
// can handle every check exhaustively.
type CheckName string

const (
	CheckPendingOrders   CheckName = "pendingOrders"
	CheckOpenShifts      CheckName = "openShifts"
	CheckPendingPayments CheckName = "pendingPayments"
	CheckLowStock        CheckName = "lowStock"
)

// CheckDefinition carries the severity of a check as data, so introducing
// another advisory check never touches the CanClose derivation.
type CheckDefinition struct {
	Name     CheckName
	Severity Severity
}

var checkDefinitions = []CheckDefinition{
	{Name: CheckPendingOrders, Severity: SeverityBlocking},
	{Name: CheckOpenShifts, Severity: SeverityBlocking},
	{Name: CheckPendingPayments, Severity: SeverityBlocking},
	{Name: CheckLowStock, Severity: SeverityAdvisory},
}

// CheckDefinitions returns the fixed check table.
func CheckDefinitions() []CheckDefinition {
	defs := make([]CheckDefinition, len(checkDefinitions))
	copy(defs, checkDefinitions)
	return defs
}

// LowStockProduct details one product at or below its minimum threshold.
type LowStockProduct struct {
	ProductID    int64  `json:"productId"`
	Name         string `json:"name"`
	CurrentStock int64  `json:"currentStock"`
	MinStock     int64  `json:"minStock"`
}

// CheckResult is the outcome of a single pre-close check.
type CheckResult struct {
	Valid    bool              `json:"valid"`
	Count    int               `json:"count"`
	Message  string            `json:"message"`
	Severity Severity          `json:"severity"`
	Products []LowStockProduct `json:"products,omitempty"`
}

// ValidationVerdict is the full result of a pre-close validation. It is
// built fresh per request and never persisted.
type ValidationVerdict struct {
	CanClose        bool        `json:"canClose"`
	PendingOrders   CheckResult `json:"pendingOrders"`
	OpenShifts      CheckResult `json:"openShifts"`
	PendingPayments CheckResult `json:"pendingPayments"`
	LowStock        CheckResult `json:"lowStock"`
}

func (v *ValidationVerdict) result(name CheckName) *CheckResult {
	switch name {
	case CheckPendingOrders:
		return &v.PendingOrders
	case CheckOpenShifts:
		return &v.OpenShifts
	case CheckPendingPayments:
		return &v.PendingPayments
	case CheckLowStock:
		return &v.LowStock
	default:
		return nil
	}
}

// Finalise stamps each check with its defined severity and derives CanClose
// from the blocking checks only.
func (v *ValidationVerdict) Finalise() {
	v.CanClose = true
	for _, def := range checkDefinitions {
		res := v.result(def.Name)
		if res == nil {
			continue
		}
		res.Severity = def.Severity
		if def.Severity == SeverityBlocking && !res.Valid {
			v.CanClose = false
		}
	}
}

// CloseStatus answers the read-only status query.
type CloseStatus struct {
	IsClosed      bool       `json:"isClosed"`
	LastCloseDate *time.Time `json:"lastCloseDate,omitempty"`
	CanClose      bool       `json:"canClose"`
	Reason        string     `json:"reason,omitempty"`
}

// CloseResult reports the outcome of a close attempt.
type CloseResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Stats   *CloseStatistics `json:"stats,omitempty"`
}

// ErrNoOpenDay is returned when closing or validating while no day is open.
var ErrNoOpenDay = shared.NewStateError("hari usaha sudah ditutup")

// ErrNoClosedDay is returned when reopening while a day is already running.
var ErrNoClosedDay = shared.NewStateError("tidak ada hari usaha tertutup untuk dibuka kembali")

// ErrDayClosed rejects writes against a day that has been finalised.
var ErrDayClosed = shared.NewStateError("hari usaha sudah ditutup, transaksi tidak dapat diubah")
