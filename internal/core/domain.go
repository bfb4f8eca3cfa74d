package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CurrencyYER Currency = "YER"
	CurrencySAR Currency = "SAR"
)

const (
	TypePurchase ExpenseType = "PURCHASE"
	TypeVoucher  ExpenseType = "VOUCHER"
)

const (
	VoucherExpense VoucherSubCategory = "EXPENSE"
	VoucherLoan    VoucherSubCategory = "LOAN"
)

const (
	CategoryFuel        Category = "FUEL"
	CategoryCatering    Category = "CATERING"
	CategoryMaintenance Category = "MAINTENANCE"
	CategoryOffice      Category = "OFFICE"
	CategoryOperational Category = "OPERATIONAL"
)

const (
	StatusPending   OrderStatus = "PENDING"
	StatusApproved  OrderStatus = "APPROVED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusRejected  OrderStatus = "REJECTED"
	StatusWaiting   OrderStatus = "WAITING"
)

type (
	Currency           string
	ExpenseType        string
	VoucherSubCategory string
	Category           string
	OrderStatus        string

	// Date is an ISO calendar date (YYYY-MM-DD). Lexical comparison of two
	// valid Date values orders them exactly like calendar comparison.
	Date string

	// InvoiceItem is one line of a purchase invoice.
	InvoiceItem struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Quantity  float64 `json:"quantity"`
		UnitPrice Money   `json:"unitPrice"`
	}

	// FundTransaction is money received into the fund. Funds are immutable
	// after creation; only a full data restore replaces them.
	FundTransaction struct {
		ID       string   `json:"id"`
		Currency Currency `json:"currency"`
		Amount   Money    `json:"amount"`
		Source   string   `json:"source"`
		Date     Date     `json:"date"`
		Notes    string   `json:"notes,omitempty"`
	}

	// Expense is money paid out, either an itemized purchase invoice or a
	// cash disbursement voucher.
	Expense struct {
		ID                 string             `json:"id"`
		Type               ExpenseType        `json:"type"`
		Currency           Currency           `json:"currency"`
		Amount             Money              `json:"amount"`
		Category           Category           `json:"category"`
		Beneficiary        string             `json:"beneficiary"`
		Date               Date               `json:"date"`
		Notes              string             `json:"notes,omitempty"`
		DocumentNumber     string             `json:"documentNumber,omitempty"`
		Items              []InvoiceItem      `json:"items,omitempty"`
		ReceiptImage       string             `json:"receiptImage,omitempty"`
		VoucherSubCategory VoucherSubCategory `json:"voucherSubCategory,omitempty"`
	}

	// Order is a legacy procurement-request record. It is persisted and
	// enumerable but does not participate in ledger derivations.
	Order struct {
		ID          string      `json:"id"`
		OrderNumber string      `json:"orderNumber"`
		Title       string      `json:"title"`
		Category    string      `json:"category"`
		Amount      Money       `json:"amount"`
		Date        Date        `json:"date"`
		Status      OrderStatus `json:"status"`
		Requester   string      `json:"requester,omitempty"`
	}

	// Settings holds organization identity and print/report defaults. It is
	// a singleton replaced wholesale on save.
	Settings struct {
		MinistryName        string `json:"ministryName"`
		BrigadeName         string `json:"brigadeName"`
		UnitName            string `json:"unitName"`
		Logo                string `json:"logo,omitempty"`
		FooterRightTitle    string `json:"footerRightTitle"`
		FooterCenterTitle   string `json:"footerCenterTitle"`
		FooterLeftTitle     string `json:"footerLeftTitle"`
		CurrencySymbolYER   string `json:"currencySymbolYER,omitempty"`
		CurrencySymbolSAR   string `json:"currencySymbolSAR,omitempty"`
		DefaultReportPeriod string `json:"defaultReportPeriod,omitempty"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid expense type")
	ErrEmptySource      = errors.New("empty fund source")
	ErrEmptyBeneficiary = errors.New("empty beneficiary")
	ErrAmountMismatch   = errors.New("purchase amount does not match item totals")
	ErrNegativeAmount   = errors.New("negative amount")
	ErrInvalidSubCat    = errors.New("invalid voucher sub-category")
	ErrInvalidStatus    = errors.New("invalid order status")
)

var currencyLabels = map[Currency]string{
	CurrencyYER: "ريال يمني",
	CurrencySAR: "ريال سعودي",
}

var currencySymbols = map[Currency]string{
	CurrencyYER: "ر.ي",
	CurrencySAR: "ر.س",
}

var categoryLabels = map[Category]string{
	CategoryFuel:        "وقود وزيوت",
	CategoryCatering:    "إعاشة وتموين",
	CategoryMaintenance: "صيانة وقطع غيار",
	CategoryOffice:      "أدوات مكتبية",
	CategoryOperational: "نفقات تشغيلية",
}

// Categories lists the closed set of spending categories in display order.
var Categories = []Category{
	CategoryFuel,
	CategoryCatering,
	CategoryMaintenance,
	CategoryOffice,
	CategoryOperational,
}

// KnownBeneficiaries lists the predefined receiving units. Expenses whose
// beneficiary is not in this set fall into the OTHER bucket in reports.
var KnownBeneficiaries = []string{
	"قيادة اللواء",
	"الكتيبة الأولى",
	"كتيبة الإسناد",
	"قسم الصيانة",
	"النقطة الطبية",
}

// OtherBeneficiary labels the catch-all report bucket.
const OtherBeneficiary = "مستفيد آخر / شخص"

// Known reports whether c is one of the supported currency codes. Unknown
// codes are not an error anywhere in the engine; they are excluded from all
// sums.
func (c Currency) Known() bool {
	_, ok := currencyLabels[c]
	return ok
}

func (c Currency) Label() string  { return currencyLabels[c] }
func (c Currency) Symbol() string { return currencySymbols[c] }

func (c Category) Known() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the Arabic display label, falling back to the raw code for
// categories outside the closed set.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (t ExpenseType) Valid() bool {
	return t == TypePurchase || t == TypeVoucher
}

func (v VoucherSubCategory) Valid() bool {
	return v == VoucherExpense || v == VoucherLoan
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted, StatusRejected, StatusWaiting:
		return true
	}
	return false
}

// Validate checks that d is a well-formed ISO calendar date.
func (d Date) Validate() error {
	if _, err := time.Parse("2006-01-02", string(d)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Before orders dates lexically, which for valid ISO dates is identical to
// calendar order.
func (d Date) Before(o Date) bool { return string(d) < string(o) }

// After orders dates lexically.
func (d Date) After(o Date) bool { return string(d) > string(o) }

func (d Date) IsZero() bool { return d == "" }

// Today returns the current calendar date in UTC.
func Today() Date {
	return Date(time.Now().UTC().Format("2006-01-02"))
}

// Total returns the line total, rounding half up on fractional quantities.
func (it InvoiceItem) Total() Money {
	return Money{Cents: roundCents(it.Quantity * float64(it.UnitPrice.Cents))}
}

func (f FundTransaction) Validate() error {
	if err := f.Date.Validate(); err != nil {
		return err
	}
	if f.Amount.Cents < 0 {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(f.Source) == "" {
		return ErrEmptySource
	}
	return nil
}

// ItemsTotal sums quantity times unit price over all invoice items.
func (e Expense) ItemsTotal() Money {
	var total int64
	for _, it := range e.Items {
		total += it.Total().Cents
	}
	return Money{Cents: total}
}

// Validate enforces the record-shape invariants. Zero amounts pass: the
// entry flow blocks empty amounts, not zero ones.
func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	if e.Amount.Cents < 0 {
		return ErrNegativeAmount
	}
	switch e.Type {
	case TypeVoucher:
		if strings.TrimSpace(e.Beneficiary) == "" {
			return ErrEmptyBeneficiary
		}
		if e.VoucherSubCategory != "" && !e.VoucherSubCategory.Valid() {
			return ErrInvalidSubCat
		}
	case TypePurchase:
		if len(e.Items) > 0 && e.Amount != e.ItemsTotal() {
			return ErrAmountMismatch
		}
	}
	return nil
}

func (o Order) Validate() error {
	if err := o.Date.Validate(); err != nil {
		return err
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// DefaultSettings returns the organization defaults used when no settings
// have been persisted yet or the persisted document is unreadable.
func DefaultSettings() Settings {
	return Settings{
		MinistryName:      "الجمهورية اليمنية - وزارة الدفاع",
		BrigadeName:       "قيادة المنطقة / اللواء",
		UnitName:          "الشؤون المالية / الصندوق",
		FooterRightTitle:  "المستلم / المستفيد",
		FooterCenterTitle: "أمين الصندوق",
		FooterLeftTitle:   "يعتمد / القائد",
	}
}
