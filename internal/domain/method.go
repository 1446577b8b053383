package domain

import (
	"fmt"
	"math/rand"
	"strings"
)

// AuthorizeFunc is the authorization oracle a payment method consults during
// validation. The default implementation is a uniform-random boolean standing
// in for a real payment-gateway call; swapping it never changes callers.
type AuthorizeFunc func(invoiceNumber string) bool

// RandomAuthorize approves or declines with equal probability.
func RandomAuthorize(string) bool {
	return rand.Intn(2) == 1
}

// PaymentMethod is the capability every payment instrument exposes.
type PaymentMethod interface {
	// Validate runs the authorization check. It has no side effects beyond
	// the returned outcome.
	Validate() bool

	// Selector returns the canonical selector string this method resolves from.
	Selector() string

	// Fields returns the serialized form of the method.
	Fields() MethodFields
}

// MethodFields is the wire/API representation of a payment method: the
// invoice number plus the variant's own discriminator.
type MethodFields struct {
	InvoiceNumber string `json:"invoice_number"`
	Bank          string `json:"bank,omitempty"`
	CardProvider  string `json:"card_provider,omitempty"`
	WalletName    string `json:"wallet_name,omitempty"`
}

// Bank is the bank-transfer discriminator.
type Bank string

const (
	BankBCA Bank = "BCA"
	BankBNI Bank = "BNI"
	BankBRI Bank = "BRI"
)

// BankTransfer pays by transfer to a virtual account at one of the banks.
type BankTransfer struct {
	invoiceNumber string
	bank          Bank
	authorize     AuthorizeFunc
}

func (m *BankTransfer) Validate() bool   { return m.authorize(m.invoiceNumber) }
func (m *BankTransfer) Selector() string { return "BankTransfer" + string(m.bank) }
func (m *BankTransfer) Fields() MethodFields {
	return MethodFields{InvoiceNumber: m.invoiceNumber, Bank: string(m.bank)}
}

// CardProvider is the credit-card discriminator.
type CardProvider string

const (
	CardMastercard CardProvider = "MASTERCARD"
	CardVISA       CardProvider = "VISA"
)

// CreditCard pays by card through one of the providers.
type CreditCard struct {
	invoiceNumber string
	provider      CardProvider
	authorize     AuthorizeFunc
}

func (m *CreditCard) Validate() bool { return m.authorize(m.invoiceNumber) }
func (m *CreditCard) Selector() string {
	if m.provider == CardVISA {
		return "CreditCardVISA"
	}
	return "CreditCardMastercard"
}
func (m *CreditCard) Fields() MethodFields {
	return MethodFields{InvoiceNumber: m.invoiceNumber, CardProvider: string(m.provider)}
}

// WalletName is the e-wallet discriminator.
type WalletName string

const (
	WalletGoPay WalletName = "GOPAY"
	WalletOVO   WalletName = "OVO"
)

// EWallet pays through an e-wallet balance.
type EWallet struct {
	invoiceNumber string
	wallet        WalletName
	authorize     AuthorizeFunc
}

func (m *EWallet) Validate() bool { return m.authorize(m.invoiceNumber) }
func (m *EWallet) Selector() string {
	if m.wallet == WalletOVO {
		return "EWalletOVO"
	}
	return "EWalletGoPay"
}
func (m *EWallet) Fields() MethodFields {
	return MethodFields{InvoiceNumber: m.invoiceNumber, WalletName: string(m.wallet)}
}

// QRIS pays by scanning a QRIS code. It has no sub-variant.
type QRIS struct {
	invoiceNumber string
	authorize     AuthorizeFunc
}

func (m *QRIS) Validate() bool   { return m.authorize(m.invoiceNumber) }
func (m *QRIS) Selector() string { return "QRIS" }
func (m *QRIS) Fields() MethodFields {
	return MethodFields{InvoiceNumber: m.invoiceNumber}
}

// MethodResolver constructs payment methods from selector strings, binding
// them to a shared authorization oracle.
type MethodResolver struct {
	authorize AuthorizeFunc
}

// NewMethodResolver creates a resolver. A nil oracle falls back to the
// random one.
func NewMethodResolver(authorize AuthorizeFunc) *MethodResolver {
	if authorize == nil {
		authorize = RandomAuthorize
	}
	return &MethodResolver{authorize: authorize}
}

// Resolve matches the selector against the known categories first, then the
// sub-variant within the category. Anything else is a client error.
func (r *MethodResolver) Resolve(invoiceNumber, selector string) (PaymentMethod, error) {
	switch {
	case strings.Contains(selector, "BankTransfer"):
		switch {
		case strings.Contains(selector, "BCA"):
			return &BankTransfer{invoiceNumber: invoiceNumber, bank: BankBCA, authorize: r.authorize}, nil
		case strings.Contains(selector, "BNI"):
			return &BankTransfer{invoiceNumber: invoiceNumber, bank: BankBNI, authorize: r.authorize}, nil
		case strings.Contains(selector, "BRI"):
			return &BankTransfer{invoiceNumber: invoiceNumber, bank: BankBRI, authorize: r.authorize}, nil
		}
	case strings.Contains(selector, "CreditCard"):
		switch {
		case strings.Contains(selector, "Mastercard"):
			return &CreditCard{invoiceNumber: invoiceNumber, provider: CardMastercard, authorize: r.authorize}, nil
		case strings.Contains(selector, "VISA"):
			return &CreditCard{invoiceNumber: invoiceNumber, provider: CardVISA, authorize: r.authorize}, nil
		}
	case strings.Contains(selector, "EWallet"):
		switch {
		case strings.Contains(selector, "GoPay"):
			return &EWallet{invoiceNumber: invoiceNumber, wallet: WalletGoPay, authorize: r.authorize}, nil
		case strings.Contains(selector, "OVO"):
			return &EWallet{invoiceNumber: invoiceNumber, wallet: WalletOVO, authorize: r.authorize}, nil
		}
	case selector == "QRIS":
		return &QRIS{invoiceNumber: invoiceNumber, authorize: r.authorize}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, selector)
}
