package tests

import (
	"errors"
	"testing"

	"cinepay/internal/domain"
)

func TestMethodResolver_KnownSelectors(t *testing.T) {
	t.Parallel()

	resolver := domain.NewMethodResolver(fixedAuthorize(true))

	tests := []struct {
		selector   string
		wantFields domain.MethodFields
	}{
		{"BankTransferBCA", domain.MethodFields{InvoiceNumber: "BK-1", Bank: "BCA"}},
		{"BankTransferBNI", domain.MethodFields{InvoiceNumber: "BK-1", Bank: "BNI"}},
		{"BankTransferBRI", domain.MethodFields{InvoiceNumber: "BK-1", Bank: "BRI"}},
		{"CreditCardMastercard", domain.MethodFields{InvoiceNumber: "BK-1", CardProvider: "MASTERCARD"}},
		{"CreditCardVISA", domain.MethodFields{InvoiceNumber: "BK-1", CardProvider: "VISA"}},
		{"EWalletGoPay", domain.MethodFields{InvoiceNumber: "BK-1", WalletName: "GOPAY"}},
		{"EWalletOVO", domain.MethodFields{InvoiceNumber: "BK-1", WalletName: "OVO"}},
		{"QRIS", domain.MethodFields{InvoiceNumber: "BK-1"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.selector, func(t *testing.T) {
			t.Parallel()

			method, err := resolver.Resolve("BK-1", tt.selector)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.selector, err)
			}
			if got := method.Fields(); got != tt.wantFields {
				t.Errorf("Fields() = %+v, want %+v", got, tt.wantFields)
			}
			if got := method.Selector(); got != tt.selector {
				t.Errorf("Selector() = %q, want %q", got, tt.selector)
			}
		})
	}
}

func TestMethodResolver_UnknownSelectors(t *testing.T) {
	t.Parallel()

	resolver := domain.NewMethodResolver(fixedAuthorize(true))

	selectors := []string{
		"",
		"Cash",
		"BankTransferMandiri",
		"CreditCardAmex",
		"EWalletDana",
		"qris",
	}

	for _, selector := range selectors {
		_, err := resolver.Resolve("BK-1", selector)
		if !errors.Is(err, domain.ErrUnknownPaymentMethod) {
			t.Errorf("Resolve(%q) error = %v, want ErrUnknownPaymentMethod", selector, err)
		}
	}
}

func TestMethodValidate_ConsultsOracle(t *testing.T) {
	t.Parallel()

	selectors := []string{"BankTransferBCA", "CreditCardVISA", "EWalletOVO", "QRIS"}

	for _, outcome := range []bool{true, false} {
		resolver := domain.NewMethodResolver(fixedAuthorize(outcome))
		for _, selector := range selectors {
			method, err := resolver.Resolve("BK-1", selector)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", selector, err)
			}
			if got := method.Validate(); got != outcome {
				t.Errorf("%s Validate() = %t, want oracle outcome %t", selector, got, outcome)
			}
		}
	}
}
