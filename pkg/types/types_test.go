package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleLine_Validate(t *testing.T) {
	tests := []struct {
		name    string
		line    SaleLine
		wantErr bool
	}{
		{"Valid", SaleLine{Code: "9204", Quantity: 1}, false},
		{"EmptyCode", SaleLine{Code: "", Quantity: 1}, true},
		{"BlankCode", SaleLine{Code: "   ", Quantity: 1}, true},
		{"ZeroQuantity", SaleLine{Code: "9204", Quantity: 0}, true},
		{"NegativeQuantity", SaleLine{Code: "9204", Quantity: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSpecification)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaleLine_BaseCode(t *testing.T) {
	assert.Equal(t, "P12IPAZA", SaleLine{Code: "P12IPAZA+P+S"}.BaseCode())
	assert.Equal(t, "9204", SaleLine{Code: "9204"}.BaseCode())
}

func TestSaleLine_CloneIsDeep(t *testing.T) {
	orig := SaleLine{Code: "P12IPAZA+P", Quantity: 1, Options: map[string]map[string]string{"P": {"1/1": "1"}}}
	cp := orig.Clone()
	cp.Options["P"]["1/1"] = "1.5"
	cp.Options["X"] = map[string]string{"1/1": "0"}

	assert.Equal(t, "1", orig.Options["P"]["1/1"])
	assert.NotContains(t, orig.Options, "X")
	assert.Nil(t, SaleLine{Code: "9204", Quantity: 1}.Clone().Options)
}

func TestParseOrderType(t *testing.T) {
	for in, want := range map[string]OrderType{
		"Delivery":  OrderDelivery,
		"delivery":  OrderDelivery,
		" CARRYOUT": OrderCarryout,
	} {
		got, err := ParseOrderType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseOrderType("pickup")
	assert.ErrorIs(t, err, ErrInvalidSpecification)
}

func TestCustomer_FirstLast(t *testing.T) {
	first, last := Customer{Name: "John Q Doe"}.FirstLast()
	assert.Equal(t, "John", first)
	assert.Equal(t, "Q Doe", last)

	first, last = Customer{Name: "Cher"}.FirstLast()
	assert.Equal(t, "Cher", first)
	assert.Empty(t, last)
}

func TestPayment_Validate(t *testing.T) {
	valid := Payment{CardNumber: "4111-1111-1111-1111", Expiration: "01/30", SecurityCode: "123", PostalCode: "10001"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(p *Payment)
		field  string
	}{
		{"ShortNumber", func(p *Payment) { p.CardNumber = "4111" }, "card_number"},
		{"LettersInNumber", func(p *Payment) { p.CardNumber = "4111 1111 1111 abcd" }, "card_number"},
		{"MissingExpiry", func(p *Payment) { p.Expiration = "" }, "card_expiry"},
		{"ShortCVV", func(p *Payment) { p.SecurityCode = "12" }, "card_cvv"},
		{"LongCVV", func(p *Payment) { p.SecurityCode = "12345" }, "card_cvv"},
		{"MissingZip", func(p *Payment) { p.PostalCode = " " }, "card_zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			assert.ErrorIs(t, err, ErrInvalidSpecification)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestPayment_Masked(t *testing.T) {
	p := Payment{CardNumber: "5555 4444 3333 1111"}
	assert.Equal(t, "************1111", p.Masked())
	assert.Equal(t, "5555444433331111", p.DigitsOnly())
}

func TestDetectCardType(t *testing.T) {
	assert.Equal(t, CardAmex, DetectCardType("378282246310005"))
	assert.Equal(t, CardVisa, DetectCardType("4111111111111111"))
	assert.Equal(t, CardMastercard, DetectCardType("5555555555554444"))
	assert.Equal(t, CardDiscover, DetectCardType("6011111111111117"))
}

func TestRemoteRejectionError(t *testing.T) {
	items := []StatusItem{{Code: "verification_required"}, {Code: ""}, {Code: "CardDeclined", Message: "declined"}}
	err := error(&RemoteRejectionError{Phase: "submit", Reason: RejectionReason(items), StatusItems: items})

	assert.True(t, errors.Is(err, ErrRemoteRejection))
	assert.False(t, errors.Is(err, ErrTransportFailure))
	assert.Contains(t, err.Error(), "verification_required,CardDeclined")

	var rej *RemoteRejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "submit", rej.Phase)
	assert.Len(t, rej.StatusItems, 3)
}
