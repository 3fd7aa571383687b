package enums

import "slices"

// FieldKind is a required-field type a payment method may ask the customer for.
type FieldKind string

const (
	UserCardNumber             FieldKind = "user_card_number"
	UserCardExpiryMonth        FieldKind = "user_card_expiry_month"
	UserCardExpiryYear         FieldKind = "user_card_expiry_year"
	UserCardCvc                FieldKind = "user_card_cvc"
	UserFullName               FieldKind = "user_full_name"
	UserEmailAddress           FieldKind = "user_email_address"
	UserPhoneNumber            FieldKind = "user_phone_number"
	UserPhoneNumberCountryCode FieldKind = "user_phone_number_country_code"
	UserCountry                FieldKind = "user_country"
	UserCurrency               FieldKind = "user_currency"
	UserCryptoCurrencyNetwork  FieldKind = "user_crypto_currency_network"
	UserBillingName            FieldKind = "user_billing_name"
	UserAddressLine1           FieldKind = "user_address_line1"
	UserAddressLine2           FieldKind = "user_address_line2"
	UserAddressCity            FieldKind = "user_address_city"
	UserAddressPincode         FieldKind = "user_address_pincode"
	UserAddressState           FieldKind = "user_address_state"
	UserAddressCountry         FieldKind = "user_address_country"
	UserShippingName           FieldKind = "user_shipping_name"
	UserShippingAddressLine1   FieldKind = "user_shipping_address_line1"
	UserShippingAddressLine2   FieldKind = "user_shipping_address_line2"
	UserShippingAddressCity    FieldKind = "user_shipping_address_city"
	UserShippingAddressPincode FieldKind = "user_shipping_address_pincode"
	UserShippingAddressState   FieldKind = "user_shipping_address_state"
	UserShippingAddressCountry FieldKind = "user_shipping_address_country"
	UserBlikCode               FieldKind = "user_blik_code"
	UserBank                   FieldKind = "user_bank"
	Text                       FieldKind = "text"
	DropDown                   FieldKind = "drop_down"
	UserDateOfBirth            FieldKind = "user_date_of_birth"
	UserVpaID                  FieldKind = "user_vpa_id"
	LanguagePreference         FieldKind = "language_preference"
	UserPixKey                 FieldKind = "user_pix_key"
	UserCpf                    FieldKind = "user_cpf"
	UserCnpj                   FieldKind = "user_cnpj"
)

// FieldType is a FieldKind plus the options some kinds carry.
type FieldType struct {
	Kind    FieldKind `json:"kind"`
	Options []string  `json:"options,omitempty"`
}

// Equal compares kinds. Options only matter for UserCountry, UserCurrency
// and DropDown; address countries and language preference ignore them.
func (f FieldType) Equal(other FieldType) bool {
	if f.Kind != other.Kind {
		return false
	}
	switch f.Kind {
	case UserCountry, UserCurrency, DropDown:
		return slices.Equal(f.Options, other.Options)
	}
	return true
}

func BillingVariants() []FieldType {
	return []FieldType{
		{Kind: UserBillingName},
		{Kind: UserAddressLine1},
		{Kind: UserAddressLine2},
		{Kind: UserAddressCity},
		{Kind: UserAddressPincode},
		{Kind: UserAddressState},
		{Kind: UserAddressCountry, Options: []string{}},
	}
}

func ShippingVariants() []FieldType {
	return []FieldType{
		{Kind: UserShippingName},
		{Kind: UserShippingAddressLine1},
		{Kind: UserShippingAddressLine2},
		{Kind: UserShippingAddressCity},
		{Kind: UserShippingAddressPincode},
		{Kind: UserShippingAddressState},
		{Kind: UserShippingAddressCountry, Options: []string{}},
	}
}
