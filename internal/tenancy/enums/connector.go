package enums

// Connector is an integration that fulfils payments.
type Connector string

const (
	Aci             Connector = "aci"
	Adyen           Connector = "adyen"
	Adyenplatform   Connector = "adyenplatform"
	Airwallex       Connector = "airwallex"
	Authorizedotnet Connector = "authorizedotnet"
	Bambora         Connector = "bambora"
	Bamboraapac     Connector = "bamboraapac"
	Bankofamerica   Connector = "bankofamerica"
	Billwerk        Connector = "billwerk"
	Bitpay          Connector = "bitpay"
	Bluesnap        Connector = "bluesnap"
	Boku            Connector = "boku"
	Braintree       Connector = "braintree"
	Cashtocode      Connector = "cashtocode"
	Checkout        Connector = "checkout"
	Coinbase        Connector = "coinbase"
	Cryptopay       Connector = "cryptopay"
	Cybersource     Connector = "cybersource"
	Datatrans       Connector = "datatrans"
	Dlocal          Connector = "dlocal"
	Ebanx           Connector = "ebanx"
	Fiserv          Connector = "fiserv"
	Fiservemea      Connector = "fiservemea"
	Forte           Connector = "forte"
	Globalpay       Connector = "globalpay"
	Globepay        Connector = "globepay"
	Gocardless      Connector = "gocardless"
	Gpayments       Connector = "gpayments"
	Helcim          Connector = "helcim"
	Iatapay         Connector = "iatapay"
	Itaubank        Connector = "itaubank"
	Klarna          Connector = "klarna"
	Mifinity        Connector = "mifinity"
	Mollie          Connector = "mollie"
	Multisafepay    Connector = "multisafepay"
	Netcetera       Connector = "netcetera"
	Nexinets        Connector = "nexinets"
	Nmi             Connector = "nmi"
	Noon            Connector = "noon"
	Nuvei           Connector = "nuvei"
	Opennode        Connector = "opennode"
	Paybox          Connector = "paybox"
	Payme           Connector = "payme"
	Payone          Connector = "payone"
	Paypal          Connector = "paypal"
	Payu            Connector = "payu"
	Placetopay      Connector = "placetopay"
	Plaid           Connector = "plaid"
	Powertranz      Connector = "powertranz"
	Prophetpay      Connector = "prophetpay"
	Rapyd           Connector = "rapyd"
	Razorpay        Connector = "razorpay"
	Riskified       Connector = "riskified"
	Shift4          Connector = "shift4"
	Signifyd        Connector = "signifyd"
	Square          Connector = "square"
	Stax            Connector = "stax"
	Stripe          Connector = "stripe"
	Threedsecureio  Connector = "threedsecureio"
	Trustpay        Connector = "trustpay"
	Tsys            Connector = "tsys"
	Volt            Connector = "volt"
	Wellsfargo      Connector = "wellsfargo"
	Wise            Connector = "wise"
	Worldline       Connector = "worldline"
	Worldpay        Connector = "worldpay"
	Zen             Connector = "zen"
	Zsl             Connector = "zsl"
)

var connectors = []Connector{
	Aci, Adyen, Adyenplatform, Airwallex, Authorizedotnet, Bambora, Bamboraapac,
	Bankofamerica, Billwerk, Bitpay, Bluesnap, Boku, Braintree, Cashtocode, Checkout,
	Coinbase, Cryptopay, Cybersource, Datatrans, Dlocal, Ebanx, Fiserv, Fiservemea,
	Forte, Globalpay, Globepay, Gocardless, Gpayments, Helcim, Iatapay, Itaubank,
	Klarna, Mifinity, Mollie, Multisafepay, Netcetera, Nexinets, Nmi, Noon, Nuvei,
	Opennode, Paybox, Payme, Payone, Paypal, Payu, Placetopay, Plaid, Powertranz,
	Prophetpay, Rapyd, Razorpay, Riskified, Shift4, Signifyd, Square, Stax, Stripe,
	Threedsecureio, Trustpay, Tsys, Volt, Wellsfargo, Wise, Worldline, Worldpay, Zen, Zsl,
}

// Connectors returns the full catalogue.
func Connectors() []Connector {
	return append([]Connector(nil), connectors...)
}

func ParseConnector(s string) (Connector, error) {
	return parse("connector", s, connectors)
}

func (c *Connector) UnmarshalText(b []byte) error {
	v, err := ParseConnector(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// SupportsAccessToken reports whether the connector needs an access token
// before payments of kind paymentMethod. Trustpay only does for bank redirects.
func (c Connector) SupportsAccessToken(paymentMethod string) bool {
	switch c {
	case Airwallex, Globalpay, Paypal, Payu, Iatapay, Volt, Itaubank:
		return true
	case Trustpay:
		return paymentMethod == "bank_redirect"
	}
	return false
}

func (c Connector) SupportsFileStorage() bool {
	return c == Stripe || c == Checkout
}

func (c Connector) RequiresDefendDispute() bool {
	return c == Checkout
}

func (c Connector) IsSeparateAuthenticationSupported() bool {
	switch c {
	case Checkout, Nmi, Cybersource:
		return true
	}
	return false
}

func (c Connector) IsPreProcessingRequiredBeforeAuthorize() bool {
	return c == Airwallex
}

// PayoutConnector is the subset of connectors that can send payouts.
type PayoutConnector string

var payoutConnectors = []PayoutConnector{
	PayoutConnector(Adyen), PayoutConnector(Adyenplatform), PayoutConnector(Cybersource),
	PayoutConnector(Ebanx), PayoutConnector(Payone), PayoutConnector(Paypal),
	PayoutConnector(Stripe), PayoutConnector(Wise),
}

func ParsePayoutConnector(s string) (PayoutConnector, error) {
	return parse("payout connector", s, payoutConnectors)
}

// PayoutConnectorFrom narrows c, failing for connectors without payouts.
func PayoutConnectorFrom(c Connector) (PayoutConnector, error) {
	return ParsePayoutConnector(string(c))
}

func (p PayoutConnector) Connector() Connector { return Connector(p) }
