package domain

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/enums"
)

// PlatformVersion selects the merchant account schema.
type PlatformVersion string

const (
	PlatformV1 PlatformVersion = "v1"
	PlatformV2 PlatformVersion = "v2"
)

func ParsePlatformVersion(s string) (PlatformVersion, error) {
	switch v := PlatformVersion(s); v {
	case PlatformV1, PlatformV2:
		return v, nil
	}
	return "", fmt.Errorf("unknown platform version %q", s)
}

// DefaultMerchantName is used by v2 requests without a company name.
const DefaultMerchantName = "merchant"

type MerchantAccount struct {
	ID               string
	OrgID            string
	Name             *string
	RoutingAlgorithm *enums.RoutingAlgorithm
	ReturnURL        *string
	WebhookURL       *string
	PublishableKey   string
	CreatedAt        time.Time
}

// MerchantAccountCreate is the request handed to the merchant service.
// v1 requests name the merchant id explicitly and leave the routing and
// webhook settings unset. v2 requests carry only the organization and a
// name; the merchant service picks the id.
type MerchantAccountCreate struct {
	Version          PlatformVersion
	MerchantID       string
	OrganizationID   string
	MerchantName     *string
	RoutingAlgorithm *enums.RoutingAlgorithm
	ReturnURL        *string
	WebhookURL       *string
	PublishableKey   *string
}
