// Package enums holds platform enumerations that the tenancy core passes
// through to merchant accounts without interpreting them.
package enums

import (
	"fmt"
	"slices"
)

// ErrUnknownVariant is returned by every Parse function.
type ErrUnknownVariant struct {
	Kind  string
	Value string
}

func (e *ErrUnknownVariant) Error() string {
	return fmt.Sprintf("enums: unknown %s %q", e.Kind, e.Value)
}

func parse[T ~string](kind, s string, all []T) (T, error) {
	if slices.Contains(all, T(s)) {
		return T(s), nil
	}
	var zero T
	return zero, &ErrUnknownVariant{Kind: kind, Value: s}
}

type RoutingAlgorithm string

const (
	RoutingRoundRobin    RoutingAlgorithm = "round_robin"
	RoutingMaxConversion RoutingAlgorithm = "max_conversion"
	RoutingMinCost       RoutingAlgorithm = "min_cost"
	RoutingCustom        RoutingAlgorithm = "custom"
)

var routingAlgorithms = []RoutingAlgorithm{RoutingRoundRobin, RoutingMaxConversion, RoutingMinCost, RoutingCustom}

func ParseRoutingAlgorithm(s string) (RoutingAlgorithm, error) {
	return parse("routing algorithm", s, routingAlgorithms)
}

func (r *RoutingAlgorithm) UnmarshalText(b []byte) error {
	v, err := ParseRoutingAlgorithm(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

type FrmConnector string

const (
	FrmSignifyd  FrmConnector = "signifyd"
	FrmRiskified FrmConnector = "riskified"
)

func ParseFrmConnector(s string) (FrmConnector, error) {
	return parse("frm connector", s, []FrmConnector{FrmSignifyd, FrmRiskified})
}

type FrmAction string

const (
	FrmCancelTxn    FrmAction = "cancel_txn"
	FrmAutoRefund   FrmAction = "auto_refund"
	FrmManualReview FrmAction = "manual_review"
)

func ParseFrmAction(s string) (FrmAction, error) {
	return parse("frm action", s, []FrmAction{FrmCancelTxn, FrmAutoRefund, FrmManualReview})
}

type FrmPreferredFlowType string

const (
	FrmFlowPre  FrmPreferredFlowType = "pre"
	FrmFlowPost FrmPreferredFlowType = "post"
)

func ParseFrmPreferredFlowType(s string) (FrmPreferredFlowType, error) {
	return parse("frm flow type", s, []FrmPreferredFlowType{FrmFlowPre, FrmFlowPost})
}

type RetryAction string

const (
	RetryManual  RetryAction = "manual_retry"
	RetryRequeue RetryAction = "requeue"
)

func ParseRetryAction(s string) (RetryAction, error) {
	return parse("retry action", s, []RetryAction{RetryManual, RetryRequeue})
}

type PmAuthConnector string

const PmAuthPlaid PmAuthConnector = "plaid"

func ParsePmAuthConnector(s string) (PmAuthConnector, error) {
	return parse("payment method auth connector", s, []PmAuthConnector{PmAuthPlaid})
}

type StripeChargeType string

const (
	StripeChargeDirect      StripeChargeType = "direct"
	StripeChargeDestination StripeChargeType = "destination"
)

// DefaultStripeChargeType is used when a merchant does not pick one.
const DefaultStripeChargeType = StripeChargeDirect

func ParseStripeChargeType(s string) (StripeChargeType, error) {
	return parse("stripe charge type", s, []StripeChargeType{StripeChargeDirect, StripeChargeDestination})
}
