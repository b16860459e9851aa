// Package annuity computes the monthly payment of a financed heating system:
// a level annuity on the principal with service fee, maintenance, energy
// management, insurance and tax layered on top.
package annuity

import (
	"errors"
	"fmt"
	"math"

	"github.com/osamarehman/hex-docs/pkg/constants"
	"github.com/osamarehman/hex-docs/pkg/mathutil"
)

// ErrInvalidArgument is returned for inputs that would make the payment
// undefined (non-positive term, negative cost, NaN rates, ...).
var ErrInvalidArgument = errors.New("invalid argument")

// Input holds the parameters of one calculation. Rate fields are percentages
// on the 0-100 scale; absolute fields are CHF per month.
type Input struct {
	TotalCost                 float64 `json:"totalCost"`
	DownPaymentRatio          float64 `json:"downPaymentRatio"` // fraction in [0,1]
	TermMonths                int     `json:"termMonths"`
	AnnualInterestRatePercent float64 `json:"annualInterestRatePercent"`
	ServiceFeePercent         float64 `json:"serviceFeePercent"`
	MaintenanceAbsolute       float64 `json:"maintenanceAbsolute"`
	EnergyManagementAbsolute  float64 `json:"energyManagementAbsolute"`
	InsuranceRatePercent      float64 `json:"insuranceRatePercent"`
	TaxRatePercent            float64 `json:"taxRatePercent"`
}

// Result holds every intermediate figure of a calculation.
type Result struct {
	DownPayment            float64 `json:"downPayment"`
	Principal              float64 `json:"principal"`
	MonthlyBasePayment     float64 `json:"monthlyBasePayment"`
	ServiceFeeAmount       float64 `json:"serviceFeeAmount"`
	AdditionalMonthlyCosts float64 `json:"additionalMonthlyCosts"`
	InsuranceAmount        float64 `json:"insuranceAmount"`
	FinalMonthlyPaymentRaw float64 `json:"finalMonthlyPaymentRaw"`
	FinalMonthlyPayment    int64   `json:"finalMonthlyPayment"`
}

// MonthlyRate converts an annual percentage into the periodic rate. A zero
// or negative annual rate yields constants.ZeroRateSubstitute so the result
// is always usable as a divisor in AnnuityFactor.
func MonthlyRate(annualInterestRatePercent float64) float64 {
	if annualInterestRatePercent > 0 {
		return mathutil.PercentToFraction(annualInterestRatePercent) / constants.MonthsPerYear
	}
	return constants.ZeroRateSubstitute
}

// AnnuityFactor returns the multiplier turning a principal into a level
// payment over termMonths periods at monthlyRate. (1+r)^n-1 is taken through
// Expm1 and Log1p so rates too small to change 1+r still give about 1/n.
func AnnuityFactor(monthlyRate float64, termMonths int) float64 {
	n := float64(termMonths)
	growth := math.Expm1(n * math.Log1p(monthlyRate))
	if growth == 0 {
		return 1 / n
	}
	return monthlyRate * (growth + 1) / growth
}

// BasePayment calculates the level monthly loan payment for principal.
// A zero annual rate is amortized by simple division.
func BasePayment(principal, annualInterestRatePercent float64, termMonths int) float64 {
	if principal == 0 {
		return 0
	}
	if annualInterestRatePercent == 0 {
		return principal / float64(termMonths)
	}
	return principal * AnnuityFactor(MonthlyRate(annualInterestRatePercent), termMonths)
}

// Compute calculates the monthly payment for in. It never returns NaN or
// Inf: inputs that would produce them fail with ErrInvalidArgument.
func Compute(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	var res Result
	res.DownPayment = in.TotalCost * in.DownPaymentRatio
	res.Principal = in.TotalCost - res.DownPayment
	res.MonthlyBasePayment = BasePayment(res.Principal, in.AnnualInterestRatePercent, in.TermMonths)

	res.ServiceFeeAmount = mathutil.ApplyPercentage(res.MonthlyBasePayment, in.ServiceFeePercent)
	res.AdditionalMonthlyCosts = in.MaintenanceAbsolute + in.EnergyManagementAbsolute + res.ServiceFeeAmount
	subtotal := res.MonthlyBasePayment + res.AdditionalMonthlyCosts

	res.InsuranceAmount = mathutil.ApplyPercentage(subtotal, in.InsuranceRatePercent)
	totalNet := subtotal + res.InsuranceAmount

	res.FinalMonthlyPaymentRaw = totalNet * (1 + mathutil.PercentToFraction(in.TaxRatePercent))
	if !mathutil.IsFinite(res.FinalMonthlyPaymentRaw) {
		return Result{}, fmt.Errorf("%w: payment is not finite for term of %d months", ErrInvalidArgument, in.TermMonths)
	}
	res.FinalMonthlyPayment = mathutil.RoundWhole(res.FinalMonthlyPaymentRaw)

	return res, nil
}

// Validate checks that in describes a computable payment.
func (in Input) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"totalCost", in.TotalCost},
		{"downPaymentRatio", in.DownPaymentRatio},
		{"annualInterestRatePercent", in.AnnualInterestRatePercent},
		{"serviceFeePercent", in.ServiceFeePercent},
		{"maintenanceAbsolute", in.MaintenanceAbsolute},
		{"energyManagementAbsolute", in.EnergyManagementAbsolute},
		{"insuranceRatePercent", in.InsuranceRatePercent},
		{"taxRatePercent", in.TaxRatePercent},
	}
	for _, f := range fields {
		if !mathutil.IsFinite(f.value) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidArgument, f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidArgument, f.name, f.value)
		}
	}

	if in.TermMonths <= 0 {
		return fmt.Errorf("%w: termMonths must be positive, got %d", ErrInvalidArgument, in.TermMonths)
	}
	if in.DownPaymentRatio > 1 {
		return fmt.Errorf("%w: downPaymentRatio must be within [0,1], got %v", ErrInvalidArgument, in.DownPaymentRatio)
	}
	return nil
}
