package calculator

import (
	"fmt"
	"math"
)

// Bounds offered by the mortgage calculator form.
const (
	MinDownPaymentPercent = 5
	MaxDownPaymentPercent = 50
	MinInterestRate       = 0.5
	MaxInterestRate       = 10
	MinLoanTermYears      = 5
	MaxLoanTermYears      = 35
)

type MortgageInput struct {
	PropertyPrice             float64 `json:"propertyPrice"`
	DownPaymentPercent        float64 `json:"downPaymentPercent"`
	AnnualInterestRatePercent float64 `json:"annualInterestRatePercent"`
	LoanTermYears             int     `json:"loanTermYears"`
}

type MortgageResult struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	DownPayment    float64 `json:"downPayment"`
	LoanAmount     float64 `json:"loanAmount"`
	TotalPayments  int     `json:"totalPayments"`
	TotalRepaid    float64 `json:"totalRepaid"`
	TotalInterest  float64 `json:"totalInterest"`
}

// Validate checks the input against the ranges the calculator form allows.
// CalculateMortgage itself accepts anything computable.
func (in MortgageInput) Validate() error {
	if !(in.PropertyPrice > 0) || math.IsInf(in.PropertyPrice, 0) {
		return &ValidationError{Field: "propertyPrice", Reason: "must be a positive number"}
	}
	if !finite(in.DownPaymentPercent) || in.DownPaymentPercent < MinDownPaymentPercent || in.DownPaymentPercent > MaxDownPaymentPercent {
		return &ValidationError{Field: "downPaymentPercent", Reason: fmt.Sprintf("must be between %d and %d", MinDownPaymentPercent, MaxDownPaymentPercent)}
	}
	if !finite(in.AnnualInterestRatePercent) || in.AnnualInterestRatePercent < MinInterestRate || in.AnnualInterestRatePercent > MaxInterestRate {
		return &ValidationError{Field: "annualInterestRatePercent", Reason: fmt.Sprintf("must be between %v and %v", MinInterestRate, MaxInterestRate)}
	}
	if in.LoanTermYears < MinLoanTermYears || in.LoanTermYears > MaxLoanTermYears {
		return &ValidationError{Field: "loanTermYears", Reason: fmt.Sprintf("must be between %d and %d", MinLoanTermYears, MaxLoanTermYears)}
	}
	return nil
}

// CalculateMortgage returns the fixed-rate repayment for a fully amortising loan.
// A zero rate repays the loan in equal instalments.
func CalculateMortgage(in MortgageInput) (MortgageResult, error) {
	if !(in.PropertyPrice > 0) || math.IsInf(in.PropertyPrice, 0) {
		return MortgageResult{}, &ValidationError{Field: "propertyPrice", Reason: "must be a positive number"}
	}
	if in.LoanTermYears <= 0 {
		return MortgageResult{}, &ValidationError{Field: "loanTermYears", Reason: "must be positive"}
	}
	if !finite(in.DownPaymentPercent) {
		return MortgageResult{}, &ValidationError{Field: "downPaymentPercent", Reason: "must be a finite number"}
	}
	if !finite(in.AnnualInterestRatePercent) {
		return MortgageResult{}, &ValidationError{Field: "annualInterestRatePercent", Reason: "must be a finite number"}
	}

	downPayment := in.PropertyPrice * in.DownPaymentPercent / 100
	loan := in.PropertyPrice - downPayment
	monthlyRate := in.AnnualInterestRatePercent / 100 / 12
	n := in.LoanTermYears * 12

	var monthly float64
	if monthlyRate == 0 {
		monthly = loan / float64(n)
	} else {
		growth := math.Pow(1+monthlyRate, float64(n))
		monthly = loan * monthlyRate * growth / (growth - 1)
	}

	repaid := monthly * float64(n)
	return MortgageResult{
		MonthlyPayment: monthly,
		DownPayment:    downPayment,
		LoanAmount:     loan,
		TotalPayments:  n,
		TotalRepaid:    repaid,
		TotalInterest:  repaid - loan,
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
