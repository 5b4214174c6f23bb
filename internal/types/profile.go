// Package types provides type definitions for structured data used throughout the apex insurance service.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// Lifestyle describes how physically active the user considers themselves.
type Lifestyle string

// Lifestyle values accepted by the quick assessment.
const (
	LifestyleActive    Lifestyle = "Active"
	LifestyleModerate  Lifestyle = "Moderate"
	LifestyleSedentary Lifestyle = "Sedentary"
)

// ExerciseFrequency describes how often the user exercises.
type ExerciseFrequency string

// ExerciseFrequency values accepted by the quick assessment.
const (
	ExerciseOften     ExerciseFrequency = "Often"
	ExerciseSometimes ExerciseFrequency = "Sometimes"
	ExerciseRarely    ExerciseFrequency = "Rarely"
	ExerciseNever     ExerciseFrequency = "Never"
)

// SmokingStatus is Yes or No.
type SmokingStatus string

// SmokingStatus values.
const (
	SmokingYes SmokingStatus = "Yes"
	SmokingNo  SmokingStatus = "No"
)

// TravelFrequency is the number of trips per year, bucketed.
type TravelFrequency string

// TravelFrequency buckets.
const (
	TravelRare     TravelFrequency = "0-1"
	TravelTwice    TravelFrequency = "2"
	TravelFrequent TravelFrequency = "3-5"
	TravelVeryHigh TravelFrequency = "6+"
)

// UserProfile is the answer set collected by the onboarding wizard.
// A profile is immutable for the duration of one scoring call.
type UserProfile struct {
	Age               int               `json:"age" validate:"gte=0,lte=130"`
	Lifestyle         Lifestyle         `json:"lifestyle" validate:"required,oneof=Active Moderate Sedentary"`
	ExerciseFrequency ExerciseFrequency `json:"exercise_frequency" validate:"required,oneof=Often Sometimes Rarely Never"`
	SmokingStatus     SmokingStatus     `json:"smoking_status" validate:"required,oneof=Yes No"`
	Budget            float64           `json:"budget" validate:"gte=0"`
	SelectedTypes     []string          `json:"selected_types" validate:"dive,required"`
	DNARisks          []string          `json:"dna_risks,omitempty" validate:"dive,required"`
	FamilyHistory     []string          `json:"family_history,omitempty" validate:"dive,required"`
	HasCar            bool              `json:"has_car,omitempty"`
	HasCarInsurance   bool              `json:"has_car_insurance,omitempty"`
	TravelFrequency   TravelFrequency   `json:"travel_frequency,omitempty" validate:"omitempty,oneof=0-1 2 3-5 6+"`
}

// Validate validates the profile using the validator.
func (p *UserProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// WantsType reports whether planType is one of the selected insurance types.
func (p *UserProfile) WantsType(planType string) bool {
	for _, t := range p.SelectedTypes {
		if t == planType {
			return true
		}
	}
	return false
}

// IsSmoker reports whether the profile declares smoking.
func (p *UserProfile) IsSmoker() bool {
	return p.SmokingStatus == SmokingYes
}

// TravelsOften reports whether the user travels three or more times a year.
func (p *UserProfile) TravelsOften() bool {
	return p.TravelFrequency == TravelFrequent || p.TravelFrequency == TravelVeryHigh
}

// HasUninsuredVehicle reports whether the user owns a car without car insurance.
func (p *UserProfile) HasUninsuredVehicle() bool {
	return p.HasCar && !p.HasCarInsurance
}
