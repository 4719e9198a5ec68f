package models

import (
	"encoding/json"
	"fmt"
	"time"

	"dressupapi/suitcase"
)

type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanConfirmed PlanStatus = "confirmed"
)

// StoredTravelPlan keeps a JSON snapshot of a prepared plan.
type StoredTravelPlan struct {
	JsonModel
	PlanID    string      `gorm:"uniqueIndex" json:"plan_id"`
	OwnerID   uint        `gorm:"index" json:"-"`
	Owner     UserAccount `json:"-"`
	Status    PlanStatus  `gorm:"index" json:"status"`
	Location  string      `json:"location"`
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
	Payload   string      `gorm:"type:text" json:"-"`
}

func NewStoredTravelPlan(plan *suitcase.TravelPlan, ownerID uint) (StoredTravelPlan, error) {
	payload, err := json.Marshal(plan)
	if err != nil {
		return StoredTravelPlan{}, fmt.Errorf("encode travel plan %s: %w", plan.ID, err)
	}
	return StoredTravelPlan{
		PlanID:    plan.ID,
		OwnerID:   ownerID,
		Status:    PlanDraft,
		Location:  plan.Location.DisplayName(),
		StartDate: plan.StartDate,
		EndDate:   plan.EndDate,
		Payload:   string(payload),
	}, nil
}

func (p StoredTravelPlan) Plan() (*suitcase.TravelPlan, error) {
	var plan suitcase.TravelPlan
	if err := json.Unmarshal([]byte(p.Payload), &plan); err != nil {
		return nil, fmt.Errorf("decode travel plan %s: %w", p.PlanID, err)
	}
	return &plan, nil
}

type TravelPlanOut struct {
	Status    PlanStatus           `json:"status"`
	DateRange string               `json:"date_range"`
	Plan      *suitcase.TravelPlan `json:"plan"`
}
