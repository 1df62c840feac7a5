package handlers

import (
	"time"

	"kira/internal/domain"
)

type userDTO struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	PlanType            string     `json:"planType"`
	SubscriptionStatus  string     `json:"subscriptionStatus"`
	TrialStartDate      *time.Time `json:"trialStartDate"`
	IsTrialActive       bool       `json:"isTrialActive"`
	TrialReportsUsed    int        `json:"trialReportsUsed"`
	BirthDate           string     `json:"birthDate,omitempty"`
	BirthTime           string     `json:"birthTime,omitempty"`
	BirthPlace          string     `json:"birthPlace,omitempty"`
	PalmPhoto           bool       `json:"palmPhoto"`
	DailyReportsEnabled bool       `json:"dailyReportsEnabled"`
	CreatedAt           time.Time  `json:"createdAt"`
}

func toUserDTO(a *domain.Account) userDTO {
	out := userDTO{
		ID:                  a.ID,
		Email:               a.Email,
		PlanType:            string(a.Plan),
		SubscriptionStatus:  string(a.SubscriptionStatus),
		TrialStartDate:      a.TrialStart,
		IsTrialActive:       a.TrialActive,
		TrialReportsUsed:    a.ReportsUsed,
		DailyReportsEnabled: a.DailyReportsEnabled,
		CreatedAt:           a.CreatedAt,
	}
	if b := a.Birth; b != nil {
		out.BirthDate, out.BirthTime, out.BirthPlace, out.PalmPhoto = b.Date, b.Time, b.Place, b.PalmPhoto
	}
	return out
}

type artifactDTO struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Kind          string    `json:"kind"`
	Content       string    `json:"content"`
	Date          string    `json:"date"`
	IsTrialReport bool      `json:"isTrialReport"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toArtifactDTO(a domain.Artifact) artifactDTO {
	return artifactDTO{
		ID:            a.ID,
		UserID:        a.AccountID,
		Kind:          string(a.Kind),
		Content:       a.Content,
		Date:          domain.FormatDay(a.EffectiveDate),
		IsTrialReport: a.TrialReport,
		CreatedAt:     a.CreatedAt,
	}
}

type birthDTO struct {
	BirthDate  string `json:"birthDate"`
	BirthTime  string `json:"birthTime"`
	BirthPlace string `json:"birthPlace"`
	PalmPhoto  bool   `json:"palmPhoto"`
}

func (b birthDTO) birth() domain.BirthData {
	return domain.BirthData{Date: b.BirthDate, Time: b.BirthTime, Place: b.BirthPlace, PalmPhoto: b.PalmPhoto}
}
