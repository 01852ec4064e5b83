package entity

import (
	"strings"
	"time"
)

const (
	ColCreatedAt   = "created_at"
	ColClaimType   = "claim_type"
	ColDetails     = "details"
	ColStatus      = "status"
	ColTechnicians = "technicians"
	ColHandledBy   = "handled_by"
	ColResolvedAt  = "resolved_at"
)

func ClaimColumns() []string {
	return []string{
		ColCreatedAt,
		ColClientNumber,
		ColSector,
		ColName,
		ColAddress,
		ColPhone,
		ColClaimType,
		ColDetails,
		ColStatus,
		ColTechnicians,
		ColSealNumber,
		ColHandledBy,
		ColResolvedAt,
	}
}

type ClaimID int64

type Claim struct {
	ID           ClaimID    `json:"id"`
	CreatedAt    time.Time  `json:"createdAt"`
	ClientNumber string     `json:"clientNumber"`
	Sector       string     `json:"sector"`
	Name         string     `json:"name"`
	Address      string     `json:"address"`
	Phone        string     `json:"phone"`
	ClaimType    string     `json:"claimType"`
	Details      string     `json:"details"`
	Status       Status     `json:"status"`
	Technicians  []string   `json:"technicians"`
	SealNumber   string     `json:"sealNumber"`
	HandledBy    string     `json:"handledBy"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

type ClaimInput struct {
	ClientNumber string `json:"clientNumber"`
	Sector       string `json:"sector"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	ClaimType    string `json:"claimType"`
	Details      string `json:"details"`
	SealNumber   string `json:"sealNumber"`
	HandledBy    string `json:"handledBy"`
}

type ClaimFilter struct {
	Status    Status
	Sector    string
	ClaimType string
}

type ClaimEvent struct {
	ClaimID      ClaimID   `json:"claim_id"`
	ClientNumber string    `json:"client_number"`
	Status       Status    `json:"status"`
	Technicians  []string  `json:"technicians"`
	At           time.Time `json:"at"`
}

type Summary struct {
	Active       int            `json:"active"`
	Pending      int            `json:"pending"`
	InProgress   int            `json:"inProgress"`
	Resolved     int            `json:"resolved"`
	ActiveByType map[string]int `json:"activeByType"`
}

const technicianSeparator = ", "

func JoinTechnicians(names []string) string {
	return strings.Join(names, technicianSeparator)
}

func SplitTechnicians(raw string) []string {
	names := []string{}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}

	return names
}
