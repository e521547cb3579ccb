package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
)

// main TUI application model
type Model struct {
	width  int
	height int

	table     table.Model
	spinner   spinner.Model
	client    *QuotaClient
	stats     *StatsResponse
	available *bool
	err       error
	lastFetch time.Time
	fetching  bool
}

// sent when a stats poll completes
type StatsMsg struct {
	stats     *StatsResponse
	available bool
}

// sent when a stats poll fails
type StatsErrorMsg struct {
	err error
}

// sent on the poll interval
type tickMsg time.Time

// StatsResponse mirrors the stats endpoint body
type StatsResponse struct {
	Count                   int        `json:"count"`
	LastGeneratedAt         *time.Time `json:"last_generated_at"`
	RemainingToday          int        `json:"remaining_today"`
	FreeGenerationAvailable bool       `json:"free_generation_available"`
	IsPaidUser              bool       `json:"is_paid_user"`
	MonthlyLimit            *int       `json:"monthly_limit"`
	RemainingMonthly        *int       `json:"remaining_monthly"`
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
