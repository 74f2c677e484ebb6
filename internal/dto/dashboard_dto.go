package dto

import "github.com/SscSPs/fx_rate_dashboard/internal/ratetable"

// CreateSessionRequest opens a dashboard session.
type CreateSessionRequest struct {
	// Date selects the daily rates to load; empty means today.
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02" example:"2024-05-01"`
}

// SearchRequest sets a table's search query.
type SearchRequest struct {
	Query string `json:"query" binding:"max=64" example:"INR"`
}

// AmountRequest sets the amount typed into one row. An empty value clears it.
type AmountRequest struct {
	Value *string `json:"value" binding:"required,max=64" example:"100"`
}

// SessionResponse is the full render model of a session.
type SessionResponse struct {
	ID     string                                    `json:"id"`
	Active ratetable.TableID                         `json:"active"`
	Tables map[ratetable.TableID]ratetable.TableView `json:"tables"`
}

// ActivateResponse reports a tab switch and the now visible table.
type ActivateResponse struct {
	Table    ratetable.TableID   `json:"table"`
	Previous ratetable.TableID   `json:"previous"`
	Changed  bool                `json:"changed"`
	Fetched  bool                `json:"fetched"`
	View     ratetable.TableView `json:"view"`
}
