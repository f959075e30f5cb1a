package httpapi

import "time"

type recordRequestDTO struct {
	Event  string `json:"event"`
	Format string `json:"format"`
}

type credentialsDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type recordResponseDTO struct {
	Port        int            `json:"port"`
	Credentials credentialsDTO `json:"credentials"`
}

type recordEntryDTO struct {
	Event string    `json:"event"`
	Start time.Time `json:"start"`
}

type listResponseDTO struct {
	Count   int              `json:"count"`
	Limit   *int             `json:"limit,omitempty"`
	Offset  *int             `json:"offset,omitempty"`
	Records []recordEntryDTO `json:"records"`
}
