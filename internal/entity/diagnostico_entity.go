package entity

import "time"

// Diagnostico is a treatment category. MaxSessoes is nullable; when absent the
// session limit is resolved by a fallback rule in the access service.
type Diagnostico struct {
	Codigo     string
	Nome       string
	Ativo      bool
	MaxSessoes *int
	CreatedAt  time.Time
}
