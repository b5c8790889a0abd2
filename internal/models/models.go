package models

import "time"

type User struct {
	ID        string
	Email     string
	PassHash  []byte
	CreatedAt time.Time
}

type Species struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CaughtRecord is the ownership edge between a user and a species.
type CaughtRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SpeciesID string    `json:"species_id"`
	CaughtAt  time.Time `json:"caught_at"`
}

// CaughtPokemon is a caught record joined with its species.
type CaughtPokemon struct {
	CaughtRecord
	Species Species `json:"species"`
}

type Message struct {
	Email   string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Purpose string `json:"purpose"`
}
