package project

import (
	"encoding/json"
	"time"

	"github.com/rpggio/flowboard/internal/clock"
	"github.com/rpggio/flowboard/internal/repository"
)

// Project is a board column owner; tasks reference it by ID.
// Stored fields outside the model are kept in Extra and written back.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`

	Extra map[string]json.RawMessage `json:"-"`
}

var projectKeys = map[string]bool{
	"id": true, "name": true, "description": true, "color": true, "createdAt": true,
}

type projectJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func (p Project) MarshalJSON() ([]byte, error) {
	return repository.MarshalWithExtra(projectJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		CreatedAt:   clock.FormatTimestamp(p.CreatedAt),
	}, p.Extra)
}

func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := repository.ExtraFields(data, projectKeys)
	if err != nil {
		return err
	}
	*p = Project(decoded)
	p.Extra = extra
	return nil
}

// State is a point-in-time copy of the store's observable fields.
type State struct {
	Projects []Project          `json:"projects"`
	Loading  bool               `json:"loading"`
	Error    string             `json:"error,omitempty"`
	Outcome  repository.Outcome `json:"outcome,omitempty"`
}

// Listener receives the store state after every change.
type Listener func(State)
