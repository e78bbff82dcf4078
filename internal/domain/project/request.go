package project

import "strings"

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// UpdateRequest carries the fields to merge into an existing project.
// Nil fields are left unchanged.
type UpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

func (r CreateRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func (r UpdateRequest) validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func (r UpdateRequest) apply(p *Project) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Color != nil {
		p.Color = *r.Color
	}
}
