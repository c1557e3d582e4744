package models

import (
	"time"

	"github.com/julianstephens/taskdash/internal/constants"
)

// ViewState is the unit of value saved into a view and compared for dirtiness.
type ViewState struct {
	Filters  Filters            `json:"filters"`
	Grouping constants.Grouping `json:"grouping"`
	Query    string             `json:"query"`
}

// View is a named, saved dashboard configuration.
type View struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	State     ViewState `json:"state"`
}

// ViewsStore is the persisted saved-views document.
// ActiveViewID is empty when no view is active.
type ViewsStore struct {
	Schema               int        `json:"schema"`
	ActiveViewID         string     `json:"activeViewId,omitempty"`
	Views                []View     `json:"views"`
	LastDefaultState     *ViewState `json:"lastDefaultState,omitempty"`
	LastDefaultUpdatedAt *time.Time `json:"lastDefaultUpdatedAt,omitempty"`
}
