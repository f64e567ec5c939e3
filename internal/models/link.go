package models

import (
	"time"
)

type Link struct {
	LinkID         string     `json:"link_id"`
	OriginalURL    string     `json:"original_url"`
	UserID         string     `json:"user_id"`
	NumHits        int64      `json:"num_hits"`
	LastAccessedOn *time.Time `json:"last_accessed_on,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// LinkShape определяет, какие поля ссылки видны запрашивающему
type LinkShape string

const (
	ShapeFull  LinkShape = "full"
	ShapeBasic LinkShape = "basic"
)

// LinkView представление ссылки для выдачи наружу.
// В basic-форме счётчик посещений и время последнего доступа скрыты.
type LinkView struct {
	LinkID         string     `json:"link_id"`
	OriginalURL    string     `json:"original_url"`
	UserID         string     `json:"user_id"`
	NumHits        *int64     `json:"num_hits,omitempty"`
	LastAccessedOn *time.Time `json:"last_accessed_on,omitempty"`
}

// NewLinkView строит представление ссылки в заданной форме
func NewLinkView(link *Link, shape LinkShape) LinkView {
	view := LinkView{
		LinkID:      link.LinkID,
		OriginalURL: link.OriginalURL,
		UserID:      link.UserID,
	}
	if shape == ShapeFull {
		hits := link.NumHits
		view.NumHits = &hits
		view.LastAccessedOn = link.LastAccessedOn
	}
	return view
}
