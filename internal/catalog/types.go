// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"strconv"
	"strings"

	"github.com/tomtom215/marquee/internal/models"
)

// Title is a search hit, shaped like a watchlist entry so clients can add
// it without reshaping.
type Title struct {
	TitleID   string `json:"titleId"`
	Title     string `json:"title"`
	Year      string `json:"year"`
	Kind      string `json:"kind"`
	PosterURL string `json:"posterUrl"`
}

// Entry converts the hit into a watchlist snapshot.
func (t Title) Entry() models.WatchlistEntry {
	return models.WatchlistEntry(t)
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Titles       []Title `json:"titles"`
	TotalResults int     `json:"totalResults"`
	TotalPages   int     `json:"totalPages"`
	Page         int     `json:"page"`
}

// Rating is a third-party score reported by the provider.
type Rating struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// TitleDetail is the full record for a single title.
type TitleDetail struct {
	Title
	Rated      string   `json:"rated,omitempty"`
	Released   string   `json:"released,omitempty"`
	Runtime    string   `json:"runtime,omitempty"`
	Genre      string   `json:"genre,omitempty"`
	Director   string   `json:"director,omitempty"`
	Writer     string   `json:"writer,omitempty"`
	Actors     string   `json:"actors,omitempty"`
	Plot       string   `json:"plot,omitempty"`
	Language   string   `json:"language,omitempty"`
	Country    string   `json:"country,omitempty"`
	Awards     string   `json:"awards,omitempty"`
	Ratings    []Rating `json:"ratings,omitempty"`
	Metascore  string   `json:"metascore,omitempty"`
	IMDBRating string   `json:"imdbRating,omitempty"`
	IMDBVotes  string   `json:"imdbVotes,omitempty"`
}

// Provider wire format. Every response carries Response "True" or "False";
// failures put the reason in Error.

type omdbEnvelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

type omdbSearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDBID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type omdbSearch struct {
	omdbEnvelope
	Search       []omdbSearchItem `json:"Search"`
	TotalResults string           `json:"totalResults"`
}

type omdbRating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

type omdbDetail struct {
	omdbEnvelope
	omdbSearchItem
	Rated      string       `json:"Rated"`
	Released   string       `json:"Released"`
	Runtime    string       `json:"Runtime"`
	Genre      string       `json:"Genre"`
	Director   string       `json:"Director"`
	Writer     string       `json:"Writer"`
	Actors     string       `json:"Actors"`
	Plot       string       `json:"Plot"`
	Language   string       `json:"Language"`
	Country    string       `json:"Country"`
	Awards     string       `json:"Awards"`
	Ratings    []omdbRating `json:"Ratings"`
	Metascore  string       `json:"Metascore"`
	IMDBRating string       `json:"imdbRating"`
	IMDBVotes  string       `json:"imdbVotes"`
}

// posterURL drops the provider's "N/A" placeholder.
func posterURL(p string) string {
	if strings.EqualFold(p, "N/A") {
		return ""
	}
	return p
}

func (i omdbSearchItem) toTitle() Title {
	return Title{
		TitleID:   i.IMDBID,
		Title:     i.Title,
		Year:      i.Year,
		Kind:      i.Type,
		PosterURL: posterURL(i.Poster),
	}
}

func (s *omdbSearch) toResult(page int) *SearchResult {
	total, _ := strconv.Atoi(s.TotalResults)
	titles := make([]Title, 0, len(s.Search))
	for _, item := range s.Search {
		titles = append(titles, item.toTitle())
	}
	return &SearchResult{
		Titles:       titles,
		TotalResults: total,
		TotalPages:   (total + pageSize - 1) / pageSize,
		Page:         page,
	}
}

func (d *omdbDetail) toDetail() *TitleDetail {
	ratings := make([]Rating, 0, len(d.Ratings))
	for _, r := range d.Ratings {
		ratings = append(ratings, Rating(r))
	}
	return &TitleDetail{
		Title:      d.omdbSearchItem.toTitle(),
		Rated:      d.Rated,
		Released:   d.Released,
		Runtime:    d.Runtime,
		Genre:      d.Genre,
		Director:   d.Director,
		Writer:     d.Writer,
		Actors:     d.Actors,
		Plot:       d.Plot,
		Language:   d.Language,
		Country:    d.Country,
		Awards:     d.Awards,
		Ratings:    ratings,
		Metascore:  d.Metascore,
		IMDBRating: d.IMDBRating,
		IMDBVotes:  d.IMDBVotes,
	}
}
