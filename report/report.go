// Package report imports PR distribution reports exported by distribution partners.
//
// Partners export CSV or JSON with their own column names, so columns are matched
// heuristically against known aliases and numeric cells are normalized before use.
package report

import (
	"time"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Row is one outlet placement in a distribution report
type Row struct {
	Outlet          string `json:"outlet"`
	URL             string `json:"url,omitempty"`
	Category        string `json:"category,omitempty"`
	PotentialReach  int64  `json:"potential_reach,omitempty"`
	DomainAuthority int    `json:"domain_authority,omitempty"`
	PublishedAt     string `json:"published_at,omitempty"` // As written in the source file
}

type Summary struct {
	Outlets                int     `json:"outlets"`
	TotalReach             int64   `json:"total_reach"`
	AverageDomainAuthority float64 `json:"average_domain_authority"`
}

// Meta describes a stored report without its rows
type Meta struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Format     Format    `json:"format"`
	UploadedAt time.Time `json:"uploaded_at"`
	Summary    Summary   `json:"summary"`
}

type Report struct {
	Meta
	Rows     []Row    `json:"rows"`
	Warnings []string `json:"warnings,omitempty"` // Cells that could not be normalized
}

// Summarize computes totals over the rows. Rows without a domain authority do not count
// towards the average.
func Summarize(rows []Row) Summary {
	s := Summary{Outlets: len(rows)}
	var daTotal, daCount int
	for _, r := range rows {
		s.TotalReach += r.PotentialReach
		if r.DomainAuthority > 0 {
			daTotal += r.DomainAuthority
			daCount++
		}
	}
	if daCount > 0 {
		s.AverageDomainAuthority = float64(daTotal) / float64(daCount)
	}
	return s
}
