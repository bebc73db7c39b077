package service

import (
	"fmt"
	"strings"

	"github.com/navid-fn/carrier-sales/internal/metrics"
	"github.com/navid-fn/carrier-sales/internal/model"
	"github.com/navid-fn/carrier-sales/internal/repository"
)

const noLoadsMessage = "No matching records found."

// LoadSearchResult is the voice-agent friendly rendering of a catalog search.
type LoadSearchResult struct {
	Message string `json:"message"`
	Results string `json:"results"`
}

type LoadService struct {
	repo repository.LoadRepository
}

func NewLoadService(repo repository.LoadRepository) *LoadService {
	metrics.LoadCatalogSize.Set(float64(repo.Count()))
	return &LoadService{
		repo: repo,
	}
}

// Search filters the catalog and renders every match as one "column: value, ..." line.
func (ls *LoadService) Search(filters map[string]string) LoadSearchResult {
	loads := ls.repo.Find(filters)
	metrics.LoadSearchResults.Observe(float64(len(loads)))

	if len(loads) == 0 {
		return LoadSearchResult{Message: noLoadsMessage, Results: ""}
	}

	rows := make([]string, len(loads))
	for i, l := range loads {
		rows[i] = renderLoad(l)
	}
	return LoadSearchResult{
		Message: fmt.Sprintf("Matched %d loads.", len(loads)),
		Results: strings.Join(rows, "\n"),
	}
}

func renderLoad(l model.Load) string {
	parts := make([]string, len(model.LoadColumns))
	for i, col := range model.LoadColumns {
		v, _ := l.Lookup(col)
		parts[i] = col + ": " + v
	}
	return strings.Join(parts, ", ")
}
