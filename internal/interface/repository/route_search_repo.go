package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
	"pmr-assist-service/pkg/logger"
)

// HTTPRouteSearchRepository implements the RouteSearchRepository interface
// against the multimodal route search service.
type HTTPRouteSearchRepository struct {
	logger      logger.Logger
	baseURL     string
	bearerToken string
	client      *http.Client
}

// NewHTTPRouteSearchRepository creates a new route search client
func NewHTTPRouteSearchRepository(baseURL, bearerToken string, logger logger.Logger) repository.RouteSearchRepository {
	return &HTTPRouteSearchRepository{
		logger:      logger,
		baseURL:     baseURL,
		bearerToken: bearerToken,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type searchRequest struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Date        string   `json:"date"`
	PMRNeeds    []string `json:"pmrNeeds,omitempty"`
}

// SearchRoute queries the search service for accessible routes
func (r *HTTPRouteSearchRepository) SearchRoute(ctx context.Context, origin, destination string, date time.Time, pmrNeeds []string) (*entity.RouteSearchResult, error) {
	jsonData, err := json.Marshal(searchRequest{
		Origin:      origin,
		Destination: destination,
		Date:        date.UTC().Format(time.RFC3339),
		PMRNeeds:    pmrNeeds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/routes/search", r.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query route search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("route search returned status %d", resp.StatusCode)
	}

	var result entity.RouteSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	r.logger.Info("Route search completed",
		"origin", origin,
		"destination", destination,
		"routes", len(result.Routes))
	return &result, nil
}
