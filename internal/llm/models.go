package llm

import (
	"context"
	"fmt"
	"slices"
)

// AvailableModels returns the model IDs the provider lists at /models.
func (c *Client) AvailableModels(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// MissingModels returns the subset of models the provider does not list,
// in the order given. Duplicates and empty names are ignored.
func (c *Client) MissingModels(ctx context.Context, models ...string) ([]string, error) {
	available, err := c.AvailableModels(ctx)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, m := range models {
		if m == "" || slices.Contains(missing, m) {
			continue
		}
		if !slices.Contains(available, m) {
			missing = append(missing, m)
		}
	}
	return missing, nil
}
