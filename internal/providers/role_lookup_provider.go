package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"

	"fms/internal/roster"
	"fms/internal/structures"
)

// RoleLookupProvider resolves role membership through the platform gateway's
// HTTP API. The globally excluded role ids from config are applied to every
// query; callers add extra exclusions per request.
type RoleLookupProvider struct {
	client   *http.Client
	baseURL  string
	excluded []string
	logger   Logger
}

func NewRoleLookupProvider(conf *structures.Config, logger Logger) roster.LookupInterface {
	return &RoleLookupProvider{
		client:   &http.Client{Timeout: conf.RoleLookup.Timeout},
		baseURL:  strings.TrimRight(conf.RoleLookup.BaseURL, "/"),
		excluded: conf.RoleLookup.ExcludedRoleIDs,
		logger:   logger,
	}
}

func (p *RoleLookupProvider) MembersWithRole(ctx context.Context, roleID string, extraExcludeRoleIDs ...string) ([]roster.Member, error) {
	exclude := append(append([]string{}, p.excluded...), extraExcludeRoleIDs...)

	u := fmt.Sprintf("%s/roles/%s/members", p.baseURL, url.PathEscape(roleID))
	if len(exclude) > 0 {
		u += "?exclude=" + url.QueryEscape(strings.Join(exclude, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("role lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("role lookup returned status %d", resp.StatusCode)
	}

	var members []roster.Member
	if err := json.NewDecoder(resp.Body).Decode(&members); err != nil {
		return nil, fmt.Errorf("role lookup response decode failed: %w", err)
	}

	p.logger.Debugf(TypeLookup, "Role %s resolved to %d members", roleID, len(members))
	return members, nil
}
