package tallyfy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// InviteMemberOptions creates one organization member.
type InviteMemberOptions struct {
	Email     string
	FirstName string
	LastName  string
	Role      string // admin, standard or light

	IdempotencyKey string
}

// InviteMember invites a user into the organization.
func (c *Client) InviteMember(ctx context.Context, opts InviteMemberOptions) (*MemberRecord, error) {
	if opts.Email == "" {
		return nil, fmt.Errorf("tallyfy: invite requires an email")
	}

	if opts.Role == "" {
		opts.Role = "standard"
	}

	body := map[string]any{
		"email":      opts.Email,
		"first_name": opts.FirstName,
		"last_name":  opts.LastName,
		"role":       opts.Role,
	}

	var resp struct {
		Data MemberRecord `json:"data"`
	}

	err := c.http.DoWithHeaders(ctx, http.MethodPost, c.orgPath("users/invite"),
		nil, idempotencyHeaders(opts.IdempotencyKey), body, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to invite %s: %w", opts.Email, err)
	}

	return &resp.Data, nil
}

// Members lists every organization member, following pagination.
func (c *Client) Members(ctx context.Context) ([]MemberRecord, error) {
	var members []MemberRecord

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", "100")

		var resp struct {
			Data []MemberRecord `json:"data"`
			Meta struct {
				Pagination struct {
					CurrentPage int `json:"current_page"`
					TotalPages  int `json:"total_pages"`
				} `json:"pagination"`
			} `json:"meta"`
		}

		if err := c.http.Get(ctx, c.orgPath("users"), params, &resp); err != nil {
			return nil, fmt.Errorf("failed to list members: %w", err)
		}

		members = append(members, resp.Data...)

		if resp.Meta.Pagination.CurrentPage >= resp.Meta.Pagination.TotalPages {
			break
		}
	}

	return members, nil
}

// CreateGroupOptions creates one member group.
type CreateGroupOptions struct {
	Name      string
	MemberIDs []string

	IdempotencyKey string
}

// CreateGroup creates a group and assigns the given members.
func (c *Client) CreateGroup(ctx context.Context, opts CreateGroupOptions) (*GroupRecord, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("tallyfy: group requires a name")
	}

	body := map[string]any{
		"name":    opts.Name,
		"members": opts.MemberIDs,
	}

	var resp struct {
		Data GroupRecord `json:"data"`
	}

	err := c.http.DoWithHeaders(ctx, http.MethodPost, c.orgPath("groups"),
		nil, idempotencyHeaders(opts.IdempotencyKey), body, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to create group %s: %w", opts.Name, err)
	}

	return &resp.Data, nil
}

// Groups lists the organization's groups.
func (c *Client) Groups(ctx context.Context) ([]GroupRecord, error) {
	var resp struct {
		Data []GroupRecord `json:"data"`
	}

	if err := c.http.Get(ctx, c.orgPath("groups"), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return resp.Data, nil
}
