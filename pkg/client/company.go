package client

import (
	"context"
	"net/url"
)

// Company is the company record attached to a set of API credentials.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetCompany returns the company owning this client's credentials.
func (c *Client) GetCompany(ctx context.Context) (*Company, error) {
	return c.GetCompanyByClientID(ctx, c.tokens.ClientID())
}

// GetCompanyByClientID returns the company owning the given OAuth client id.
func (c *Client) GetCompanyByClientID(ctx context.Context, clientID string) (*Company, error) {
	var company Company
	if err := c.get(ctx, "app/company/byclientid/"+url.PathEscape(clientID), nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// CompanyID returns this client's company id, resolving and caching it on
// first use. Most endpoints are scoped by it.
func (c *Client) CompanyID(ctx context.Context) (string, error) {
	if c.companyID != "" {
		return c.companyID, nil
	}

	company, err := c.GetCompany(ctx)
	if err != nil {
		return "", err
	}
	c.companyID = company.ID
	return c.companyID, nil
}
