package twitter

import "context"

// ActivateGuestToken exchanges the app authorization for a short-lived
// anonymous session token. A missing or failed token comes back as an empty
// string with the underlying error; callers decide how terminal that is.
func (c *Client) ActivateGuestToken(ctx context.Context, authorization string) (string, error) {
	headers := map[string]string{
		"Authorization": authorization,
	}

	var resp guestTokenResponse
	if _, err := c.PostJSON(ctx, GuestActivateURL(c.apiBase), headers, nil, &resp); err != nil {
		c.logger.WithError(err).Warn("guest token activation failed")
		return "", err
	}

	return resp.GuestToken, nil
}
