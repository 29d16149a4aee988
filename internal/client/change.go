package client

import (
	"context"
	"fmt"

	"lifestuff/internal/domain"
	"lifestuff/internal/input"
)

// ChangeKeyword moves the account to the confirmed new keyword. The current
// password must be confirmed first.
func (c *Client) ChangeKeyword(ctx context.Context) error {
	return c.change(ctx, ActionChangeKeyword, input.Keyword, c.ids.ChangeKeyword)
}

// ChangePin moves the account to the confirmed new pin.
func (c *Client) ChangePin(ctx context.Context) error {
	return c.change(ctx, ActionChangePin, input.Pin, c.ids.ChangePin)
}

// ChangePassword re-encrypts the account under the confirmed new password.
func (c *Client) ChangePassword(ctx context.Context) error {
	return c.change(ctx, ActionChangePassword, input.Password, c.ids.ChangePassword)
}

func (c *Client) change(ctx context.Context, a Action, field input.Field, apply func(context.Context, string) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loggedIn {
		return fmt.Errorf("%v: %w", a, domain.ErrInvalidState)
	}

	c.progress(a, InitialiseProcess)
	c.progress(a, ConfirmingUserInput)
	if !c.input.Confirmed(input.CurrentPassword) {
		return fmt.Errorf("%v: current password not confirmed: %w", a, domain.ErrInvalidParameter)
	}
	v, err := c.input.Value(field)
	if err != nil {
		return err
	}

	c.progress(a, StoringUserCredentials)
	if err := apply(ctx, v); err != nil {
		return err
	}
	c.input.Reset()
	return nil
}

// RemoveUser deletes the account from the network and logs out. The current
// password must be confirmed first. If any network delete fails the user
// stays logged in so the removal can be retried.
func (c *Client) RemoveUser(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loggedIn {
		return fmt.Errorf("remove user: %w", domain.ErrInvalidState)
	}
	if !c.input.Confirmed(input.CurrentPassword) {
		return fmt.Errorf("remove user: current password not confirmed: %w", domain.ErrInvalidParameter)
	}
	if err := c.unmount(ctx); err != nil {
		return err
	}
	if err := c.ids.RemoveMe(ctx); err != nil {
		return err
	}
	c.teardown()
	return nil
}
