package commands

import (
	"context"
	"fmt"

	"lifestuff/internal/client"
	"lifestuff/internal/input"
)

// enter types value into field and confirms it.
func enter(c *client.Client, field input.Field, value string) error {
	if value == "" {
		return fmt.Errorf("%v required", field)
	}
	if err := c.InsertUserInput(field, 0, value); err != nil {
		return err
	}
	return c.ConfirmUserInput(field)
}

// enterCredentials confirms the keyword, pin and password flags.
func enterCredentials(c *client.Client) error {
	for _, in := range []struct {
		field input.Field
		value string
	}{
		{input.Keyword, keyword},
		{input.Pin, pin},
		{input.Password, password},
	} {
		if err := enter(c, in.field, in.value); err != nil {
			return err
		}
	}
	return nil
}

// signIn logs in with the credential flags and returns a function that logs
// out again.
func signIn(ctx context.Context) (func(), error) {
	c := wire.Client
	if err := enterCredentials(c); err != nil {
		return nil, err
	}
	if err := c.LogIn(ctx); err != nil {
		return nil, err
	}
	return func() {
		if err := c.LogOut(context.WithoutCancel(ctx)); err != nil {
			log.Warnf("log out: %v", err)
		}
	}, nil
}
